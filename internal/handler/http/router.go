package http

import (
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Auth       AuthHandler
	User       UserHandler
	Employee   EmployeeHandler
	Attendance AttendanceHandler
	Absence    AbsenceHandler
	Leave      LeaveHandler
}

func NewRouter(appCfg config.AppConfig, logger *slog.Logger, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if appCfg.LoginRatePerMinute > 0 {
				r.Use(middleware.NewRateLimiter(appCfg.LoginRatePerMinute, appCfg.LoginRateBurst).Middleware)
			}
			r.Post("/auth/login", h.Auth.Login)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/employees", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeView))
					r.Get("/", h.Employee.List)
					r.Get("/services", h.Employee.ListServices)
					r.Get("/by-service", h.Employee.GroupByService)
					r.Get("/{id}", h.Employee.Get)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
					r.Post("/", h.Employee.Create)
					r.Put("/{id}", h.Employee.Update)
				})
				r.With(middleware.RequirePermission(user.PermissionAttendanceView)).
					Get("/{id}/attendance/{date}", h.Employee.GetDailyAttendance)
				r.With(middleware.RequirePermission(user.PermissionLeaveView)).
					Get("/{id}/leaves", h.Employee.ListLeaves)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceView))
					r.Get("/", h.Attendance.ListRecords)
					r.Get("/lateness", h.Attendance.ListLateness)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceRecord))
					r.Post("/arrival", h.Attendance.RecordArrival)
					r.Post("/departure", h.Attendance.RecordDeparture)
				})
			})

			r.Route("/absences", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceView))
					r.Get("/", h.Absence.List)
					r.Get("/today", h.Absence.ListToday)
					r.Get("/{id}/certificate", h.Absence.GetCertificate)
				})
				r.With(middleware.RequirePermission(user.PermissionAbsenceManage)).Post("/", h.Absence.Mark)
				r.With(middleware.RequirePermission(user.PermissionAbsenceSweep)).Post("/sweep", h.Absence.Sweep)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveView))
					r.Get("/", h.Leave.List)
					r.Get("/current", h.Leave.ListCurrent)
					r.Get("/availability", h.Leave.VerifyAvailability)
					r.Get("/{id}", h.Leave.Get)
				})
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", h.Leave.Submit)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
					r.Post("/{id}/approve", h.Leave.Approve)
					r.Post("/{id}/reject", h.Leave.Reject)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", h.User.List)
				r.Post("/", h.User.Create)
			})
		})
	})
	return r
}
