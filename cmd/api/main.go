package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/telemetry"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hris-attendance-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/hris-attendance-go/internal/service/employee"
	leaveService "github.com/cmlabs-hris/hris-attendance-go/internal/service/leave"
	userService "github.com/cmlabs-hris/hris-attendance-go/internal/service/user"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply the embedded schema before serving")
	bootstrapAdmin := flag.String("bootstrap-admin", "", "create an admin account with this username (password from ADMIN_PASSWORD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	appLogger := logger.New(os.Stdout, cfg.App, cfg.Telemetry.ServiceName)
	slog.SetDefault(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("Telemetry disabled", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.Options{
		MaxConns:       cfg.Database.MaxConns,
		MinConns:       cfg.Database.MinConns,
		AcquireTimeout: cfg.Database.AcquireTimeout,
	})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *migrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			slog.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Schema migrated")
	}

	loc := cfg.Location()
	tx := postgresql.NewTransactor(db)

	userRepo := postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	recordRepo := postgresql.NewRecordRepository(db)
	latenessRepo := postgresql.NewLatenessRepository(db)
	absenceRepo := postgresql.NewAbsenceRepository(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		slog.Error("Invalid JWT configuration", "error", err)
		os.Exit(1)
	}

	authSvc := serviceAuth.NewAuthService(userRepo, JWTService)
	userSvc := userService.NewUserService(userRepo)
	employeeSvc := employeeService.NewEmployeeService(tx, employeeRepo)
	leaveSvc := leaveService.NewLeaveService(tx, leaveRequestRepo, employeeRepo, loc)
	attendanceSvc := attendanceService.NewAttendanceService(
		tx,
		recordRepo,
		latenessRepo,
		absenceRepo,
		employeeRepo,
		leaveSvc,
		loc,
	)

	if *bootstrapAdmin != "" {
		if err := createAdmin(ctx, userSvc, *bootstrapAdmin); err != nil {
			slog.Error("Admin bootstrap failed", "error", err)
			os.Exit(1)
		}
	}

	router := appHTTP.NewRouter(cfg.App, appLogger, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authSvc),
		User:       appHTTP.NewUserHandler(userSvc),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc, attendanceSvc, leaveSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Absence:    appHTTP.NewAbsenceHandler(attendanceSvc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
	})

	scheduler := cron.NewScheduler()
	if cfg.Attendance.SweepInterval > 0 {
		cron.NewAttendanceJobs(attendanceSvc, cfg.Attendance.SweepInterval).RegisterJobs(scheduler)
		scheduler.Start(ctx)
	}
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      otelhttp.NewHandler(router, cfg.Telemetry.ServiceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown error", "error", err)
	}
}

func createAdmin(ctx context.Context, userSvc user.UserService, username string) error {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return errors.New("ADMIN_PASSWORD is required with -bootstrap-admin")
	}

	_, err := userSvc.Create(ctx, user.CreateUserRequest{
		Username: username,
		Password: password,
		Role:     string(user.RoleAdmin),
	})
	if errors.Is(err, user.ErrUsernameExists) {
		slog.Info("Admin account already exists", "username", username)
		return nil
	}
	return err
}
