package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	ListServices(w http.ResponseWriter, r *http.Request)
	GroupByService(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)

	GetDailyAttendance(w http.ResponseWriter, r *http.Request)
	ListLeaves(w http.ResponseWriter, r *http.Request)
}

type EmployeeHandlerImpl struct {
	employeeService   employee.EmployeeService
	attendanceService attendance.AttendanceService
	leaveService      leave.LeaveService
}

func NewEmployeeHandler(employeeService employee.EmployeeService, attendanceService attendance.AttendanceService, leaveService leave.LeaveService) EmployeeHandler {
	return &EmployeeHandlerImpl{
		employeeService:   employeeService,
		attendanceService: attendanceService,
		leaveService:      leaveService,
	}
}

func parseEmployeeFilter(r *http.Request) employee.EmployeeFilter {
	var filter employee.EmployeeFilter
	q := r.URL.Query()

	if service := q.Get("service"); service != "" {
		filter.Service = &service
	}
	if search := q.Get("search"); search != "" {
		filter.Search = &search
	}
	if inactive, err := strconv.ParseBool(q.Get("include_inactive")); err == nil {
		filter.IncludeInactive = inactive
	}
	return filter
}

// List implements EmployeeHandler.
func (e *EmployeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	employees, err := e.employeeService.List(r.Context(), parseEmployeeFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, employees)
}

// ListServices implements EmployeeHandler.
func (e *EmployeeHandlerImpl) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := e.employeeService.ListServices(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, services)
}

// GroupByService implements EmployeeHandler.
func (e *EmployeeHandlerImpl) GroupByService(w http.ResponseWriter, r *http.Request) {
	groups, err := e.employeeService.GroupByService(r.Context(), parseEmployeeFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, groups)
}

// Create implements EmployeeHandler.
func (e *EmployeeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateEmployeeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateEmployee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := e.employeeService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Employee created successfully", created)
}

// Get implements EmployeeHandler.
func (e *EmployeeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := e.employeeService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, emp)
}

// Update implements EmployeeHandler.
func (e *EmployeeHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req employee.UpdateEmployeeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateEmployee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	updated, err := e.employeeService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee updated successfully", updated)
}

// GetDailyAttendance implements EmployeeHandler.
func (e *EmployeeHandlerImpl) GetDailyAttendance(w http.ResponseWriter, r *http.Request) {
	day, err := e.attendanceService.GetDailyAttendance(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, day)
}

// ListLeaves implements EmployeeHandler.
func (e *EmployeeHandlerImpl) ListLeaves(w http.ResponseWriter, r *http.Request) {
	requests, err := e.leaveService.ListByEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, requests)
}
