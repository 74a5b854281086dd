package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	RecordArrival(w http.ResponseWriter, r *http.Request)
	RecordDeparture(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)
	ListLateness(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &AttendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

func parsePeriodFilter(r *http.Request) attendance.PeriodFilter {
	q := r.URL.Query()
	return attendance.PeriodFilter{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
}

// RecordArrival implements AttendanceHandler.
func (h *AttendanceHandlerImpl) RecordArrival(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordArrivalRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RecordArrival decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.RecordArrival(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.AbsenceRecorded {
		response.SuccessWithMessage(w, "Arrival past the absence threshold, absence recorded", result)
		return
	}
	response.SuccessWithMessage(w, "Arrival recorded", result)
}

// RecordDeparture implements AttendanceHandler.
func (h *AttendanceHandlerImpl) RecordDeparture(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordDepartureRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RecordDeparture decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.RecordDeparture(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Departure recorded", result)
}

// ListRecords implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.attendanceService.ListRecords(r.Context(), parsePeriodFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, records, &response.Meta{TotalItems: len(records)})
}

// ListLateness implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ListLateness(w http.ResponseWriter, r *http.Request) {
	events, err := h.attendanceService.ListLateness(r.Context(), parsePeriodFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, events, &response.Meta{TotalItems: len(events)})
}
