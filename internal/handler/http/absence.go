package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead leaves room for the form fields next to the certificate.
const multipartOverhead = 1 << 20

type AbsenceHandler interface {
	Mark(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListToday(w http.ResponseWriter, r *http.Request)
	GetCertificate(w http.ResponseWriter, r *http.Request)
	Sweep(w http.ResponseWriter, r *http.Request)
}

type AbsenceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAbsenceHandler(attendanceService attendance.AttendanceService) AbsenceHandler {
	return &AbsenceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Mark implements AbsenceHandler. It accepts a JSON body, or a multipart form
// whose optional "certificate" part carries the justification document.
func (h *AbsenceHandlerImpl) Mark(w http.ResponseWriter, r *http.Request) {
	var req attendance.MarkAbsenceRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		parsed, err := parseAbsenceForm(w, r)
		if err != nil {
			slog.Error("MarkAbsence form error", "error", err)
			response.BadRequest(w, err.Error(), nil)
			return
		}
		req = parsed
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("MarkAbsence decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	absence, err := h.attendanceService.MarkAbsence(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Absence recorded", absence)
}

func parseAbsenceForm(w http.ResponseWriter, r *http.Request) (attendance.MarkAbsenceRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, attendance.MaxDocumentSize+multipartOverhead)
	if err := r.ParseMultipartForm(attendance.MaxDocumentSize + multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return attendance.MarkAbsenceRequest{}, errors.New("certificate must not exceed 5MB")
		}
		return attendance.MarkAbsenceRequest{}, errors.New("invalid multipart form")
	}

	req := attendance.MarkAbsenceRequest{
		EmployeeID: r.FormValue("employee_id"),
		Date:       r.FormValue("date"),
		Reason:     r.FormValue("reason"),
	}
	if justified := r.FormValue("justified"); justified != "" {
		v, err := strconv.ParseBool(justified)
		if err != nil {
			return attendance.MarkAbsenceRequest{}, errors.New("justified must be a boolean")
		}
		req.Justified = v
	}

	file, header, err := r.FormFile("certificate")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return attendance.MarkAbsenceRequest{}, fmt.Errorf("invalid certificate: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, attendance.MaxDocumentSize+1))
	if err != nil {
		return attendance.MarkAbsenceRequest{}, fmt.Errorf("failed to read certificate: %w", err)
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}

	req.Document = &attendance.Document{Data: data, MediaType: mediaType}
	return req, nil
}

// List implements AbsenceHandler.
func (h *AbsenceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	absences, err := h.attendanceService.ListAbsences(r.Context(), parsePeriodFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, absences, &response.Meta{TotalItems: len(absences)})
}

// ListToday implements AbsenceHandler.
func (h *AbsenceHandlerImpl) ListToday(w http.ResponseWriter, r *http.Request) {
	unclocked, err := h.attendanceService.ListUnclockedToday(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, unclocked)
}

// GetCertificate implements AbsenceHandler.
func (h *AbsenceHandlerImpl) GetCertificate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.attendanceService.GetCertificate(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filename := "certificate-" + id
	if exts, err := mime.ExtensionsByType(doc.MediaType); err == nil && len(exts) > 0 {
		filename += exts[0]
	}
	response.Attachment(w, doc.MediaType, filename, doc.Data)
}

// Sweep implements AbsenceHandler.
func (h *AbsenceHandlerImpl) Sweep(w http.ResponseWriter, r *http.Request) {
	req := attendance.SweepRequest{Date: r.URL.Query().Get("date")}

	result, err := h.attendanceService.SweepAbsences(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("%d absence(s) recorded", result.Marked), result)
}
