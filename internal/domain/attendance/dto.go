package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/timeofday"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

const MaxDocumentSize = 5 << 20

type RecordArrivalRequest struct {
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Reason     *string `json:"reason,omitempty"`
	Notes      *string `json:"notes,omitempty"`

	// Populated by Validate
	ParsedDate time.Time           `json:"-"`
	ParsedTime timeofday.TimeOfDay `json:"-"`
}

func (r *RecordArrivalRequest) Validate() error {
	var errs validator.ValidationErrors
	r.ParsedDate, r.ParsedTime = validateClockEvent(&errs, r.EmployeeID, r.Date, r.Time)
	return errs.Err()
}

type RecordDepartureRequest struct {
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Reason     *string `json:"reason,omitempty"`
	Notes      *string `json:"notes,omitempty"`

	// Populated by Validate
	ParsedDate time.Time           `json:"-"`
	ParsedTime timeofday.TimeOfDay `json:"-"`
}

func (r *RecordDepartureRequest) Validate() error {
	var errs validator.ValidationErrors
	r.ParsedDate, r.ParsedTime = validateClockEvent(&errs, r.EmployeeID, r.Date, r.Time)
	return errs.Err()
}

func validateClockEvent(errs *validator.ValidationErrors, employeeID, date, clock string) (time.Time, timeofday.TimeOfDay) {
	if validator.IsEmpty(employeeID) {
		errs.Add("employee_id", "employee_id is required")
	} else if !validator.IsValidUUID(employeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	d, ok := validator.IsValidDate(date)
	if !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	t, err := timeofday.Parse(clock)
	if err != nil {
		errs.Add("time", "time must be in HH:MM or HH:MM:SS format")
	}
	return d, t
}

type MarkAbsenceRequest struct {
	EmployeeID string    `json:"employee_id"`
	Date       string    `json:"date"`
	Reason     string    `json:"reason"`
	Justified  bool      `json:"justified"`
	Document   *Document `json:"-"`

	// Populated by Validate
	ParsedDate time.Time `json:"-"`
}

func (r *MarkAbsenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	d, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	r.ParsedDate = d

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}

	if r.Document != nil {
		if len(r.Document.Data) == 0 {
			errs.Add("certificate", "certificate must not be empty")
		} else if len(r.Document.Data) > MaxDocumentSize {
			errs.Add("certificate", "certificate must not exceed 5MB")
		}
		if !validator.IsValidMediaType(r.Document.MediaType) {
			errs.Add("certificate", "certificate media type is invalid")
		}
	}

	return errs.Err()
}

// PeriodFilter selects an inclusive date range. Empty bounds default to the
// current month.
type PeriodFilter struct {
	StartDate string
	EndDate   string

	// Populated by Validate
	Start time.Time
	End   time.Time
}

func (f *PeriodFilter) Validate(today time.Time) error {
	var errs validator.ValidationErrors

	y, m, _ := today.Date()
	f.Start = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	f.End = f.Start.AddDate(0, 1, -1)

	if f.StartDate != "" {
		d, ok := validator.IsValidDate(f.StartDate)
		if !ok {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
		f.Start = d
	}
	if f.EndDate != "" {
		d, ok := validator.IsValidDate(f.EndDate)
		if !ok {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
		f.End = d
	}
	if len(errs) == 0 && f.End.Before(f.Start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.Err()
}

type ArrivalResponse struct {
	EmployeeID      string          `json:"employee_id"`
	Date            string          `json:"date"`
	Status          string          `json:"status"`
	OffsetMinutes   int             `json:"offset_minutes"`
	LatenessMinutes int             `json:"lateness_minutes"`
	AbsenceRecorded bool            `json:"absence_recorded"`
	Record          *RecordResponse `json:"record,omitempty"`
}

type DepartureResponse struct {
	EmployeeID   string          `json:"employee_id"`
	Date         string          `json:"date"`
	Status       string          `json:"status"`
	EarlyMinutes int             `json:"early_minutes"`
	Record       *RecordResponse `json:"record,omitempty"`
}

type RecordResponse struct {
	ID                    string  `json:"id"`
	EmployeeID            string  `json:"employee_id"`
	EmployeeName          *string `json:"employee_name,omitempty"`
	Service               *string `json:"service,omitempty"`
	Date                  string  `json:"date"`
	ArrivalTime           *string `json:"arrival_time"`
	ArrivalStatus         *string `json:"arrival_status"`
	LatenessMinutes       int     `json:"lateness_minutes"`
	ArrivalReason         *string `json:"arrival_reason,omitempty"`
	DepartureTime         *string `json:"departure_time"`
	DepartureStatus       *string `json:"departure_status"`
	EarlyDepartureMinutes int     `json:"early_departure_minutes"`
	DepartureReason       *string `json:"departure_reason,omitempty"`
	Notes                 *string `json:"notes,omitempty"`
}

func ToRecordResponse(r Record) RecordResponse {
	resp := RecordResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Service:      r.Service,
		Date:         r.Date.Format(time.DateOnly),
		Notes:        r.Notes,
	}
	if a := r.Arrival; a != nil {
		t, s := a.Time.String(), string(a.Status)
		resp.ArrivalTime = &t
		resp.ArrivalStatus = &s
		resp.LatenessMinutes = a.LatenessMinutes
		resp.ArrivalReason = a.Reason
	}
	if d := r.Departure; d != nil {
		t, s := d.Time.String(), string(d.Status)
		resp.DepartureTime = &t
		resp.DepartureStatus = &s
		resp.EarlyDepartureMinutes = d.EarlyMinutes
		resp.DepartureReason = d.Reason
	}
	return resp
}

type LatenessResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Service      *string `json:"service,omitempty"`
	Date         string  `json:"date"`
	Minutes      int     `json:"minutes"`
	Reason       *string `json:"reason,omitempty"`
}

func ToLatenessResponse(e LatenessEvent) LatenessResponse {
	return LatenessResponse{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		Service:      e.Service,
		Date:         e.Date.Format(time.DateOnly),
		Minutes:      e.Minutes,
		Reason:       e.Reason,
	}
}

type AbsenceResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   *string `json:"employee_name,omitempty"`
	Service        *string `json:"service,omitempty"`
	Date           string  `json:"date"`
	Reason         string  `json:"reason"`
	Justified      bool    `json:"justified"`
	HasCertificate bool    `json:"has_certificate"`
}

func ToAbsenceResponse(a Absence) AbsenceResponse {
	return AbsenceResponse{
		ID:             a.ID,
		EmployeeID:     a.EmployeeID,
		EmployeeName:   a.EmployeeName,
		Service:        a.Service,
		Date:           a.Date.Format(time.DateOnly),
		Reason:         a.Reason,
		Justified:      a.Justified,
		HasCertificate: a.HasDocument || a.Document != nil,
	}
}

type UnclockedResponse struct {
	EmployeeID       string           `json:"employee_id"`
	EmployeeName     string           `json:"employee_name"`
	Service          string           `json:"service"`
	Shift            string           `json:"shift"`
	ScheduledArrival string           `json:"scheduled_arrival"`
	Absence          *AbsenceResponse `json:"absence,omitempty"`
}

type DailyAttendanceResponse struct {
	EmployeeID string           `json:"employee_id"`
	Date       string           `json:"date"`
	OnLeave    bool             `json:"on_leave"`
	Record     *RecordResponse  `json:"record,omitempty"`
	Absence    *AbsenceResponse `json:"absence,omitempty"`
}

// SweepRequest selects the date to sweep. An empty date means today.
type SweepRequest struct {
	Date string

	// Populated by Validate
	ParsedDate time.Time
}

func (r *SweepRequest) Validate(today time.Time) error {
	if r.Date == "" {
		r.ParsedDate = today
		return nil
	}
	var errs validator.ValidationErrors
	d, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	r.ParsedDate = d
	return errs.Err()
}

type SweepResult struct {
	Date          string    `json:"date"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
	Candidates    int       `json:"candidates"`
	Marked        int       `json:"marked"`
	AlreadyMarked int       `json:"already_marked"`
	NotYetDue     int       `json:"not_yet_due"`
}
