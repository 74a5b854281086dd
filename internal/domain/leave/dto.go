package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateLeaveRequest struct {
	EmployeeID string  `json:"employee_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Category   string  `json:"category"`
	Reason     *string `json:"reason,omitempty"`

	// Populated by Validate
	Period DateRange `json:"-"`
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
	r.Period = DateRange{Start: start, End: end}

	if validator.IsEmpty(r.Category) {
		errs.Add("category", "category is required")
	} else if len(r.Category) > 50 {
		errs.Add("category", "category must not exceed 50 characters")
	}

	if r.Reason != nil && len(*r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

type LeaveFilter struct {
	Status *string
}

func (f LeaveFilter) Validate() error {
	if f.Status == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !LeaveStatus(strings.ToLower(*f.Status)).IsValid() {
		errs.Add("status", "status must be one of: pending, approved, rejected")
	}
	return errs.Err()
}

type AvailabilityRequest struct {
	EmployeeID string
	StartDate  string
	EndDate    string

	// Populated by Validate
	Period DateRange
}

func (r *AvailabilityRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
	r.Period = DateRange{Start: start, End: end}

	return errs.Err()
}

type AvailabilityResponse struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Available  bool   `json:"available"`
}

type LeaveRequestResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Service      *string `json:"service,omitempty"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	TotalDays    int     `json:"total_days"`
	Category     string  `json:"category"`
	Reason       *string `json:"reason,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func ToResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Service:      r.Service,
		StartDate:    r.StartDate.Format(time.DateOnly),
		EndDate:      r.EndDate.Format(time.DateOnly),
		TotalDays:    int(truncateDay(r.EndDate).Sub(truncateDay(r.StartDate)).Hours()/24) + 1,
		Category:     r.Category,
		Reason:       r.Reason,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:    r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
