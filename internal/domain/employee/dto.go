package employee

import (
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/timeofday"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	LastName           string `json:"last_name"`
	FirstName          string `json:"first_name"`
	Service            string `json:"service"`
	Position           string `json:"position"`
	Shift              string `json:"shift"`
	ScheduledArrival   string `json:"scheduled_arrival"`
	ScheduledDeparture string `json:"scheduled_departure"`

	// Populated by Validate
	Arrival   timeofday.TimeOfDay `json:"-"`
	Departure timeofday.TimeOfDay `json:"-"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LastName) {
		errs.Add("last_name", "last_name is required")
	} else if len(r.LastName) > 100 {
		errs.Add("last_name", "last_name must not exceed 100 characters")
	}

	if validator.IsEmpty(r.FirstName) {
		errs.Add("first_name", "first_name is required")
	} else if len(r.FirstName) > 100 {
		errs.Add("first_name", "first_name must not exceed 100 characters")
	}

	if validator.IsEmpty(r.Service) {
		errs.Add("service", "service is required")
	} else if len(r.Service) > 100 {
		errs.Add("service", "service must not exceed 100 characters")
	}

	if len(r.Position) > 100 {
		errs.Add("position", "position must not exceed 100 characters")
	}

	if !ShiftKind(strings.ToLower(r.Shift)).IsValid() {
		errs.Add("shift", "shift must be one of: day, night")
	}

	arrival, err := timeofday.Parse(r.ScheduledArrival)
	if err != nil {
		errs.Add("scheduled_arrival", "scheduled_arrival must be in HH:MM or HH:MM:SS format")
	}
	r.Arrival = arrival

	departure, err := timeofday.Parse(r.ScheduledDeparture)
	if err != nil {
		errs.Add("scheduled_departure", "scheduled_departure must be in HH:MM or HH:MM:SS format")
	}
	r.Departure = departure

	return errs.Err()
}

// UpdateEmployeeRequest is a partial update. Deactivation goes through Active;
// employees are never hard-deleted.
type UpdateEmployeeRequest struct {
	ID                 string  `json:"-"`
	LastName           *string `json:"last_name,omitempty"`
	FirstName          *string `json:"first_name,omitempty"`
	Service            *string `json:"service,omitempty"`
	Position           *string `json:"position,omitempty"`
	Shift              *string `json:"shift,omitempty"`
	ScheduledArrival   *string `json:"scheduled_arrival,omitempty"`
	ScheduledDeparture *string `json:"scheduled_departure,omitempty"`
	Active             *bool   `json:"active,omitempty"`

	// Populated by Validate
	Arrival   *timeofday.TimeOfDay `json:"-"`
	Departure *timeofday.TimeOfDay `json:"-"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	} else if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}

	if r.LastName != nil && validator.IsEmpty(*r.LastName) {
		errs.Add("last_name", "last_name must not be empty")
	}
	if r.FirstName != nil && validator.IsEmpty(*r.FirstName) {
		errs.Add("first_name", "first_name must not be empty")
	}
	if r.Service != nil && validator.IsEmpty(*r.Service) {
		errs.Add("service", "service must not be empty")
	}
	if r.Shift != nil && !ShiftKind(strings.ToLower(*r.Shift)).IsValid() {
		errs.Add("shift", "shift must be one of: day, night")
	}

	if r.ScheduledArrival != nil {
		arrival, err := timeofday.Parse(*r.ScheduledArrival)
		if err != nil {
			errs.Add("scheduled_arrival", "scheduled_arrival must be in HH:MM or HH:MM:SS format")
		} else {
			r.Arrival = &arrival
		}
	}

	if r.ScheduledDeparture != nil {
		departure, err := timeofday.Parse(*r.ScheduledDeparture)
		if err != nil {
			errs.Add("scheduled_departure", "scheduled_departure must be in HH:MM or HH:MM:SS format")
		} else {
			r.Departure = &departure
		}
	}

	return errs.Err()
}

type EmployeeFilter struct {
	Service         *string `json:"service,omitempty"`
	Search          *string `json:"search,omitempty"`
	IncludeInactive bool    `json:"include_inactive"`
}

type EmployeeResponse struct {
	ID                 string `json:"id"`
	LastName           string `json:"last_name"`
	FirstName          string `json:"first_name"`
	FullName           string `json:"full_name"`
	Service            string `json:"service"`
	Position           string `json:"position"`
	Shift              string `json:"shift"`
	ScheduledArrival   string `json:"scheduled_arrival"`
	ScheduledDeparture string `json:"scheduled_departure"`
	Active             bool   `json:"active"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type ServiceGroup struct {
	Service   string             `json:"service"`
	Employees []EmployeeResponse `json:"employees"`
}

func ToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                 e.ID,
		LastName:           e.LastName,
		FirstName:          e.FirstName,
		FullName:           e.FullName(),
		Service:            e.Service,
		Position:           e.Position,
		Shift:              string(e.Shift),
		ScheduledArrival:   e.ScheduledArrival.String(),
		ScheduledDeparture: e.ScheduledDeparture.String(),
		Active:             e.Active,
		CreatedAt:          e.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:          e.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
