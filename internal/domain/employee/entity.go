package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/timeofday"
)

type Employee struct {
	ID                 string
	LastName           string
	FirstName          string
	Service            string
	Position           string
	Shift              ShiftKind
	ScheduledArrival   timeofday.TimeOfDay
	ScheduledDeparture timeofday.TimeOfDay
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// ShiftKind is the single shift an employee is scheduled on.
type ShiftKind string

const (
	ShiftDay   ShiftKind = "day"
	ShiftNight ShiftKind = "night"
)

func (s ShiftKind) IsValid() bool {
	return s == ShiftDay || s == ShiftNight
}
