package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/timeofday"
)

type ArrivalStatus string

const (
	ArrivalOnTime     ArrivalStatus = "on_time"
	ArrivalLate       ArrivalStatus = "late"
	ArrivalAbsent     ArrivalStatus = "absent"
	ArrivalEarly      ArrivalStatus = "early"
	ArrivalNotClocked ArrivalStatus = "not_clocked"
)

type DepartureStatus string

const (
	DepartureOnTime DepartureStatus = "on_time"
	DepartureEarly  DepartureStatus = "early_departure"
)

// Record is the single attendance row of an employee for a date. Either half
// may be missing; each is written independently.
type Record struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Arrival    *ArrivalHalf
	Departure  *DepartureHalf
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Populated on joined reads
	EmployeeName *string
	Service      *string
}

type ArrivalHalf struct {
	Time            timeofday.TimeOfDay
	Status          ArrivalStatus
	LatenessMinutes int
	Reason          *string
}

type DepartureHalf struct {
	Time         timeofday.TimeOfDay
	Status       DepartureStatus
	EarlyMinutes int
	Reason       *string
}

// LatenessEvent is an append-only ledger entry; the first write for a date wins.
type LatenessEvent struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Minutes    int
	Reason     *string
	CreatedAt  time.Time

	EmployeeName *string
	Service      *string
}

type Absence struct {
	ID          string
	EmployeeID  string
	Date        time.Time
	Reason      string
	Justified   bool
	Document    *Document
	HasDocument bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	EmployeeName *string
	Service      *string
}

// Document is an opaque justification blob, typically a medical certificate.
type Document struct {
	Data      []byte
	MediaType string
}

// UnclockedEmployee is an active employee with no arrival on a date and no
// approved leave covering it. Absence is set when one is already recorded.
type UnclockedEmployee struct {
	EmployeeID       string
	EmployeeName     string
	Service          string
	Shift            string
	ScheduledArrival timeofday.TimeOfDay
	Absence          *Absence
}

// AutoAbsenceReason is recorded by the sweep.
const AutoAbsenceReason = "unjustified automatic absence"

// LateAbsenceReason is recorded when an arrival lands past the absence threshold.
func LateAbsenceReason(delay time.Duration) string {
	return fmt.Sprintf("automatic absence (%d minutes late)", int(delay/time.Minute))
}
