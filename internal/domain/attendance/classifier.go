package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/timeofday"
)

// Window bounds relative to the scheduled arrival S.
const (
	EarliestOnTime = 15 * time.Minute // S-15 is still on time
	GraceBoundary  = 5 * time.Minute  // lateness is counted from S-5
	AbsenceAfter   = 30 * time.Minute // S+30 and later is an absence

	// EarlyDepartureTolerance is how long before the scheduled departure an
	// employee may leave without being flagged.
	EarlyDepartureTolerance = 5 * time.Minute

	// AbsenceOffsetMinutes is the offset reported for an absence.
	AbsenceOffsetMinutes = 30
)

type ArrivalClassification struct {
	Status        ArrivalStatus
	OffsetMinutes int
	IsAbsence     bool
}

// ClassifyArrival places an observed arrival in one of four contiguous
// windows around the scheduled arrival:
//
//	(-inf, S-15)  Early    offset = -(whole minutes before S-15)
//	[S-15, S-5]   OnTime   offset = 0
//	(S-5, S+30)   Late     offset = whole minutes since S-5
//	[S+30, +inf)  Absent   offset = 30
//
// A nil input yields NotClocked. Late offsets are at least 1 and Early
// offsets at most -1 even when less than a whole minute elapsed.
func ClassifyArrival(observed, scheduled *timeofday.TimeOfDay) ArrivalClassification {
	if observed == nil || scheduled == nil {
		return ArrivalClassification{Status: ArrivalNotClocked}
	}

	delta := observed.Sub(*scheduled)
	switch {
	case delta >= AbsenceAfter:
		return ArrivalClassification{Status: ArrivalAbsent, OffsetMinutes: AbsenceOffsetMinutes, IsAbsence: true}
	case delta > -GraceBoundary:
		return ArrivalClassification{Status: ArrivalLate, OffsetMinutes: max(wholeMinutes(delta+GraceBoundary), 1)}
	case delta >= -EarliestOnTime:
		return ArrivalClassification{Status: ArrivalOnTime}
	default:
		return ArrivalClassification{Status: ArrivalEarly, OffsetMinutes: -max(wholeMinutes(-EarliestOnTime-delta), 1)}
	}
}

type DepartureClassification struct {
	Status       DepartureStatus
	EarlyMinutes int
}

// ClassifyDeparture flags a departure more than five minutes before the
// scheduled departure. Both times are taken on the same reference date.
func ClassifyDeparture(observed, scheduled timeofday.TimeOfDay) DepartureClassification {
	delta := scheduled.Sub(observed)
	if delta > EarlyDepartureTolerance {
		return DepartureClassification{Status: DepartureEarly, EarlyMinutes: wholeMinutes(delta)}
	}
	return DepartureClassification{Status: DepartureOnTime}
}

// LatenessLedgered reports whether a Late offset produces a lateness event.
func LatenessLedgered(c ArrivalClassification) bool {
	return c.Status == ArrivalLate && c.OffsetMinutes > 0 && c.OffsetMinutes < AbsenceOffsetMinutes
}

func wholeMinutes(d time.Duration) int {
	return int(d / time.Minute)
}
