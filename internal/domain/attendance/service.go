package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	RecordArrival(ctx context.Context, req RecordArrivalRequest) (ArrivalResponse, error)
	RecordDeparture(ctx context.Context, req RecordDepartureRequest) (DepartureResponse, error)
	MarkAbsence(ctx context.Context, req MarkAbsenceRequest) (AbsenceResponse, error)

	GetDailyAttendance(ctx context.Context, employeeID string, date string) (DailyAttendanceResponse, error)
	ListRecords(ctx context.Context, filter PeriodFilter) ([]RecordResponse, error)
	ListLateness(ctx context.Context, filter PeriodFilter) ([]LatenessResponse, error)
	ListAbsences(ctx context.Context, filter PeriodFilter) ([]AbsenceResponse, error)
	ListUnclockedToday(ctx context.Context) ([]UnclockedResponse, error)
	GetCertificate(ctx context.Context, absenceID string) (Document, error)

	// SweepAbsences promotes employees who never clocked in on the requested
	// date into absence records once their arrival deadline has passed.
	SweepAbsences(ctx context.Context, req SweepRequest) (SweepResult, error)
}

// LeaveGuard is consulted before any attendance write.
type LeaveGuard interface {
	IsOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error)
}
