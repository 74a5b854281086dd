package attendance

import (
	"context"
	"time"
)

type RecordRepository interface {
	// UpsertArrival writes the arrival half, creating the row when missing.
	// Notes replace stored notes only when non-nil.
	UpsertArrival(ctx context.Context, employeeID string, date time.Time, half ArrivalHalf, notes *string) (Record, error)
	UpsertDeparture(ctx context.Context, employeeID string, date time.Time, half DepartureHalf, notes *string) (Record, error)

	// GetByEmployeeAndDate returns nil without error when no row exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)
	ListByPeriod(ctx context.Context, start, end time.Time) ([]Record, error)
}

type LatenessRepository interface {
	// CreateIfAbsent inserts the event unless one exists for the employee and
	// date, and reports whether a row was written.
	CreateIfAbsent(ctx context.Context, event LatenessEvent) (bool, error)
	ListByPeriod(ctx context.Context, start, end time.Time) ([]LatenessEvent, error)
}

type AbsenceRepository interface {
	// CreateIfAbsent is the automatic path: an existing absence is left
	// untouched and false is returned.
	CreateIfAbsent(ctx context.Context, absence Absence) (bool, error)

	// Upsert is the manual path: reason and justified are overwritten, the
	// stored document is kept unless a new one is given.
	Upsert(ctx context.Context, absence Absence) (Absence, error)

	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Absence, error)
	GetDocument(ctx context.Context, id string) (Document, error)
	ListByPeriod(ctx context.Context, start, end time.Time) ([]Absence, error)

	// ListUnclocked returns active employees without an arrival on date and
	// not on approved leave, with their absence row if any.
	ListUnclocked(ctx context.Context, date time.Time) ([]UnclockedEmployee, error)
}
