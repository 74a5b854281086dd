package leave

import "time"

// LeaveRequest is one leave period of an employee. Dates are inclusive and
// carry no time-of-day.
type LeaveRequest struct {
	ID         string
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
	Category   string
	Reason     *string
	Status     LeaveStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Populated on joined reads
	EmployeeName *string
	Service      *string
}

func (r LeaveRequest) Period() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

func (s LeaveStatus) IsValid() bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected:
		return true
	}
	return false
}

// Blocking reports whether a request in this status reserves its period.
func (s LeaveStatus) Blocking() bool {
	return s == LeaveStatusPending || s == LeaveStatusApproved
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(d time.Time) bool {
	d = truncateDay(d)
	return !d.Before(truncateDay(r.Start)) && !d.After(truncateDay(r.End))
}

// Overlaps checks the three shapes of intersection: other starts inside r,
// other ends inside r, or other covers r entirely.
func (r DateRange) Overlaps(other DateRange) bool {
	if r.Contains(other.Start) || r.Contains(other.End) {
		return true
	}
	return !truncateDay(other.Start).After(truncateDay(r.Start)) &&
		!truncateDay(other.End).Before(truncateDay(r.End))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
