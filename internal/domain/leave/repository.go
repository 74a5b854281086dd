package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)

	// ListActiveOn returns approved requests whose range contains date.
	ListActiveOn(ctx context.Context, date time.Time) ([]LeaveRequest, error)

	HasApprovedOn(ctx context.Context, employeeID string, date time.Time) (bool, error)

	// HasOverlapping reports whether a pending or approved request of the
	// employee intersects the range.
	HasOverlapping(ctx context.Context, employeeID string, period DateRange) (bool, error)

	// Transition moves a request from one status to another atomically and
	// returns the updated request, or ErrLeaveRequestNotFound when no row in
	// the from status matched.
	Transition(ctx context.Context, id string, from, to LeaveStatus) (LeaveRequest, error)
}
