package leave

import (
	"context"
	"time"
)

type LeaveService interface {
	Submit(ctx context.Context, req CreateLeaveRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, id string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, id string) (LeaveRequestResponse, error)

	Get(ctx context.Context, id string) (LeaveRequestResponse, error)
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequestResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error)
	ListCurrent(ctx context.Context) ([]LeaveRequestResponse, error)

	// IsOnLeave is the guard consulted before every attendance write.
	IsOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error)

	VerifyAvailability(ctx context.Context, req AvailabilityRequest) (AvailabilityResponse, error)
}
