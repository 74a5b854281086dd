package leave

import "errors"

var (
	ErrLeaveRequestNotFound  = errors.New("leave request not found")
	ErrOverlappingLeave      = errors.New("a leave request already exists for this period")
	ErrLeaveAlreadyProcessed = errors.New("leave request already processed")
)
