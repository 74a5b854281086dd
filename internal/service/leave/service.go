package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/hris-attendance-go/internal/service/leave")

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	tx  postgresql.Transactor
	now func() time.Time
	loc *time.Location
}

func NewLeaveService(
	tx postgresql.Transactor,
	leaveRequestRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	loc *time.Location,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRequestRepo,
		EmployeeRepository:     employeeRepo,
		tx:                     tx,
		now:                    time.Now,
		loc:                    loc,
	}
}

// Submit implements leave.LeaveService.
func (l *LeaveServiceImpl) Submit(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	ctx, span := tracer.Start(ctx, "leave.Submit")
	defer span.End()

	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	span.SetAttributes(attribute.String("employee_id", req.EmployeeID))

	var created leave.LeaveRequest
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Serializes concurrent submissions for the same employee so the
		// overlap check below cannot race with another insert.
		emp, err := l.EmployeeRepository.LockByID(ctx, req.EmployeeID)
		if err != nil {
			return err
		}

		overlapping, err := l.LeaveRequestRepository.HasOverlapping(ctx, emp.ID, req.Period)
		if err != nil {
			return fmt.Errorf("failed to check overlapping leave: %w", err)
		}
		if overlapping {
			return leave.ErrOverlappingLeave
		}

		created, err = l.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
			EmployeeID: emp.ID,
			StartDate:  req.Period.Start,
			EndDate:    req.Period.End,
			Category:   strings.TrimSpace(req.Category),
			Reason:     req.Reason,
			Status:     leave.LeaveStatusPending,
		})
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}

		name := emp.FullName()
		created.EmployeeName = &name
		created.Service = &emp.Service
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("Leave request submitted",
		"leave_request_id", created.ID,
		"employee_id", created.EmployeeID,
		"start_date", created.StartDate.Format(time.DateOnly),
		"end_date", created.EndDate.Format(time.DateOnly),
	)
	return leave.ToResponse(created), nil
}

// Approve implements leave.LeaveService.
func (l *LeaveServiceImpl) Approve(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	return l.decide(ctx, id, leave.LeaveStatusApproved)
}

// Reject implements leave.LeaveService.
func (l *LeaveServiceImpl) Reject(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	return l.decide(ctx, id, leave.LeaveStatusRejected)
}

func (l *LeaveServiceImpl) decide(ctx context.Context, id string, to leave.LeaveStatus) (leave.LeaveRequestResponse, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}

	ctx, span := tracer.Start(ctx, "leave.Decide")
	defer span.End()
	span.SetAttributes(attribute.String("leave_request_id", id), attribute.String("status", string(to)))

	var decided leave.LeaveRequest
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		decided, err = l.LeaveRequestRepository.Transition(ctx, id, leave.LeaveStatusPending, to)
		if err == nil {
			return nil
		}
		if !errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return fmt.Errorf("failed to update leave request: %w", err)
		}

		// Nothing pending matched; tell a missing request from a decided one.
		if _, getErr := l.LeaveRequestRepository.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return leave.ErrLeaveAlreadyProcessed
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("Leave request decided", "leave_request_id", id, "employee_id", decided.EmployeeID, "status", to)
	return leave.ToResponse(decided), nil
}

// Get implements leave.LeaveService.
func (l *LeaveServiceImpl) Get(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	r, err := l.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.ToResponse(r), nil
}

// List implements leave.LeaveService.
func (l *LeaveServiceImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if filter.Status != nil {
		status := strings.ToLower(*filter.Status)
		filter.Status = &status
	}

	requests, err := l.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return toResponses(requests), nil
}

// ListByEmployee implements leave.LeaveService.
func (l *LeaveServiceImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequestResponse, error) {
	if !validator.IsValidUUID(employeeID) {
		return nil, employee.ErrEmployeeNotFound
	}
	if _, err := l.EmployeeRepository.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	requests, err := l.LeaveRequestRepository.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return toResponses(requests), nil
}

// ListCurrent implements leave.LeaveService.
func (l *LeaveServiceImpl) ListCurrent(ctx context.Context) ([]leave.LeaveRequestResponse, error) {
	requests, err := l.LeaveRequestRepository.ListActiveOn(ctx, l.today())
	if err != nil {
		return nil, fmt.Errorf("failed to list current leave: %w", err)
	}
	return toResponses(requests), nil
}

// IsOnLeave implements leave.LeaveService and attendance.LeaveGuard.
func (l *LeaveServiceImpl) IsOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	onLeave, err := l.LeaveRequestRepository.HasApprovedOn(ctx, employeeID, date)
	if err != nil {
		return false, fmt.Errorf("failed to check leave calendar: %w", err)
	}
	return onLeave, nil
}

// VerifyAvailability implements leave.LeaveService.
func (l *LeaveServiceImpl) VerifyAvailability(ctx context.Context, req leave.AvailabilityRequest) (leave.AvailabilityResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.AvailabilityResponse{}, err
	}

	overlapping, err := l.LeaveRequestRepository.HasOverlapping(ctx, req.EmployeeID, req.Period)
	if err != nil {
		return leave.AvailabilityResponse{}, fmt.Errorf("failed to check availability: %w", err)
	}

	return leave.AvailabilityResponse{
		EmployeeID: req.EmployeeID,
		StartDate:  req.Period.Start.Format(time.DateOnly),
		EndDate:    req.Period.End.Format(time.DateOnly),
		Available:  !overlapping,
	}, nil
}

func (l *LeaveServiceImpl) today() time.Time {
	y, m, d := l.now().In(l.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toResponses(requests []leave.LeaveRequest) []leave.LeaveRequestResponse {
	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.ToResponse(r))
	}
	return responses
}

var _ leave.LeaveService = (*LeaveServiceImpl)(nil)
