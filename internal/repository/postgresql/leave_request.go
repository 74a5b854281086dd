package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `lr.id, lr.employee_id, lr.start_date, lr.end_date, lr.category, lr.reason,
	lr.status, lr.created_at, lr.updated_at, e.first_name || ' ' || e.last_name, e.service`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var r leave.LeaveRequest
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.StartDate, &r.EndDate, &r.Category, &r.Reason,
		&r.Status, &r.CreatedAt, &r.UpdatedAt, &r.EmployeeName, &r.Service,
	)
	return r, err
}

func (l *leaveRequestRepositoryImpl) queryList(ctx context.Context, op, where string, args ...interface{}) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
	` + where + ` ORDER BY lr.start_date DESC, lr.created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		r, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return requests, nil
}

// Create implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)

	id, err := uuid.NewV7()
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("generate leave request id: %w", err)
	}

	query := `
		INSERT INTO leave_requests (id, employee_id, start_date, end_date, category, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	created := req
	created.ID = id.String()
	err = q.QueryRow(ctx, query,
		created.ID, req.EmployeeID, req.StartDate, req.EndDate, req.Category, req.Reason, req.Status,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, wrapErr("create leave request", err)
	}
	return created, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
		WHERE lr.id = $1
	`

	r, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, wrapErr(fmt.Sprintf("get leave request %s", id), err)
	}
	return r, nil
}

// List implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, error) {
	if filter.Status != nil {
		return l.queryList(ctx, "list leave requests", "WHERE lr.status = $1", *filter.Status)
	}
	return l.queryList(ctx, "list leave requests", "")
}

// ListByEmployee implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return l.queryList(ctx, "list employee leave requests", "WHERE lr.employee_id = $1", employeeID)
}

// ListActiveOn implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) ListActiveOn(ctx context.Context, date time.Time) ([]leave.LeaveRequest, error) {
	return l.queryList(ctx, "list current leave requests",
		"WHERE lr.status = $1 AND $2::date BETWEEN lr.start_date AND lr.end_date",
		leave.LeaveStatusApproved, date)
}

// HasApprovedOn implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) HasApprovedOn(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1 AND status = $2
				AND $3::date BETWEEN start_date AND end_date
		)
	`

	var onLeave bool
	if err := q.QueryRow(ctx, query, employeeID, leave.LeaveStatusApproved, date).Scan(&onLeave); err != nil {
		return false, wrapErr("check approved leave", err)
	}
	return onLeave, nil
}

// HasOverlapping implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) HasOverlapping(ctx context.Context, employeeID string, period leave.DateRange) (bool, error) {
	q := GetQuerier(ctx, l.db)

	// Start inside, end inside, or the new range covering an existing one.
	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1 AND status IN ($2, $3)
				AND (
					($4::date BETWEEN start_date AND end_date)
					OR ($5::date BETWEEN start_date AND end_date)
					OR ($4::date <= start_date AND $5::date >= end_date)
				)
		)
	`

	var overlapping bool
	err := q.QueryRow(ctx, query,
		employeeID, leave.LeaveStatusPending, leave.LeaveStatusApproved, period.Start, period.End,
	).Scan(&overlapping)
	if err != nil {
		return false, wrapErr("check overlapping leave", err)
	}
	return overlapping, nil
}

// Transition implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) Transition(ctx context.Context, id string, from, to leave.LeaveStatus) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		UPDATE leave_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING id
	`

	var updatedID string
	if err := q.QueryRow(ctx, query, id, from, to).Scan(&updatedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, wrapErr(fmt.Sprintf("transition leave request %s", id), err)
	}

	return l.GetByID(ctx, updatedID)
}
