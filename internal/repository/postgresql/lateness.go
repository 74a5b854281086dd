package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
)

type latenessRepositoryImpl struct {
	db *database.DB
}

func NewLatenessRepository(db *database.DB) attendance.LatenessRepository {
	return &latenessRepositoryImpl{db: db}
}

// CreateIfAbsent implements attendance.LatenessRepository.
func (l *latenessRepositoryImpl) CreateIfAbsent(ctx context.Context, event attendance.LatenessEvent) (bool, error) {
	q := GetQuerier(ctx, l.db)

	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("generate lateness id: %w", err)
	}

	query := `
		INSERT INTO lateness_events (id, employee_id, event_date, minutes, reason)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, event_date) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, id.String(), event.EmployeeID, event.Date, event.Minutes, event.Reason)
	if err != nil {
		return false, wrapErr("create lateness event", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByPeriod implements attendance.LatenessRepository.
func (l *latenessRepositoryImpl) ListByPeriod(ctx context.Context, start, end time.Time) ([]attendance.LatenessEvent, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT le.id, le.employee_id, le.event_date, le.minutes, le.reason, le.created_at,
			e.first_name || ' ' || e.last_name, e.service
		FROM lateness_events le
		JOIN employees e ON e.id = le.employee_id
		WHERE le.event_date BETWEEN $1 AND $2
		ORDER BY le.event_date DESC, le.minutes DESC
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, wrapErr("list lateness events", err)
	}
	defer rows.Close()

	var events []attendance.LatenessEvent
	for rows.Next() {
		var ev attendance.LatenessEvent
		if err := rows.Scan(
			&ev.ID, &ev.EmployeeID, &ev.Date, &ev.Minutes, &ev.Reason, &ev.CreatedAt,
			&ev.EmployeeName, &ev.Service,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list lateness events", err)
	}
	return events, nil
}
