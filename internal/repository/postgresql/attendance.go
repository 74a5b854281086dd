package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const recordColumns = `ar.id, ar.employee_id, ar.record_date,
	ar.arrival_time, ar.arrival_status, ar.lateness_minutes, ar.arrival_reason,
	ar.departure_time, ar.departure_status, ar.early_departure_minutes, ar.departure_reason,
	ar.notes, ar.created_at, ar.updated_at`

type recordRepositoryImpl struct {
	db *database.DB
}

func NewRecordRepository(db *database.DB) attendance.RecordRepository {
	return &recordRepositoryImpl{db: db}
}

// recordRow mirrors the nullable halves of an attendance_records row.
type recordRow struct {
	record attendance.Record

	arrivalTime     pgtype.Time
	arrivalStatus   *string
	latenessMinutes int
	arrivalReason   *string

	departureTime   pgtype.Time
	departureStatus *string
	earlyMinutes    int
	departureReason *string
}

func (r *recordRow) targets() []interface{} {
	return []interface{}{
		&r.record.ID, &r.record.EmployeeID, &r.record.Date,
		&r.arrivalTime, &r.arrivalStatus, &r.latenessMinutes, &r.arrivalReason,
		&r.departureTime, &r.departureStatus, &r.earlyMinutes, &r.departureReason,
		&r.record.Notes, &r.record.CreatedAt, &r.record.UpdatedAt,
	}
}

func (r *recordRow) toRecord() (attendance.Record, error) {
	rec := r.record
	if r.arrivalTime.Valid && r.arrivalStatus != nil {
		half := &attendance.ArrivalHalf{
			Status:          attendance.ArrivalStatus(*r.arrivalStatus),
			LatenessMinutes: r.latenessMinutes,
			Reason:          r.arrivalReason,
		}
		if err := half.Time.ScanTime(r.arrivalTime); err != nil {
			return attendance.Record{}, err
		}
		rec.Arrival = half
	}
	if r.departureTime.Valid && r.departureStatus != nil {
		half := &attendance.DepartureHalf{
			Status:       attendance.DepartureStatus(*r.departureStatus),
			EarlyMinutes: r.earlyMinutes,
			Reason:       r.departureReason,
		}
		if err := half.Time.ScanTime(r.departureTime); err != nil {
			return attendance.Record{}, err
		}
		rec.Departure = half
	}
	return rec, nil
}

func scanRecord(row pgx.Row, extra ...interface{}) (attendance.Record, error) {
	var r recordRow
	if err := row.Scan(append(r.targets(), extra...)...); err != nil {
		return attendance.Record{}, err
	}
	return r.toRecord()
}

// UpsertArrival implements attendance.RecordRepository.
func (a *recordRepositoryImpl) UpsertArrival(ctx context.Context, employeeID string, date time.Time, half attendance.ArrivalHalf, notes *string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("generate attendance id: %w", err)
	}

	query := `
		INSERT INTO attendance_records AS ar (
			id, employee_id, record_date, arrival_time, arrival_status, lateness_minutes, arrival_reason, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id, record_date) DO UPDATE
		SET arrival_time = EXCLUDED.arrival_time,
			arrival_status = EXCLUDED.arrival_status,
			lateness_minutes = EXCLUDED.lateness_minutes,
			arrival_reason = EXCLUDED.arrival_reason,
			notes = COALESCE(EXCLUDED.notes, ar.notes),
			updated_at = NOW()
		RETURNING ` + recordColumns

	rec, err := scanRecord(q.QueryRow(ctx, query,
		id.String(), employeeID, date, half.Time, half.Status, half.LatenessMinutes, half.Reason, notes,
	))
	if err != nil {
		return attendance.Record{}, wrapErr("upsert arrival", err)
	}
	return rec, nil
}

// UpsertDeparture implements attendance.RecordRepository.
func (a *recordRepositoryImpl) UpsertDeparture(ctx context.Context, employeeID string, date time.Time, half attendance.DepartureHalf, notes *string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("generate attendance id: %w", err)
	}

	query := `
		INSERT INTO attendance_records AS ar (
			id, employee_id, record_date, departure_time, departure_status, early_departure_minutes, departure_reason, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id, record_date) DO UPDATE
		SET departure_time = EXCLUDED.departure_time,
			departure_status = EXCLUDED.departure_status,
			early_departure_minutes = EXCLUDED.early_departure_minutes,
			departure_reason = EXCLUDED.departure_reason,
			notes = COALESCE(EXCLUDED.notes, ar.notes),
			updated_at = NOW()
		RETURNING ` + recordColumns

	rec, err := scanRecord(q.QueryRow(ctx, query,
		id.String(), employeeID, date, half.Time, half.Status, half.EarlyMinutes, half.Reason, notes,
	))
	if err != nil {
		return attendance.Record{}, wrapErr("upsert departure", err)
	}
	return rec, nil
}

// GetByEmployeeAndDate implements attendance.RecordRepository.
func (a *recordRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + ` FROM attendance_records ar WHERE ar.employee_id = $1 AND ar.record_date = $2`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get attendance record", err)
	}
	return &rec, nil
}

// ListByPeriod implements attendance.RecordRepository.
func (a *recordRepositoryImpl) ListByPeriod(ctx context.Context, start, end time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `, e.first_name || ' ' || e.last_name, e.service
		FROM attendance_records ar
		JOIN employees e ON e.id = ar.employee_id
		WHERE ar.record_date BETWEEN $1 AND $2
		ORDER BY ar.record_date DESC, e.last_name, e.first_name
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, wrapErr("list attendance records", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var name, service string
		rec, err := scanRecord(rows, &name, &service)
		if err != nil {
			return nil, err
		}
		rec.EmployeeName, rec.Service = &name, &service
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list attendance records", err)
	}
	return records, nil
}
