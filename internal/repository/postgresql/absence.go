package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const absenceColumns = `ab.id, ab.employee_id, ab.absence_date, ab.reason, ab.justified,
	ab.document IS NOT NULL, ab.created_at, ab.updated_at`

type absenceRepositoryImpl struct {
	db *database.DB
}

func NewAbsenceRepository(db *database.DB) attendance.AbsenceRepository {
	return &absenceRepositoryImpl{db: db}
}

func scanAbsence(row pgx.Row, extra ...interface{}) (attendance.Absence, error) {
	var ab attendance.Absence
	targets := []interface{}{
		&ab.ID, &ab.EmployeeID, &ab.Date, &ab.Reason, &ab.Justified,
		&ab.HasDocument, &ab.CreatedAt, &ab.UpdatedAt,
	}
	err := row.Scan(append(targets, extra...)...)
	return ab, err
}

func documentArgs(doc *attendance.Document) ([]byte, *string) {
	if doc == nil {
		return nil, nil
	}
	return doc.Data, &doc.MediaType
}

// CreateIfAbsent implements attendance.AbsenceRepository.
func (a *absenceRepositoryImpl) CreateIfAbsent(ctx context.Context, absence attendance.Absence) (bool, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("generate absence id: %w", err)
	}

	query := `
		INSERT INTO absences (id, employee_id, absence_date, reason, justified)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, absence_date) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, id.String(), absence.EmployeeID, absence.Date, absence.Reason, absence.Justified)
	if err != nil {
		return false, wrapErr("create absence", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Upsert implements attendance.AbsenceRepository.
func (a *absenceRepositoryImpl) Upsert(ctx context.Context, absence attendance.Absence) (attendance.Absence, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Absence{}, fmt.Errorf("generate absence id: %w", err)
	}

	data, mediaType := documentArgs(absence.Document)

	query := `
		INSERT INTO absences AS ab (id, employee_id, absence_date, reason, justified, document, document_media_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, absence_date) DO UPDATE
		SET reason = EXCLUDED.reason,
			justified = EXCLUDED.justified,
			document = COALESCE(EXCLUDED.document, ab.document),
			document_media_type = COALESCE(EXCLUDED.document_media_type, ab.document_media_type),
			updated_at = NOW()
		RETURNING ` + absenceColumns

	saved, err := scanAbsence(q.QueryRow(ctx, query,
		id.String(), absence.EmployeeID, absence.Date, absence.Reason, absence.Justified, data, mediaType,
	))
	if err != nil {
		return attendance.Absence{}, wrapErr("upsert absence", err)
	}
	return saved, nil
}

// GetByEmployeeAndDate implements attendance.AbsenceRepository.
func (a *absenceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Absence, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + absenceColumns + ` FROM absences ab WHERE ab.employee_id = $1 AND ab.absence_date = $2`

	ab, err := scanAbsence(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get absence", err)
	}
	return &ab, nil
}

// GetDocument implements attendance.AbsenceRepository.
func (a *absenceRepositoryImpl) GetDocument(ctx context.Context, id string) (attendance.Document, error) {
	q := GetQuerier(ctx, a.db)

	var (
		data      []byte
		mediaType *string
	)
	err := q.QueryRow(ctx, `SELECT document, document_media_type FROM absences WHERE id = $1`, id).Scan(&data, &mediaType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Document{}, attendance.ErrAbsenceNotFound
		}
		return attendance.Document{}, wrapErr(fmt.Sprintf("get absence document %s", id), err)
	}
	if data == nil {
		return attendance.Document{}, attendance.ErrCertificateNotFound
	}

	doc := attendance.Document{Data: data, MediaType: "application/octet-stream"}
	if mediaType != nil && *mediaType != "" {
		doc.MediaType = *mediaType
	}
	return doc, nil
}

// ListByPeriod implements attendance.AbsenceRepository.
func (a *absenceRepositoryImpl) ListByPeriod(ctx context.Context, start, end time.Time) ([]attendance.Absence, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + absenceColumns + `, e.first_name || ' ' || e.last_name, e.service
		FROM absences ab
		JOIN employees e ON e.id = ab.employee_id
		WHERE ab.absence_date BETWEEN $1 AND $2
		ORDER BY ab.absence_date DESC, e.last_name, e.first_name
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, wrapErr("list absences", err)
	}
	defer rows.Close()

	var absences []attendance.Absence
	for rows.Next() {
		var name, service string
		ab, err := scanAbsence(rows, &name, &service)
		if err != nil {
			return nil, err
		}
		ab.EmployeeName, ab.Service = &name, &service
		absences = append(absences, ab)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list absences", err)
	}
	return absences, nil
}

// ListUnclocked implements attendance.AbsenceRepository.
func (a *absenceRepositoryImpl) ListUnclocked(ctx context.Context, date time.Time) ([]attendance.UnclockedEmployee, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT e.id, e.first_name || ' ' || e.last_name, e.service, e.shift, e.scheduled_arrival,
			ab.id, ab.reason, ab.justified, ab.document IS NOT NULL, ab.created_at, ab.updated_at
		FROM employees e
		LEFT JOIN attendance_records ar ON ar.employee_id = e.id AND ar.record_date = $1
		LEFT JOIN absences ab ON ab.employee_id = e.id AND ab.absence_date = $1
		WHERE e.active
			AND ar.arrival_time IS NULL
			AND NOT EXISTS (
				SELECT 1 FROM leave_requests lr
				WHERE lr.employee_id = e.id AND lr.status = $2
					AND $1::date BETWEEN lr.start_date AND lr.end_date
			)
		ORDER BY e.service, e.last_name, e.first_name
	`

	rows, err := q.Query(ctx, query, date, leave.LeaveStatusApproved)
	if err != nil {
		return nil, wrapErr("list unclocked employees", err)
	}
	defer rows.Close()

	var result []attendance.UnclockedEmployee
	for rows.Next() {
		var (
			u           attendance.UnclockedEmployee
			absenceID   *string
			reason      *string
			justified   *bool
			hasDocument *bool
			createdAt   *time.Time
			updatedAt   *time.Time
		)
		if err := rows.Scan(
			&u.EmployeeID, &u.EmployeeName, &u.Service, &u.Shift, &u.ScheduledArrival,
			&absenceID, &reason, &justified, &hasDocument, &createdAt, &updatedAt,
		); err != nil {
			return nil, err
		}
		if absenceID != nil {
			name, service := u.EmployeeName, u.Service
			u.Absence = &attendance.Absence{
				ID:           *absenceID,
				EmployeeID:   u.EmployeeID,
				Date:         date,
				Reason:       deref(reason),
				Justified:    justified != nil && *justified,
				HasDocument:  hasDocument != nil && *hasDocument,
				CreatedAt:    derefTime(createdAt),
				UpdatedAt:    derefTime(updatedAt),
				EmployeeName: &name,
				Service:      &service,
			}
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list unclocked employees", err)
	}
	return result, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
