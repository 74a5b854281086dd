package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `id, last_name, first_name, service, position, shift,
	scheduled_arrival, scheduled_departure, active, created_at, updated_at`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.LastName, &emp.FirstName, &emp.Service, &emp.Position, &emp.Shift,
		&emp.ScheduledArrival, &emp.ScheduledDeparture, &emp.Active, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	id, err := uuid.NewV7()
	if err != nil {
		return employee.Employee{}, fmt.Errorf("generate employee id: %w", err)
	}

	query := `
		INSERT INTO employees (
			id, last_name, first_name, service, position, shift,
			scheduled_arrival, scheduled_departure, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		id.String(), newEmployee.LastName, newEmployee.FirstName, newEmployee.Service, newEmployee.Position,
		newEmployee.Shift, newEmployee.ScheduledArrival, newEmployee.ScheduledDeparture, newEmployee.Active,
	))
	if err != nil {
		return employee.Employee{}, wrapErr("create employee", err)
	}
	return created, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, wrapErr(fmt.Sprintf("get employee %s", id), err)
	}
	return emp, nil
}

// LockByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) LockByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 FOR UPDATE`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, wrapErr(fmt.Sprintf("lock employee %s", id), err)
	}
	return emp, nil
}

// Update implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Update(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET last_name = $2, first_name = $3, service = $4, position = $5, shift = $6,
			scheduled_arrival = $7, scheduled_departure = $8, active = $9, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		emp.ID, emp.LastName, emp.FirstName, emp.Service, emp.Position, emp.Shift,
		emp.ScheduledArrival, emp.ScheduledDeparture, emp.Active,
	)
	if err != nil {
		return wrapErr(fmt.Sprintf("update employee %s", emp.ID), err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	var (
		conditions []string
		args       []interface{}
	)

	if !filter.IncludeInactive {
		conditions = append(conditions, "active")
	}
	if filter.Service != nil && *filter.Service != "" {
		args = append(args, *filter.Service)
		conditions = append(conditions, fmt.Sprintf("service = $%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(first_name || ' ' || last_name ILIKE $%d OR last_name || ' ' || first_name ILIKE $%d OR service ILIKE $%d OR position ILIKE $%d)",
			n, n, n, n,
		))
	}

	query := `SELECT ` + employeeColumns + ` FROM employees`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY service, last_name, first_name"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list employees", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, wrapErr("list employees", err)
	}

	return employees, nil
}

// ListServices implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListServices(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, `SELECT DISTINCT service FROM employees WHERE active ORDER BY service`)
	if err != nil {
		return nil, wrapErr("list services", err)
	}

	services, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapErr("list services", err)
	}
	return services, nil
}
