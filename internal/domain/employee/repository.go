package employee

import "context"

type EmployeeRepository interface {
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)

	// LockByID reads the employee with a row lock. It must run inside a
	// transaction and serializes writers that depend on per-employee state.
	LockByID(ctx context.Context, id string) (Employee, error)

	Update(ctx context.Context, emp Employee) error
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	ListServices(ctx context.Context) ([]string, error)
}
