package employee

import "context"

type EmployeeService interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	Get(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// List returns employees matching the service filter and free-text search.
	List(ctx context.Context, filter EmployeeFilter) ([]EmployeeResponse, error)

	// ListServices returns the distinct services of active employees.
	ListServices(ctx context.Context) ([]string, error)

	// GroupByService returns the filtered employees grouped by service.
	GroupByService(ctx context.Context, filter EmployeeFilter) ([]ServiceGroup, error)
}
