package employee

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
)

type EmployeeServiceImpl struct {
	employee.EmployeeRepository
	tx postgresql.Transactor
}

func NewEmployeeService(tx postgresql.Transactor, employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		EmployeeRepository: employeeRepo,
		tx:                 tx,
	}
}

// Create implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	created, err := s.EmployeeRepository.Create(ctx, employee.Employee{
		LastName:           strings.TrimSpace(req.LastName),
		FirstName:          strings.TrimSpace(req.FirstName),
		Service:            strings.TrimSpace(req.Service),
		Position:           strings.TrimSpace(req.Position),
		Shift:              employee.ShiftKind(strings.ToLower(req.Shift)),
		ScheduledArrival:   req.Arrival,
		ScheduledDeparture: req.Departure,
		Active:             true,
	})
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to create employee: %w", err)
	}

	slog.Info("Employee created", "employee_id", created.ID, "service", created.Service)
	return employee.ToResponse(created), nil
}

// Get implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Get(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	if !validator.IsValidUUID(id) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}
	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(emp), nil
}

// Update implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Update(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	var updated employee.Employee
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.EmployeeRepository.LockByID(ctx, req.ID)
		if err != nil {
			return err
		}

		if req.LastName != nil {
			emp.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.FirstName != nil {
			emp.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.Service != nil {
			emp.Service = strings.TrimSpace(*req.Service)
		}
		if req.Position != nil {
			emp.Position = strings.TrimSpace(*req.Position)
		}
		if req.Shift != nil {
			emp.Shift = employee.ShiftKind(strings.ToLower(*req.Shift))
		}
		if req.Arrival != nil {
			emp.ScheduledArrival = *req.Arrival
		}
		if req.Departure != nil {
			emp.ScheduledDeparture = *req.Departure
		}
		if req.Active != nil {
			emp.Active = *req.Active
		}

		if err := s.EmployeeRepository.Update(ctx, emp); err != nil {
			return err
		}
		updated = emp
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee updated", "employee_id", updated.ID, "active", updated.Active)
	return employee.ToResponse(updated), nil
}

// List implements employee.EmployeeService.
func (s *EmployeeServiceImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.EmployeeResponse, error) {
	employees, err := s.EmployeeRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, employee.ToResponse(emp))
	}
	return responses, nil
}

// ListServices implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListServices(ctx context.Context) ([]string, error) {
	services, err := s.EmployeeRepository.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	if services == nil {
		services = []string{}
	}
	return services, nil
}

// GroupByService implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GroupByService(ctx context.Context, filter employee.EmployeeFilter) ([]employee.ServiceGroup, error) {
	employees, err := s.EmployeeRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	groups := []employee.ServiceGroup{}
	index := map[string]int{}
	for _, emp := range employees {
		i, ok := index[emp.Service]
		if !ok {
			i = len(groups)
			index[emp.Service] = i
			groups = append(groups, employee.ServiceGroup{Service: emp.Service})
		}
		groups[i].Employees = append(groups[i].Employees, employee.ToResponse(emp))
	}
	return groups, nil
}
