package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/google/uuid"
)

type passThroughTx struct{}

func (passThroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type dayKey struct {
	employeeID string
	date       string
}

func keyOf(employeeID string, date time.Time) dayKey {
	return dayKey{employeeID, date.Format(time.DateOnly)}
}

// store is an in-memory stand-in for the attendance tables.
type store struct {
	mu        sync.Mutex
	employees map[string]employee.Employee
	records   map[dayKey]attendance.Record
	lateness  map[dayKey]attendance.LatenessEvent
	absences  map[dayKey]attendance.Absence
	leave     map[dayKey]bool
}

func newStore() *store {
	return &store{
		employees: map[string]employee.Employee{},
		records:   map[dayKey]attendance.Record{},
		lateness:  map[dayKey]attendance.LatenessEvent{},
		absences:  map[dayKey]attendance.Absence{},
		leave:     map[dayKey]bool{},
	}
}

func (s *store) addEmployee(e employee.Employee) employee.Employee {
	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}
	e.Active = true
	s.employees[e.ID] = e
	return e
}

// employee.EmployeeRepository

type employeeRepo struct{ *store }

func (r employeeRepo) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	return r.addEmployee(e), nil
}

func (r employeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r employeeRepo) LockByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.GetByID(ctx, id)
}

func (r employeeRepo) Update(ctx context.Context, e employee.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[e.ID] = e
	return nil
}

func (r employeeRepo) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	return nil, nil
}

func (r employeeRepo) ListServices(ctx context.Context) ([]string, error) {
	return nil, nil
}

// attendance.LeaveGuard

type leaveGuard struct{ *store }

func (g leaveGuard) IsOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.leave[keyOf(employeeID, date)], nil
}

// attendance.RecordRepository

type recordRepo struct{ *store }

func (r recordRepo) upsert(employeeID string, date time.Time, notes *string, apply func(*attendance.Record)) attendance.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyOf(employeeID, date)
	rec, ok := r.records[k]
	if !ok {
		rec = attendance.Record{ID: uuid.Must(uuid.NewV7()).String(), EmployeeID: employeeID, Date: date}
	}
	apply(&rec)
	if notes != nil {
		rec.Notes = notes
	}
	r.records[k] = rec
	return rec
}

func (r recordRepo) UpsertArrival(ctx context.Context, employeeID string, date time.Time, half attendance.ArrivalHalf, notes *string) (attendance.Record, error) {
	return r.upsert(employeeID, date, notes, func(rec *attendance.Record) { rec.Arrival = &half }), nil
}

func (r recordRepo) UpsertDeparture(ctx context.Context, employeeID string, date time.Time, half attendance.DepartureHalf, notes *string) (attendance.Record, error) {
	return r.upsert(employeeID, date, notes, func(rec *attendance.Record) { rec.Departure = &half }), nil
}

func (r recordRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[keyOf(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r recordRepo) ListByPeriod(ctx context.Context, start, end time.Time) ([]attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Record
	for _, rec := range r.records {
		if !rec.Date.Before(start) && !rec.Date.After(end) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// attendance.LatenessRepository

type latenessRepo struct{ *store }

func (r latenessRepo) CreateIfAbsent(ctx context.Context, ev attendance.LatenessEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyOf(ev.EmployeeID, ev.Date)
	if _, ok := r.lateness[k]; ok {
		return false, nil
	}
	ev.ID = uuid.Must(uuid.NewV7()).String()
	r.lateness[k] = ev
	return true, nil
}

func (r latenessRepo) ListByPeriod(ctx context.Context, start, end time.Time) ([]attendance.LatenessEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.LatenessEvent
	for _, ev := range r.lateness {
		out = append(out, ev)
	}
	return out, nil
}

// attendance.AbsenceRepository

type absenceRepo struct{ *store }

func (r absenceRepo) CreateIfAbsent(ctx context.Context, a attendance.Absence) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyOf(a.EmployeeID, a.Date)
	if _, ok := r.absences[k]; ok {
		return false, nil
	}
	a.ID = uuid.Must(uuid.NewV7()).String()
	r.absences[k] = a
	return true, nil
}

func (r absenceRepo) Upsert(ctx context.Context, a attendance.Absence) (attendance.Absence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyOf(a.EmployeeID, a.Date)
	existing, ok := r.absences[k]
	if ok {
		a.ID = existing.ID
		if a.Document == nil {
			a.Document = existing.Document
		}
	} else {
		a.ID = uuid.Must(uuid.NewV7()).String()
	}
	a.HasDocument = a.Document != nil
	r.absences[k] = a
	return a, nil
}

func (r absenceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Absence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.absences[keyOf(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r absenceRepo) GetDocument(ctx context.Context, id string) (attendance.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.absences {
		if a.ID == id {
			if a.Document == nil {
				return attendance.Document{}, attendance.ErrCertificateNotFound
			}
			return *a.Document, nil
		}
	}
	return attendance.Document{}, attendance.ErrAbsenceNotFound
}

func (r absenceRepo) ListByPeriod(ctx context.Context, start, end time.Time) ([]attendance.Absence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Absence
	for _, a := range r.absences {
		out = append(out, a)
	}
	return out, nil
}

func (r absenceRepo) ListUnclocked(ctx context.Context, date time.Time) ([]attendance.UnclockedEmployee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.UnclockedEmployee
	for _, e := range r.employees {
		k := keyOf(e.ID, date)
		if !e.Active || r.leave[k] {
			continue
		}
		if rec, ok := r.records[k]; ok && rec.Arrival != nil {
			continue
		}
		u := attendance.UnclockedEmployee{
			EmployeeID:       e.ID,
			EmployeeName:     e.FullName(),
			Service:          e.Service,
			Shift:            string(e.Shift),
			ScheduledArrival: e.ScheduledArrival,
		}
		if a, ok := r.absences[k]; ok {
			u.Absence = &a
		}
		out = append(out, u)
	}
	return out, nil
}
