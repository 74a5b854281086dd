package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance")

type AttendanceServiceImpl struct {
	records    attendance.RecordRepository
	lateness   attendance.LatenessRepository
	absences   attendance.AbsenceRepository
	employees  employee.EmployeeRepository
	leaveGuard attendance.LeaveGuard
	tx         postgresql.Transactor

	// Dates in requests are calendar dates of loc; sweep deadlines are
	// evaluated against now in loc.
	loc *time.Location
	now func() time.Time
}

func NewAttendanceService(
	tx postgresql.Transactor,
	records attendance.RecordRepository,
	lateness attendance.LatenessRepository,
	absences attendance.AbsenceRepository,
	employees employee.EmployeeRepository,
	leaveGuard attendance.LeaveGuard,
	loc *time.Location,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		records:    records,
		lateness:   lateness,
		absences:   absences,
		employees:  employees,
		leaveGuard: leaveGuard,
		tx:         tx,
		loc:        loc,
		now:        time.Now,
	}
}

// RecordArrival implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordArrival(ctx context.Context, req attendance.RecordArrivalRequest) (attendance.ArrivalResponse, error) {
	ctx, span := tracer.Start(ctx, "attendance.RecordArrival")
	defer span.End()

	if err := req.Validate(); err != nil {
		return attendance.ArrivalResponse{}, err
	}
	span.SetAttributes(
		attribute.String("employee_id", req.EmployeeID),
		attribute.String("date", req.Date),
	)

	resp := attendance.ArrivalResponse{
		EmployeeID: req.EmployeeID,
		Date:       req.ParsedDate.Format(time.DateOnly),
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.guard(ctx, req.EmployeeID, req.ParsedDate)
		if err != nil {
			return err
		}

		scheduled := emp.ScheduledArrival
		c := attendance.ClassifyArrival(&req.ParsedTime, &scheduled)
		resp.Status = string(c.Status)
		resp.OffsetMinutes = c.OffsetMinutes

		if c.IsAbsence {
			reason := attendance.LateAbsenceReason(req.ParsedTime.Sub(scheduled))
			if req.Reason != nil && strings.TrimSpace(*req.Reason) != "" {
				reason = strings.TrimSpace(*req.Reason)
			}
			created, err := s.absences.CreateIfAbsent(ctx, attendance.Absence{
				EmployeeID: emp.ID,
				Date:       req.ParsedDate,
				Reason:     reason,
				Justified:  false,
			})
			if err != nil {
				return fmt.Errorf("failed to record absence: %w", err)
			}
			resp.AbsenceRecorded = created
			return nil
		}

		half := attendance.ArrivalHalf{
			Time:   req.ParsedTime,
			Status: c.Status,
			Reason: req.Reason,
		}
		if c.Status == attendance.ArrivalLate {
			half.LatenessMinutes = c.OffsetMinutes
		}

		if attendance.LatenessLedgered(c) {
			if _, err := s.lateness.CreateIfAbsent(ctx, attendance.LatenessEvent{
				EmployeeID: emp.ID,
				Date:       req.ParsedDate,
				Minutes:    c.OffsetMinutes,
				Reason:     req.Reason,
			}); err != nil {
				return fmt.Errorf("failed to record lateness: %w", err)
			}
		}

		rec, err := s.records.UpsertArrival(ctx, emp.ID, req.ParsedDate, half, req.Notes)
		if err != nil {
			return fmt.Errorf("failed to record arrival: %w", err)
		}
		recResp := attendance.ToRecordResponse(rec)
		resp.Record = &recResp
		resp.LatenessMinutes = half.LatenessMinutes
		return nil
	})
	if err != nil {
		recordError(span, err)
		return attendance.ArrivalResponse{}, err
	}

	span.SetAttributes(attribute.String("status", resp.Status), attribute.Int("offset_minutes", resp.OffsetMinutes))
	slog.Info("Arrival recorded",
		"employee_id", req.EmployeeID,
		"date", resp.Date,
		"status", resp.Status,
		"offset_minutes", resp.OffsetMinutes,
		"absence_recorded", resp.AbsenceRecorded,
	)
	return resp, nil
}

// RecordDeparture implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordDeparture(ctx context.Context, req attendance.RecordDepartureRequest) (attendance.DepartureResponse, error) {
	ctx, span := tracer.Start(ctx, "attendance.RecordDeparture")
	defer span.End()

	if err := req.Validate(); err != nil {
		return attendance.DepartureResponse{}, err
	}
	span.SetAttributes(
		attribute.String("employee_id", req.EmployeeID),
		attribute.String("date", req.Date),
	)

	resp := attendance.DepartureResponse{
		EmployeeID: req.EmployeeID,
		Date:       req.ParsedDate.Format(time.DateOnly),
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.guard(ctx, req.EmployeeID, req.ParsedDate)
		if err != nil {
			return err
		}

		c := attendance.ClassifyDeparture(req.ParsedTime, emp.ScheduledDeparture)
		rec, err := s.records.UpsertDeparture(ctx, emp.ID, req.ParsedDate, attendance.DepartureHalf{
			Time:         req.ParsedTime,
			Status:       c.Status,
			EarlyMinutes: c.EarlyMinutes,
			Reason:       req.Reason,
		}, req.Notes)
		if err != nil {
			return fmt.Errorf("failed to record departure: %w", err)
		}

		recResp := attendance.ToRecordResponse(rec)
		resp.Status = string(c.Status)
		resp.EarlyMinutes = c.EarlyMinutes
		resp.Record = &recResp
		return nil
	})
	if err != nil {
		recordError(span, err)
		return attendance.DepartureResponse{}, err
	}

	slog.Info("Departure recorded",
		"employee_id", req.EmployeeID,
		"date", resp.Date,
		"status", resp.Status,
		"early_minutes", resp.EarlyMinutes,
	)
	return resp, nil
}

// MarkAbsence implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAbsence(ctx context.Context, req attendance.MarkAbsenceRequest) (attendance.AbsenceResponse, error) {
	ctx, span := tracer.Start(ctx, "attendance.MarkAbsence")
	defer span.End()

	if err := req.Validate(); err != nil {
		return attendance.AbsenceResponse{}, err
	}
	span.SetAttributes(
		attribute.String("employee_id", req.EmployeeID),
		attribute.String("date", req.Date),
	)

	var saved attendance.Absence
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.guard(ctx, req.EmployeeID, req.ParsedDate)
		if err != nil {
			return err
		}

		saved, err = s.absences.Upsert(ctx, attendance.Absence{
			EmployeeID: emp.ID,
			Date:       req.ParsedDate,
			Reason:     req.Reason,
			Justified:  req.Justified,
			Document:   req.Document,
		})
		if err != nil {
			return fmt.Errorf("failed to record absence: %w", err)
		}

		name := emp.FullName()
		saved.EmployeeName = &name
		saved.Service = &emp.Service
		return nil
	})
	if err != nil {
		recordError(span, err)
		return attendance.AbsenceResponse{}, err
	}

	slog.Info("Absence marked",
		"employee_id", req.EmployeeID,
		"date", req.ParsedDate.Format(time.DateOnly),
		"justified", saved.Justified,
		"has_certificate", saved.HasDocument,
	)
	return attendance.ToAbsenceResponse(saved), nil
}

// guard rejects writes for employees on approved leave and loads the
// employee's schedule.
func (s *AttendanceServiceImpl) guard(ctx context.Context, employeeID string, date time.Time) (employee.Employee, error) {
	onLeave, err := s.leaveGuard.IsOnLeave(ctx, employeeID, date)
	if err != nil {
		return employee.Employee{}, err
	}
	if onLeave {
		return employee.Employee{}, attendance.ErrEmployeeOnLeave
	}

	return s.employees.GetByID(ctx, employeeID)
}

// GetDailyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailyAttendance(ctx context.Context, employeeID string, date string) (attendance.DailyAttendanceResponse, error) {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(employeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	day, ok := validator.IsValidDate(date)
	if !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if err := errs.Err(); err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}

	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}

	resp := attendance.DailyAttendanceResponse{
		EmployeeID: employeeID,
		Date:       day.Format(time.DateOnly),
	}

	onLeave, err := s.leaveGuard.IsOnLeave(ctx, employeeID, day)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}
	resp.OnLeave = onLeave

	rec, err := s.records.GetByEmployeeAndDate(ctx, employeeID, day)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if rec != nil {
		r := attendance.ToRecordResponse(*rec)
		resp.Record = &r
	}

	absence, err := s.absences.GetByEmployeeAndDate(ctx, employeeID, day)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, fmt.Errorf("failed to get absence: %w", err)
	}
	if absence != nil {
		a := attendance.ToAbsenceResponse(*absence)
		resp.Absence = &a
	}

	return resp, nil
}

// ListRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListRecords(ctx context.Context, filter attendance.PeriodFilter) ([]attendance.RecordResponse, error) {
	if err := filter.Validate(s.today()); err != nil {
		return nil, err
	}

	records, err := s.records.ListByPeriod(ctx, filter.Start, filter.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.ToRecordResponse(r))
	}
	return responses, nil
}

// ListLateness implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListLateness(ctx context.Context, filter attendance.PeriodFilter) ([]attendance.LatenessResponse, error) {
	if err := filter.Validate(s.today()); err != nil {
		return nil, err
	}

	events, err := s.lateness.ListByPeriod(ctx, filter.Start, filter.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list lateness events: %w", err)
	}

	responses := make([]attendance.LatenessResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, attendance.ToLatenessResponse(e))
	}
	return responses, nil
}

// ListAbsences implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAbsences(ctx context.Context, filter attendance.PeriodFilter) ([]attendance.AbsenceResponse, error) {
	if err := filter.Validate(s.today()); err != nil {
		return nil, err
	}

	absences, err := s.absences.ListByPeriod(ctx, filter.Start, filter.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list absences: %w", err)
	}

	responses := make([]attendance.AbsenceResponse, 0, len(absences))
	for _, a := range absences {
		responses = append(responses, attendance.ToAbsenceResponse(a))
	}
	return responses, nil
}

// ListUnclockedToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListUnclockedToday(ctx context.Context) ([]attendance.UnclockedResponse, error) {
	unclocked, err := s.absences.ListUnclocked(ctx, s.today())
	if err != nil {
		return nil, fmt.Errorf("failed to list unclocked employees: %w", err)
	}

	responses := make([]attendance.UnclockedResponse, 0, len(unclocked))
	for _, u := range unclocked {
		resp := attendance.UnclockedResponse{
			EmployeeID:       u.EmployeeID,
			EmployeeName:     u.EmployeeName,
			Service:          u.Service,
			Shift:            u.Shift,
			ScheduledArrival: u.ScheduledArrival.String(),
		}
		if u.Absence != nil {
			a := attendance.ToAbsenceResponse(*u.Absence)
			resp.Absence = &a
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// GetCertificate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetCertificate(ctx context.Context, absenceID string) (attendance.Document, error) {
	if !validator.IsValidUUID(absenceID) {
		return attendance.Document{}, attendance.ErrAbsenceNotFound
	}
	return s.absences.GetDocument(ctx, absenceID)
}

// SweepAbsences implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SweepAbsences(ctx context.Context, req attendance.SweepRequest) (attendance.SweepResult, error) {
	ctx, span := tracer.Start(ctx, "attendance.SweepAbsences")
	defer span.End()

	if err := req.Validate(s.today()); err != nil {
		return attendance.SweepResult{}, err
	}

	now := s.now().In(s.loc)
	result := attendance.SweepResult{
		Date:        req.ParsedDate.Format(time.DateOnly),
		EvaluatedAt: now,
	}
	span.SetAttributes(attribute.String("date", result.Date))

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		candidates, err := s.absences.ListUnclocked(ctx, req.ParsedDate)
		if err != nil {
			return fmt.Errorf("failed to list unclocked employees: %w", err)
		}
		result.Candidates = len(candidates)

		for _, c := range candidates {
			if c.Absence != nil {
				result.AlreadyMarked++
				continue
			}

			deadline := c.ScheduledArrival.On(req.ParsedDate, s.loc).Add(attendance.AbsenceAfter)
			if !now.After(deadline) {
				result.NotYetDue++
				continue
			}

			created, err := s.absences.CreateIfAbsent(ctx, attendance.Absence{
				EmployeeID: c.EmployeeID,
				Date:       req.ParsedDate,
				Reason:     attendance.AutoAbsenceReason,
				Justified:  false,
			})
			if err != nil {
				return fmt.Errorf("failed to record absence for employee %s: %w", c.EmployeeID, err)
			}
			if created {
				result.Marked++
			} else {
				result.AlreadyMarked++
			}
		}
		return nil
	})
	if err != nil {
		recordError(span, err)
		return attendance.SweepResult{}, err
	}

	span.SetAttributes(attribute.Int("marked", result.Marked))
	slog.Info("Absence sweep finished",
		"date", result.Date,
		"candidates", result.Candidates,
		"marked", result.Marked,
		"already_marked", result.AlreadyMarked,
		"not_yet_due", result.NotYetDue,
	)
	return result, nil
}

// today is the current calendar date in the configured location.
func (s *AttendanceServiceImpl) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)
