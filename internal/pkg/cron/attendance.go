package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

// AttendanceJobs hosts the in-process absence sweep.
type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	interval          time.Duration
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, interval time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		interval:          interval,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_employees", j.interval, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees sweeps today's attendance. Employees whose arrival
// deadline has not passed yet are picked up by a later run.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	slog.Info("Cron: Starting mark absent employees job")

	result, err := j.attendanceService.SweepAbsences(ctx, attendance.SweepRequest{})
	if err != nil {
		return fmt.Errorf("failed to sweep absences: %w", err)
	}

	slog.Info("Cron: Marked absent employees",
		"date", result.Date,
		"count", result.Marked,
		"pending", result.NotYetDue,
	)
	return nil
}
