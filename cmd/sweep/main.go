// Command sweep runs the automatic absence sweep once and exits. It is meant
// to be scheduled by an external cron shortly after the earliest arrival
// deadline of each shift.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-attendance-go/internal/service/leave"
)

func main() {
	date := flag.String("date", "", "date to sweep (YYYY-MM-DD), defaults to today")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.App, "hris-attendance-sweep"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.Options{
		MaxConns:       2,
		MinConns:       1,
		AcquireTimeout: cfg.Database.AcquireTimeout,
	})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	loc := cfg.Location()
	tx := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	leaveSvc := leaveService.NewLeaveService(tx, postgresql.NewLeaveRequestRepository(db), employeeRepo, loc)
	attendanceSvc := attendanceService.NewAttendanceService(
		tx,
		postgresql.NewRecordRepository(db),
		postgresql.NewLatenessRepository(db),
		postgresql.NewAbsenceRepository(db),
		employeeRepo,
		leaveSvc,
		loc,
	)

	result, err := attendanceSvc.SweepAbsences(ctx, attendance.SweepRequest{Date: *date})
	if err != nil {
		slog.Error("Absence sweep failed", "error", err)
		db.Close()
		os.Exit(1)
	}

	slog.Info("Absence sweep finished",
		"date", result.Date,
		"candidates", result.Candidates,
		"marked", result.Marked,
		"already_marked", result.AlreadyMarked,
		"not_yet_due", result.NotYetDue,
	)
}
