package postgresql_test

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/timeofday"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DATABASE_URL, creates a throwaway schema with
// the migrations applied and drops it when the test finishes.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is required for integration tests")
	}

	ctx := context.Background()
	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	require.NoError(t, execOnce(ctx, dsn, "CREATE SCHEMA "+schema))

	scoped, err := withSearchPath(dsn, schema)
	require.NoError(t, err)

	db, err := database.NewPostgreSQLDB(scoped, database.Options{MaxConns: 8, MinConns: 1, AcquireTimeout: 5 * time.Second})
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		_ = execOnce(context.Background(), dsn, "DROP SCHEMA "+schema+" CASCADE")
	})

	require.NoError(t, postgresql.Migrate(ctx, db))
	return db
}

func execOnce(ctx context.Context, dsn, sql string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, sql)
	return err
}

func withSearchPath(dsn, schema string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func seedEmployee(t *testing.T, db *database.DB, firstName, service string, arrival timeofday.TimeOfDay) employee.Employee {
	t.Helper()

	emp, err := postgresql.NewEmployeeRepository(db).Create(context.Background(), employee.Employee{
		LastName:           "Tester",
		FirstName:          firstName,
		Service:            service,
		Position:           "nurse",
		Shift:              employee.ShiftDay,
		ScheduledArrival:   arrival,
		ScheduledDeparture: timeofday.New(16, 0, 0),
		Active:             true,
	})
	require.NoError(t, err)
	return emp
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)
	return d
}
