package database

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastRetries shrinks the readiness loop for the duration of a test
func fastRetries(t *testing.T, attempts int) {
	t.Helper()

	origRetries, origInterval := maxRetries, retryInterval
	maxRetries, retryInterval = attempts, 10*time.Millisecond
	t.Cleanup(func() {
		maxRetries, retryInterval = origRetries, origInterval
	})
}

func newPingMock(t *testing.T) (*MigrationRunner, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewMigrationRunner(db), mock
}

func TestEmbeddedMigrations(t *testing.T) {
	runner, _ := newPingMock(t)

	ups, err := fs.Glob(runner.migrations, "*.up.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_create_users.up.sql",
		"000002_create_auth_tables.up.sql",
		"000003_create_categories_transactions.up.sql",
		"000004_create_goals.up.sql",
		"000005_create_notifications.up.sql",
	}, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(runner.migrations, down)
		assert.NoError(t, err, "missing down migration for %s", up)
	}
}

func TestEmbeddedMigrations_GoalsCarryVersionColumn(t *testing.T) {
	runner, _ := newPingMock(t)

	content, err := fs.ReadFile(runner.migrations, "000004_create_goals.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(content), "version")
}

func TestWaitForDatabase(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		pings    []error
		wantErr  string
	}{
		{name: "ready at once", attempts: 3, pings: []error{nil}},
		{name: "ready after restarts", attempts: 3, pings: []error{errors.New("starting"), errors.New("starting"), nil}},
		{name: "never ready", attempts: 2, pings: []error{errors.New("refused"), errors.New("refused")}, wantErr: "database not ready after 2 attempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fastRetries(t, tt.attempts)
			runner, mock := newPingMock(t)
			for _, ping := range tt.pings {
				mock.ExpectPing().WillReturnError(ping)
			}

			err := runner.WaitForDatabase()
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunMigrations_NothingEmbedded(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	runner := &MigrationRunner{db: db, migrations: fstest.MapFS{}}

	assert.NoError(t, runner.RunMigrations())

	_, _, err = runner.GetMigrationStatus()
	assert.ErrorIs(t, err, errNoMigrations)
}

func TestRollback_RejectsNonPositiveSteps(t *testing.T) {
	runner, _ := newPingMock(t)

	assert.ErrorContains(t, runner.Rollback(0), "must be positive")
	assert.ErrorContains(t, runner.Rollback(-2), "must be positive")
}

func TestLoadSeeds(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		runner := &MigrationRunner{db: db, seeds: os.DirFS("/nonexistent/seeds")}
		assert.NoError(t, runner.LoadSeeds())
	})

	t.Run("only sql files run, in name order", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO categories").WillReturnResult(sqlmock.NewResult(0, 3))

		runner := &MigrationRunner{db: db, seeds: fstest.MapFS{
			"002_categories.sql": {Data: []byte("INSERT INTO categories (name) VALUES ('Food'), ('Rent'), ('Salary');")},
			"001_demo_user.sql":  {Data: []byte("INSERT INTO users (email) VALUES ('demo@example.com');")},
			"README.md":          {Data: []byte("not sql")},
		}}

		assert.NoError(t, runner.LoadSeeds())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed file is skipped", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("INSERT INTO missing").WillReturnError(errors.New("relation does not exist"))
		mock.ExpectExec("INSERT INTO goals").WillReturnResult(sqlmock.NewResult(0, 1))

		runner := &MigrationRunner{db: db, seeds: fstest.MapFS{
			"001_bad.sql":   {Data: []byte("INSERT INTO missing VALUES (1);")},
			"002_goals.sql": {Data: []byte("INSERT INTO goals (title) VALUES ('Trip');")},
		}}

		assert.NoError(t, runner.LoadSeeds())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRunMigrationsIfEnabled(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		t.Setenv("AUTO_MIGRATE", "false")
		runner, mock := newPingMock(t)

		assert.NoError(t, RunMigrationsIfEnabled(runner.db))
		assert.NoError(t, mock.ExpectationsWereMet(), "no ping when disabled")
	})

	t.Run("database never ready", func(t *testing.T) {
		t.Setenv("AUTO_MIGRATE", "true")
		fastRetries(t, 2)
		runner, mock := newPingMock(t)
		mock.ExpectPing().WillReturnError(errors.New("refused"))
		mock.ExpectPing().WillReturnError(errors.New("refused"))

		err := RunMigrationsIfEnabled(runner.db)
		assert.ErrorContains(t, err, "database readiness check failed")
	})
}
