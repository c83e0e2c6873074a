package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/papermill/portal/internal/domain/printing"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	db, err := Open(dialector, WithLogger(zap.NewNop(), gormlogger.Warn))
	require.NoError(t, err)

	return db, mock, mockDB
}

func TestDialector(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		d, err := Dialector(&config.DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", DBName: "ledger", SSLMode: "disable"})
		require.NoError(t, err)
		assert.Equal(t, "postgres", d.Name())
	})

	t.Run("sqlite is the default", func(t *testing.T) {
		d, err := Dialector(&config.DatabaseConfig{})
		require.NoError(t, err)
		assert.Equal(t, "sqlite", d.Name())
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Dialector(&config.DatabaseConfig{Driver: "oracle"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oracle")
	})
}

func TestOpen_RecordsDriverName(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	assert.Equal(t, "postgres", db.Driver)
}

type failingPlugin struct{}

func (failingPlugin) Name() string                 { return "failing" }
func (failingPlugin) Initialize(db *gorm.DB) error { return errors.New("boom") }

func TestOpen_PluginError(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	_, err = Open(postgres.New(postgres.Config{Conn: mockDB}), WithPlugins(failingPlugin{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
}

func TestDatabase_Ping(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	assert.NoError(t, db.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.GreaterOrEqual(t, stats.WaitDuration, time.Duration(0))
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("rollback on error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(context.Background(), func(tx *gorm.DB) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit on success", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := db.Transaction(context.Background(), func(tx *gorm.DB) error { return nil })
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPrintJobRepository_FindByID_Mock(t *testing.T) {
	t.Run("missing row maps to not found", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "print_jobs" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		repo := NewGormPrintJobRepository(db.DB)
		_, err := repo.FindByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver errors propagate", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "print_jobs"`).WillReturnError(sql.ErrConnDone)

		repo := NewGormPrintJobRepository(db.DB)
		_, err := repo.FindByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.False(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGormPrintJobRepository_ListQuery_Mock(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "print_jobs" WHERE document_type = \$1 AND status = \$2`).
		WithArgs("GST_CHALLAN", "COMPLETED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "print_jobs" WHERE document_type = \$1 AND status = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs("GST_CHALLAN", "COMPLETED", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewGormPrintJobRepository(db.DB)
	jobs, total, err := repo.List(context.Background(), printing.JobFilter{
		DocumentType: printing.DocTypeGSTChallan,
		Status:       printing.JobStatusCompleted,
		OrderBy:      "drop table",
	})
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
