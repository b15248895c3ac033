package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB wires a sqlmock *sql.DB into gorm's postgres dialector so the
// generated SQL can be asserted against without touching a real database.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestGormSessionRepository_Create_ExecutesInsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "ingest_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	session := &IngestSession{
		SessionID:  "sess-1",
		SourcePath: "callgrind.out.1",
		NEntries:   3,
	}
	err := repo.Create(context.Background(), session)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSessionRepository_Get_ExecutesSelect(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormSessionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "session_id", "source_path", "n_entries", "n_unique_positions", "create_time"}).
		AddRow(1, "sess-1", "callgrind.out.1", 3, 2, time.Now())
	mock.ExpectQuery(`SELECT \* FROM "ingest_sessions"`).
		WithArgs("sess-1", 1).
		WillReturnRows(rows)

	session, err := repo.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSessionRepository_Get_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormSessionRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "ingest_sessions"`).
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id"}))

	session, err := repo.Get(context.Background(), "missing")
	assert.Error(t, err)
	assert.Nil(t, session)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSuggestionRepository_CreateBatch_ExecutesInsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormSuggestionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "session_suggestions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectCommit()

	suggestions := []*Suggestion{
		{SessionID: "sess-1", Type: "cpu", Severity: "warn", FuncName: "hot", Message: "self cost is high"},
		{SessionID: "sess-1", Type: "structure", Severity: "info", FuncName: "rec", Message: "direct recursion"},
	}
	err := repo.CreateBatch(context.Background(), suggestions)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
