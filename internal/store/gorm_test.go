package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&IngestSession{}, &Suggestion{})
	require.NoError(t, err)

	return db
}

func TestGormSessionRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSessionRepository(db)
	ctx := context.Background()

	session := &IngestSession{
		SessionID:        "sess-1",
		SourcePath:       "/tmp/callgrind.out.1",
		EventAxis:        JSONField(`["Ir"]`),
		NEntries:         3,
		NUniquePositions: 2,
	}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/callgrind.out.1", got.SourcePath)
	assert.Equal(t, 3, got.NEntries)

	names, err := got.EventNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Ir"}, names)
}

func TestGormSessionRepository_GetNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSessionRepository(db)

	_, err := repo.Get(context.Background(), "missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGormSessionRepository_ListOrdersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &IngestSession{SessionID: "a"}))
	require.NoError(t, repo.Create(ctx, &IngestSession{SessionID: "b"}))

	sessions, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].SessionID)
	assert.Equal(t, "a", sessions[1].SessionID)
}

func TestGormSuggestionRepository_CreateBatchAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSuggestionRepository(db)
	ctx := context.Background()

	suggestions := []*Suggestion{
		{SessionID: "sess-1", Type: "cpu_hotspot", Severity: "warning", FuncName: "foo", Message: "hot"},
		{SessionID: "sess-1", Type: "recursion", Severity: "info", FuncName: "bar", Message: "cycle"},
	}
	require.NoError(t, repo.CreateBatch(ctx, suggestions))

	got, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "foo", got[0].FuncName)
}

func TestGormSuggestionRepository_CreateBatchEmptyIsNoop(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSuggestionRepository(db)

	require.NoError(t, repo.CreateBatch(context.Background(), nil))
}
