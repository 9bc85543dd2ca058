package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talmo/prompt-canvas/internal/config"
	"github.com/talmo/prompt-canvas/internal/domain"
	"github.com/talmo/prompt-canvas/internal/storage"
)

func testDB(t *testing.T) *storage.DB {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.RunMigrations(ctx, db))
	return db
}

func TestSessionSummaryUpsertAndGet(t *testing.T) {
	repo := NewSessionSummaryRepository(testDB(t))
	ctx := context.Background()

	summary := domain.SessionSummary{
		SessionID:    "sess-1",
		StartTime:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		LastTime:     time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC),
		MessageCount: 4,
		FirstPrompt:  "Fix the parser",
	}
	require.NoError(t, repo.Upsert(ctx, summary))

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.MessageCount)
	assert.Equal(t, "Fix the parser", got.FirstPrompt)
	assert.Empty(t, got.Summary)
}

func TestSessionSummaryUpsertKeepsSummary(t *testing.T) {
	repo := NewSessionSummaryRepository(testDB(t))
	ctx := context.Background()

	summary := domain.SessionSummary{
		SessionID: "sess-2",
		StartTime: time.Now().UTC(),
		LastTime:  time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, summary))
	require.NoError(t, repo.SetSummary(ctx, "sess-2", "the summary"))

	summary.MessageCount = 9
	require.NoError(t, repo.Upsert(ctx, summary))

	got, err := repo.Get(ctx, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, 9, got.MessageCount)
	assert.Equal(t, "the summary", got.Summary, "refresh keeps stored summary")
}

func TestSessionSummaryListOrdersByLastTime(t *testing.T) {
	repo := NewSessionSummaryRepository(testDB(t))
	ctx := context.Background()

	older := domain.SessionSummary{
		SessionID: "old",
		StartTime: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		LastTime:  time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
	newer := domain.SessionSummary{
		SessionID: "new",
		StartTime: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
		LastTime:  time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(ctx, older))
	require.NoError(t, repo.Upsert(ctx, newer))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].SessionID)
	assert.Equal(t, "old", list[1].SessionID)
}

func TestSessionSummaryDelete(t *testing.T) {
	repo := NewSessionSummaryRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, domain.SessionSummary{
		SessionID: "gone",
		StartTime: time.Now().UTC(),
		LastTime:  time.Now().UTC(),
	}))
	require.NoError(t, repo.Delete(ctx, "gone"))

	_, err := repo.Get(ctx, "gone")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAPIKeyUpsertAndGet(t *testing.T) {
	repo := NewAPIKeyRepository(testDB(t))
	ctx := context.Background()

	created, err := repo.Upsert(ctx, "openai", "encrypted-1")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	updated, err := repo.Upsert(ctx, "openai", "encrypted-2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID, "upsert reuses the row")

	got, err := repo.GetByProvider(ctx, "openai")
	require.NoError(t, err)
	assert.Equal(t, "encrypted-2", got.EncryptedKey)

	keys, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestAPIKeyDelete(t *testing.T) {
	repo := NewAPIKeyRepository(testDB(t))
	ctx := context.Background()

	_, err := repo.Upsert(ctx, "openai", "encrypted")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "openai"))

	_, err = repo.GetByProvider(ctx, "openai")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
