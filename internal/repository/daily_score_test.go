package repository

import (
	"context"
	"database/sql"
	"dedi-tracker/internal/config"
	"dedi-tracker/internal/database"
	"dedi-tracker/internal/domain"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDailyScoreUpsertIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewDailyScoreRepository(db, zerolog.Nop())
	ctx := context.Background()

	today := time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertBatch(ctx, []domain.DailyScore{
		{Login: "abc", Nickname: "Abc", Score: 5, RecordedAt: today},
	}))
	require.NoError(t, repo.UpsertBatch(ctx, []domain.DailyScore{
		{Login: "abc", Nickname: "NewAbc", Score: 8, RecordedAt: today},
	}))

	history, err := repo.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1, "second write must overwrite, not duplicate")
	require.Equal(t, 8, history[0].Score)
	require.Equal(t, "NewAbc", history[0].Nickname)
	require.Equal(t, today, history[0].RecordedAt)
}

func TestDailyScoreHistoryOrderedByDay(t *testing.T) {
	db := testDB(t)
	repo := NewDailyScoreRepository(db, zerolog.Nop())
	ctx := context.Background()

	day1 := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.NoError(t, repo.UpsertBatch(ctx, []domain.DailyScore{
		{Login: "abc", Score: 8, RecordedAt: day2},
		{Login: "abc", Score: 5, RecordedAt: day1},
		{Login: "zed", Score: 3, RecordedAt: day1},
	}))

	history, err := repo.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3, "distinct days append, never overwrite")
	require.Equal(t, day1, history[0].RecordedAt)
	require.Equal(t, "abc", history[0].Login)
	require.Equal(t, day2, history[2].RecordedAt)
}

func TestRecordRepositoryInsertBatch(t *testing.T) {
	db := testDB(t)
	repo := NewRecordRepository(db, zerolog.Nop())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	records := []domain.NewRecord{
		{MapUID: "UID1", MapName: "Dodo *1* Sprint", Login: "alice", Nickname: "Alice", TimeSeconds: 62.5, Rank: 1, DetectedAt: now},
		{MapUID: "UID1", MapName: "Dodo *1* Sprint", Login: "bob", Nickname: "Bob", Rank: 0, DetectedAt: now},
	}

	require.NoError(t, repo.InsertBatch(ctx, records))
	require.NoError(t, repo.InsertBatch(ctx, nil), "empty batch is a no-op")

	n, err := repo.CountSince(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// missing rank stored as NULL, not zero
	var nullRanks int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM new_records WHERE rank IS NULL`).Scan(&nullRanks))
	require.Equal(t, 1, nullRanks)
}
