package repository

import (
	"context"
	"database/sql"
	"dedi-tracker/internal/constants"
	"dedi-tracker/internal/domain"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DailyScoreRepository persists one score row per (login, day) into
// player_daily_scores with last-writer-wins upsert semantics within a day.
type DailyScoreRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewDailyScoreRepository(db *sql.DB, logger zerolog.Logger) *DailyScoreRepository {
	return &DailyScoreRepository{db: db, logger: logger}
}

// UpsertBatch writes the cycle's daily snapshot in one transaction.
// Re-running within the same day overwrites score and nickname for the
// existing (login, recorded_at) row instead of inserting a duplicate.
func (r *DailyScoreRepository) UpsertBatch(ctx context.Context, scores []domain.DailyScore) error {
	if len(scores) == 0 {
		return nil
	}

	// cheap liveness probe: the pool drops dead connections on a failed
	// ping, so a retryable write follows a healthy one
	if err := r.db.PingContext(ctx); err != nil {
		r.logger.Error().Err(err).Msg("database unreachable before daily score upsert")
		return fmt.Errorf("database unreachable: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_daily_scores (login, nickname, score, recorded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(login, recorded_at) DO UPDATE SET
			score = excluded.score,
			nickname = excluded.nickname`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < len(scores); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(scores) {
			end = len(scores)
		}
		for _, s := range scores[i:end] {
			if _, err := stmt.ExecContext(ctx, s.Login, s.Nickname, s.Score, s.RecordedAt.UTC()); err != nil {
				return fmt.Errorf("failed to upsert daily score for %s: %w", s.Login, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily scores: %w", err)
	}

	r.logger.Info().Int("players", len(scores)).Msg("daily scores upserted")
	return nil
}

// History returns every stored daily score ordered by day ascending, the
// shape the point-progression view consumes.
func (r *DailyScoreRepository) History(ctx context.Context) ([]domain.DailyScore, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT login, nickname, score, recorded_at
		FROM player_daily_scores
		ORDER BY recorded_at ASC, login ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.DailyScore
	for rows.Next() {
		var s domain.DailyScore
		var nickname sql.NullString
		var recordedAt time.Time
		if err := rows.Scan(&s.Login, &nickname, &s.Score, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily score: %w", err)
		}
		s.Nickname = nickname.String
		s.RecordedAt = recordedAt.UTC()
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily scores: %w", err)
	}
	return scores, nil
}
