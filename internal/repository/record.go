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

// RecordRepository persists detected new records into new_records.
type RecordRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRecordRepository(db *sql.DB, logger zerolog.Logger) *RecordRepository {
	return &RecordRepository{db: db, logger: logger}
}

// InsertBatch appends the given new records in one transaction, chunked to
// keep statements bounded. A nil or empty slice is a no-op.
func (r *RecordRepository) InsertBatch(ctx context.Context, records []domain.NewRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := r.db.PingContext(ctx); err != nil {
		r.logger.Error().Err(err).Msg("database unreachable before new_records insert")
		return fmt.Errorf("database unreachable: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO new_records (uid, map_name, login, nickname, time_s, rank, detected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < len(records); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(records) {
			end = len(records)
		}
		for _, rec := range records[i:end] {
			var timeSeconds any
			if rec.TimeSeconds > 0 {
				timeSeconds = rec.TimeSeconds
			}
			var rank any
			if rec.Rank > 0 {
				rank = rec.Rank
			}
			if _, err := stmt.ExecContext(ctx,
				rec.MapUID, rec.MapName, rec.Login, rec.Nickname,
				timeSeconds, rank, rec.DetectedAt.UTC(),
			); err != nil {
				return fmt.Errorf("failed to insert record for %s on %s: %w", rec.Login, rec.MapUID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit new_records: %w", err)
	}

	r.logger.Info().Int("records", len(records)).Msg("new records stored")
	return nil
}

// CountSince reports how many new records were detected after the cutoff.
func (r *RecordRepository) CountSince(ctx context.Context, cutoff time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM new_records WHERE detected_at >= ?`, cutoff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count new records: %w", err)
	}
	return n, nil
}
