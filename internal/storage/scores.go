package storage

import (
	"dedi-tracker/internal/domain"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// ScoreExport mirrors the player_daily_scores table into a flat CSV so the
// point-progression view can read without touching the database.
type ScoreExport struct {
	path   string
	logger zerolog.Logger
}

func NewScoreExport(path string, logger zerolog.Logger) *ScoreExport {
	return &ScoreExport{path: path, logger: logger}
}

// Write replaces the export with the given history, temp-file + rename.
func (e *ScoreExport) Write(scores []domain.DailyScore) error {
	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(e.path), "daily-scores-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp export: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"login", "nickname", "score", "recorded_at"}); err != nil {
		tmp.Close()
		return fmt.Errorf("writing export header: %w", err)
	}
	for _, s := range scores {
		row := []string{s.Login, s.Nickname, strconv.Itoa(s.Score), s.RecordedAt.Format(time.RFC3339)}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("writing export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp export: %w", err)
	}

	if err := os.Rename(tmp.Name(), e.path); err != nil {
		return fmt.Errorf("replacing export: %w", err)
	}

	e.logger.Info().Str("path", e.path).Int("rows", len(scores)).Msg("daily scores exported")
	return nil
}
