package scheduler

import (
	"context"
	"dedi-tracker/internal/domain"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ScoreHistory reads the full daily score history back from storage.
type ScoreHistory interface {
	History(ctx context.Context) ([]domain.DailyScore, error)
}

// ScoreExporter writes the history to its flat-file mirror.
type ScoreExporter interface {
	Write(scores []domain.DailyScore) error
}

// DailySyncer mirrors the daily score table into a CSV once per day so the
// progression view reads a file, not the database.
type DailySyncer struct {
	history  ScoreHistory
	export   ScoreExporter
	interval time.Duration
	logger   zerolog.Logger
	started  atomic.Bool
}

func NewDailySyncer(history ScoreHistory, export ScoreExporter, interval time.Duration, logger zerolog.Logger) *DailySyncer {
	return &DailySyncer{history: history, export: export, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled; duplicate starts are no-ops.
func (d *DailySyncer) Run(ctx context.Context) {
	if !d.started.CompareAndSwap(false, true) {
		d.logger.Info().Msg("daily syncer already running, ignoring duplicate start")
		return
	}
	defer d.started.Store(false)

	for {
		d.sync(ctx)

		select {
		case <-ctx.Done():
			d.logger.Info().Msg("daily syncer stopping")
			return
		case <-time.After(d.interval):
		}
	}
}

func (d *DailySyncer) sync(ctx context.Context) {
	scores, err := d.history.History(ctx)
	if err != nil {
		d.logger.Error().Err(err).Msg("daily sync: reading score history failed")
		return
	}
	if err := d.export.Write(scores); err != nil {
		d.logger.Error().Err(err).Msg("daily sync: export failed")
		return
	}
	d.logger.Info().Int("rows", len(scores)).Msg("daily sync finished")
}
