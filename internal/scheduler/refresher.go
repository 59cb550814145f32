package scheduler

import (
	"context"
	"dedi-tracker/internal/domain"
	"dedi-tracker/internal/score"
	"dedi-tracker/internal/scrape"
	"dedi-tracker/internal/snapshot"
	"dedi-tracker/internal/stats"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Scraper runs one full pass over the map list.
type Scraper interface {
	Scrape(ctx context.Context, uids []string) scrape.Result
}

// Archiver persists and restores the flat-file dataset copy.
type Archiver interface {
	Write(dataset domain.Dataset) error
	Load() (domain.Dataset, error)
}

// RecordStore receives newly detected records.
type RecordStore interface {
	InsertBatch(ctx context.Context, records []domain.NewRecord) error
}

// ScoreStore receives the per-cycle daily snapshot.
type ScoreStore interface {
	UpsertBatch(ctx context.Context, scores []domain.DailyScore) error
}

// MapRegistry supplies the map list and display names.
type MapRegistry interface {
	UIDs() []string
	Name(uid string) string
}

// Refresher owns the background scrape loop: every interval it runs the
// orchestrator, atomically publishes the result to the shared slot, and
// fans the dataset out to durable storage. All failures are logged and
// retried on the next tick; the loop never terminates on its own.
//
// baseline holds the last fetched rows per map UID and is the reference
// for new-record detection. A map whose fetch failed keeps its previous
// rows, so records reappearing after an outage are not re-flagged as new.
// Only the Run goroutine touches it.
type Refresher struct {
	scraper  Scraper
	slot     *snapshot.Slot
	archive  Archiver
	records  RecordStore
	scores   ScoreStore
	registry MapRegistry
	interval time.Duration
	logger   zerolog.Logger
	started  atomic.Bool
	baseline map[string][]domain.Record
}

func NewRefresher(
	scraper Scraper,
	slot *snapshot.Slot,
	archive Archiver,
	records RecordStore,
	scores ScoreStore,
	registry MapRegistry,
	interval time.Duration,
	logger zerolog.Logger,
) *Refresher {
	return &Refresher{
		scraper:  scraper,
		slot:     slot,
		archive:  archive,
		records:  records,
		scores:   scores,
		registry: registry,
		interval: interval,
		logger:   logger,
		baseline: make(map[string][]domain.Record),
	}
}

// Run blocks until ctx is cancelled. A second call while the loop is live
// is a no-op, so the process can never grow a duplicate scrape loop.
func (r *Refresher) Run(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		r.logger.Info().Msg("refresher already running, ignoring duplicate start")
		return
	}
	defer r.started.Store(false)

	r.coldStart()

	for {
		r.runCycle(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info().Msg("refresher stopping")
			return
		case <-time.After(r.interval):
		}
	}
}

// coldStart seeds the slot and the detection baseline from the flat-file
// archive, so readers have data before the first live cycle completes and
// a restart does not re-flag every archived record as new.
func (r *Refresher) coldStart() {
	if r.slot.Load() != nil {
		return
	}
	dataset, err := r.archive.Load()
	if err != nil {
		r.logger.Warn().Err(err).Msg("cold start archive unavailable")
		return
	}
	if len(dataset.Records) == 0 {
		return
	}
	for _, rec := range dataset.Records {
		r.baseline[rec.MapUID] = append(r.baseline[rec.MapUID], rec)
	}
	r.slot.Publish(dataset, dataset.FetchedAt)
	r.logger.Info().Int("records", len(dataset.Records)).Msg("slot seeded from archive")
}

func (r *Refresher) runCycle(ctx context.Context) {
	cycleID, err := gonanoid.New(8)
	if err != nil {
		cycleID = "unknown"
	}
	logger := r.logger.With().Str("cycle_id", cycleID).Logger()
	logger.Info().Msg("scrape cycle starting")

	result := r.scraper.Scrape(ctx, r.registry.UIDs())
	if ctx.Err() != nil {
		return
	}
	if result.Succeeded == 0 {
		// nothing fetched; keep the previous snapshot and baseline so the
		// outage reads as staleness, not as every record vanishing
		logger.Warn().Int("failed", result.Failed).Msg("cycle fetched nothing, keeping previous snapshot")
		return
	}

	prev := r.baselineRecords()
	r.advanceBaseline(result)

	now := time.Now().UTC()
	r.slot.Publish(result.Dataset, now)
	logger.Info().
		Int("records", len(result.Dataset.Records)).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("dataset published")

	// durable side effects are independent of the in-memory publish and of
	// each other; a crash in between self-heals on the next cycle
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.archive.Write(result.Dataset)
	})

	g.Go(func() error {
		fresh := stats.DetectNew(prev, result.Dataset.Records, now, r.registry.Name)
		if len(fresh) == 0 {
			return nil
		}
		logger.Info().Int("new_records", len(fresh)).Msg("new records detected")
		return r.records.InsertBatch(gCtx, fresh)
	})

	g.Go(func() error {
		daily := score.DailySnapshot(result.Dataset.Records, now)
		return r.scores.UpsertBatch(gCtx, daily)
	})

	if err := g.Wait(); err != nil {
		// stale-but-valid beats crashed: log and wait for the next tick
		logger.Error().Err(err).Msg("cycle persistence failed")
	}

	logger.Info().Msg("scrape cycle finished")
}

// baselineRecords flattens the per-map baseline into one slice.
func (r *Refresher) baselineRecords() []domain.Record {
	var records []domain.Record
	for _, rows := range r.baseline {
		records = append(records, rows...)
	}
	return records
}

// advanceBaseline replaces the baseline rows of every map that was
// actually fetched this cycle. Maps whose fetch failed keep their previous
// rows.
func (r *Refresher) advanceBaseline(result scrape.Result) {
	byUID := make(map[string][]domain.Record)
	for _, rec := range result.Dataset.Records {
		byUID[rec.MapUID] = append(byUID[rec.MapUID], rec)
	}
	for _, uid := range result.FetchedUIDs {
		r.baseline[uid] = byUID[uid]
	}
}
