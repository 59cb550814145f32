package fx

import (
	"dedi-tracker/internal/config"
	"dedi-tracker/internal/database"
	"dedi-tracker/internal/logger"
	"dedi-tracker/internal/registry"
	"dedi-tracker/internal/repository"
	"dedi-tracker/internal/scheduler"
	"dedi-tracker/internal/scrape"
	"dedi-tracker/internal/server"
	"dedi-tracker/internal/snapshot"
	"dedi-tracker/internal/storage"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideRegistry(cfg *config.Config, log zerolog.Logger) (*registry.Registry, error) {
	return registry.Load(cfg.UIDFile, cfg.UIDMapFile, log)
}

func ProvidePageParser(log zerolog.Logger) *scrape.PageParser {
	return scrape.NewPageParser(log)
}

func ProvideArchive(cfg *config.Config, log zerolog.Logger) *storage.Archive {
	return storage.NewArchive(cfg.ArchivePath, log)
}

func ProvideScoreExport(cfg *config.Config, log zerolog.Logger) *storage.ScoreExport {
	return storage.NewScoreExport(cfg.ScoresCSVPath, log)
}

func ProvideRefresher(
	orchestrator *scrape.Orchestrator,
	slot *snapshot.Slot,
	archive *storage.Archive,
	records *repository.RecordRepository,
	scores *repository.DailyScoreRepository,
	reg *registry.Registry,
	cfg *config.Config,
	log zerolog.Logger,
) *scheduler.Refresher {
	return scheduler.NewRefresher(orchestrator, slot, archive, records, scores, reg, cfg.ScrapeInterval, log)
}

func ProvideDailySyncer(
	scores *repository.DailyScoreRepository,
	export *storage.ScoreExport,
	cfg *config.Config,
	log zerolog.Logger,
) *scheduler.DailySyncer {
	return scheduler.NewDailySyncer(scores, export, cfg.DailyInterval, log)
}

func ProvideServer(
	slot *snapshot.Slot,
	scores *repository.DailyScoreRepository,
	records *repository.RecordRepository,
	reg *registry.Registry,
	log zerolog.Logger,
) *server.Server {
	return server.New(slot, scores, records, reg, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideRegistry),
	// scraping
	fx.Provide(scrape.NewClient),
	fx.Provide(ProvidePageParser),
	fx.Provide(scrape.NewOrchestrator),
	// storage
	fx.Provide(snapshot.NewSlot),
	fx.Provide(ProvideArchive),
	fx.Provide(ProvideScoreExport),
	// repos
	fx.Provide(repository.NewRecordRepository),
	fx.Provide(repository.NewDailyScoreRepository),
	// background workers
	fx.Provide(ProvideRefresher),
	fx.Provide(ProvideDailySyncer),
	// server
	fx.Provide(ProvideServer),
)
