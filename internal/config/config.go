package config

import (
	"dedi-tracker/internal/constants"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath         string
	ServerPort     string
	SourceBaseURL  string
	UIDFile        string
	UIDMapFile     string
	ArchivePath    string
	ScoresCSVPath  string
	ScrapeInterval time.Duration
	DailyInterval  time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:         getEnv("DB_PATH", "dedi.db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		SourceBaseURL:  getEnv("DEDI_BASE_URL", "http://dedimania.net"),
		UIDFile:        getEnv("UID_FILE", "all_maps.txt"),
		UIDMapFile:     getEnv("UID_MAP_FILE", "maps_dict.txt"),
		ArchivePath:    getEnv("ARCHIVE_PATH", "resources/dedimania_all_records.csv"),
		ScoresCSVPath:  getEnv("SCORES_CSV_PATH", "resources/daily_player_points.csv"),
		ScrapeInterval: constants.DefaultScrapeInterval,
		DailyInterval:  constants.DefaultDailyInterval,
	}

	if v := os.Getenv("SCRAPE_INTERVAL_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid SCRAPE_INTERVAL_SECONDS %q", v)
		}
		cfg.ScrapeInterval = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("DAILY_SYNC_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid DAILY_SYNC_HOURS %q", v)
		}
		cfg.DailyInterval = time.Duration(hours) * time.Hour
	}

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("DB_PATH is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("source_base_url", cfg.SourceBaseURL).
		Str("uid_file", cfg.UIDFile).
		Dur("scrape_interval", cfg.ScrapeInterval).
		Dur("daily_interval", cfg.DailyInterval).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
