package constants

import "time"

const (
	FetchTimeout    = 15 * time.Second
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DefaultScrapeInterval = 1 * time.Hour
	DefaultDailyInterval  = 24 * time.Hour
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	RecentRecordsLimit = 100
	ActiveMapsLimit    = 10
	MostRecordsLimit   = 10
	Top1Limit          = 10
	ActiveMapsWindow   = 7 * 24 * time.Hour
)
