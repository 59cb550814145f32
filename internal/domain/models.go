package domain

import (
	"time"
)

// Record is one player's placement on one map as scraped from Dedimania.
//
// Rank, MaxEntries and Checkpoints are 0 when the source text did not
// parse as a number; RecordDate is the zero time when the date did not
// parse. TimeValid distinguishes a genuine 0.0 from a missing time.
type Record struct {
	Game           string
	Login          string
	Nickname       string
	Rank           int
	MaxEntries     int
	TimeSeconds    float64
	TimeValid      bool
	Mode           string
	Checkpoints    int
	MapCheckpoints string // kept as text, some pages put "-" here
	Challenge      string
	Environment    string
	RecordDate     time.Time
	MapUID         string
}

// HasRank reports whether the scraped rank parsed as a positive integer.
func (r Record) HasRank() bool {
	return r.Rank >= 1
}

// Dataset is the aggregated result of one full scrape cycle.
type Dataset struct {
	Records   []Record
	FetchedAt time.Time
}

// PlayerScore is one leaderboard row: per-player aggregation over all
// records in a dataset.
type PlayerScore struct {
	Login       string
	Nickname    string
	Team        string
	Points      int
	MapsPlayed  int
	AverageRank float64
}

// DailyScore is one (login, day) snapshot row of cumulative points.
type DailyScore struct {
	Login      string
	Nickname   string
	Score      int
	RecordedAt time.Time
}

// NewRecord is a record detected as new or improved since the previous
// cycle, destined for the new_records table.
type NewRecord struct {
	MapUID      string
	MapName     string
	Login       string
	Nickname    string
	TimeSeconds float64
	Rank        int
	DetectedAt  time.Time
}
