package stats

import (
	"dedi-tracker/internal/domain"
	"sort"
	"strings"
	"time"
)

// MapActivity counts records set on one challenge inside a time window.
type MapActivity struct {
	Challenge  string
	NewRecords int
}

// PlayerCount is a generic per-player tally (record count, top-1 count).
type PlayerCount struct {
	Login    string
	Nickname string
	Count    int
}

// RecentRecords returns up to limit records ordered by record date
// descending. Records without a parsed date are excluded.
func RecentRecords(records []domain.Record, limit int) []domain.Record {
	dated := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if !rec.RecordDate.IsZero() {
			dated = append(dated, rec)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].RecordDate.After(dated[j].RecordDate)
	})
	if len(dated) > limit {
		dated = dated[:limit]
	}
	return dated
}

// ActiveMaps ranks challenges by how many records were set after the
// cutoff, most disputed first.
func ActiveMaps(records []domain.Record, cutoff time.Time, limit int) []MapActivity {
	counts := make(map[string]int)
	for _, rec := range records {
		if !rec.RecordDate.IsZero() && !rec.RecordDate.Before(cutoff) {
			counts[rec.Challenge]++
		}
	}
	return topCounts(counts, limit)
}

// MostRecords ranks players by total record count.
func MostRecords(records []domain.Record, limit int) []PlayerCount {
	return countBy(records, limit, func(domain.Record) bool { return true })
}

// Top1Counts ranks players by number of rank-1 records.
func Top1Counts(records []domain.Record, limit int) []PlayerCount {
	return countBy(records, limit, func(rec domain.Record) bool { return rec.Rank == 1 })
}

// DetectNew compares the previous cycle's records with the current ones
// and returns the entries whose (login, map, time) was not seen before:
// brand-new placements and improved times. On a first run with no previous
// data everything is new.
func DetectNew(prev, curr []domain.Record, detectedAt time.Time, mapName func(uid string) string) []domain.NewRecord {
	seen := make(map[entryKey]struct{}, len(prev))
	for _, rec := range prev {
		seen[recordKey(rec)] = struct{}{}
	}

	var fresh []domain.NewRecord
	for _, rec := range curr {
		if len(prev) > 0 {
			if _, ok := seen[recordKey(rec)]; ok {
				continue
			}
		}
		fresh = append(fresh, domain.NewRecord{
			MapUID:      rec.MapUID,
			MapName:     mapName(rec.MapUID),
			Login:       rec.Login,
			Nickname:    rec.Nickname,
			TimeSeconds: rec.TimeSeconds,
			Rank:        rec.Rank,
			DetectedAt:  detectedAt,
		})
	}
	return fresh
}

// entryKey identifies one placement; times compare at millisecond
// resolution to sidestep float jitter.
type entryKey struct {
	login  string
	mapUID string
	timeMs int64
}

func recordKey(rec domain.Record) entryKey {
	return entryKey{
		login:  strings.ToLower(rec.Login),
		mapUID: rec.MapUID,
		timeMs: int64(rec.TimeSeconds * 1000),
	}
}

func countBy(records []domain.Record, limit int, include func(domain.Record) bool) []PlayerCount {
	type key struct {
		login    string
		nickname string
	}
	counts := make(map[key]int)
	for _, rec := range records {
		if include(rec) {
			counts[key{login: strings.ToLower(rec.Login), nickname: rec.Nickname}]++
		}
	}

	result := make([]PlayerCount, 0, len(counts))
	for k, n := range counts {
		result = append(result, PlayerCount{Login: k.login, Nickname: k.nickname, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Login < result[j].Login
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

func topCounts(counts map[string]int, limit int) []MapActivity {
	result := make([]MapActivity, 0, len(counts))
	for challenge, n := range counts {
		result = append(result, MapActivity{Challenge: challenge, NewRecords: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].NewRecords != result[j].NewRecords {
			return result[i].NewRecords > result[j].NewRecords
		}
		return result[i].Challenge < result[j].Challenge
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}
