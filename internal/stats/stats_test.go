package stats

import (
	"dedi-tracker/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func rec(login, challenge, uid string, rank int, secs float64, date time.Time) domain.Record {
	return domain.Record{
		Login:       login,
		Nickname:    login,
		Challenge:   challenge,
		MapUID:      uid,
		Rank:        rank,
		TimeSeconds: secs,
		TimeValid:   true,
		RecordDate:  date,
	}
}

func TestRecentRecords(t *testing.T) {
	now := time.Now()
	records := []domain.Record{
		rec("a", "Map A", "U1", 1, 60, now.Add(-2*time.Hour)),
		rec("b", "Map A", "U1", 2, 61, now),
		{Login: "c", Challenge: "Map B"}, // no date, excluded
	}

	got := RecentRecords(records, 10)
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].Login, "newest first")

	require.Len(t, RecentRecords(records, 1), 1)
}

func TestActiveMaps(t *testing.T) {
	now := time.Now()
	cutoff := now.Add(-7 * 24 * time.Hour)
	records := []domain.Record{
		rec("a", "Hot Map", "U1", 1, 60, now),
		rec("b", "Hot Map", "U1", 2, 61, now.Add(-time.Hour)),
		rec("c", "Cold Map", "U2", 1, 62, now.Add(-30*24*time.Hour)),
	}

	got := ActiveMaps(records, cutoff, 10)
	require.Len(t, got, 1)
	require.Equal(t, "Hot Map", got[0].Challenge)
	require.Equal(t, 2, got[0].NewRecords)
}

func TestTop1CountsAndMostRecords(t *testing.T) {
	now := time.Now()
	records := []domain.Record{
		rec("a", "Map A", "U1", 1, 60, now),
		rec("a", "Map B", "U2", 1, 60, now),
		rec("a", "Map C", "U3", 5, 60, now),
		rec("b", "Map A", "U1", 2, 61, now),
	}

	top1 := Top1Counts(records, 10)
	require.Equal(t, "a", top1[0].Login)
	require.Equal(t, 2, top1[0].Count)
	require.Len(t, top1, 1)

	most := MostRecords(records, 10)
	require.Len(t, most, 2)
	require.Equal(t, 3, most[0].Count)
}

func TestDetectNew(t *testing.T) {
	now := time.Now()
	names := func(uid string) string {
		if uid == "U1" {
			return "Dodo *1* Sprint"
		}
		return uid
	}

	prev := []domain.Record{
		rec("a", "Map A", "U1", 1, 60.00, now.Add(-time.Hour)),
		rec("b", "Map A", "U1", 2, 61.50, now.Add(-time.Hour)),
	}
	curr := []domain.Record{
		rec("a", "Map A", "U1", 1, 59.00, now), // improved time
		rec("b", "Map A", "U1", 2, 61.50, now), // unchanged
		rec("c", "Map A", "U1", 3, 62.00, now), // brand new
	}

	fresh := DetectNew(prev, curr, now, names)
	require.Len(t, fresh, 2)
	require.Equal(t, "a", fresh[0].Login)
	require.Equal(t, "Dodo *1* Sprint", fresh[0].MapName)
	require.Equal(t, "c", fresh[1].Login)

	// first run: everything is new
	require.Len(t, DetectNew(nil, curr, now, names), 3)
}
