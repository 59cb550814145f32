package score

import (
	"dedi-tracker/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAssignPoints(t *testing.T) {
	tests := []struct {
		rank int
		want int
	}{
		{1, 10}, {2, 7}, {3, 4},
		{4, 3}, {10, 3},
		{11, 2}, {20, 2},
		{21, 1}, {30, 1},
		{31, 0}, {1000, 0},
		{0, 0},  // missing rank
		{-5, 0}, // garbage
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, AssignPoints(tt.rank), "rank %d", tt.rank)
	}
}

func TestAssignPointsMonotonic(t *testing.T) {
	prev := AssignPoints(1)
	for rank := 2; rank <= 100; rank++ {
		got := AssignPoints(rank)
		require.LessOrEqual(t, got, prev, "points must not increase with rank (rank %d)", rank)
		prev = got
	}
}

func rec(login, nick, challenge string, rank int, date time.Time) domain.Record {
	return domain.Record{
		Login:      login,
		Nickname:   nick,
		Challenge:  challenge,
		Rank:       rank,
		RecordDate: date,
	}
}

func TestLeaderboard(t *testing.T) {
	now := time.Now()
	records := []domain.Record{
		rec("Alice", "Alice", "Map A", 1, now),
		rec("alice", "Alice", "Map B", 3, now),
		rec("alice", "Alice", "Map B", 0, now), // missing rank: points 0, ignored in average
		rec("bob", "Bob", "Map A", 2, now),
	}

	scores := Leaderboard(records)
	require.Len(t, scores, 2)

	byLogin := make(map[string]domain.PlayerScore)
	for _, s := range scores {
		byLogin[s.Login] = s
	}

	alice := byLogin["alice"]
	require.Equal(t, 14, alice.Points) // 10 + 4 + 0
	require.Equal(t, 2, alice.MapsPlayed)
	require.InDelta(t, 2.0, alice.AverageRank, 0.0001)

	bob := byLogin["bob"]
	require.Equal(t, 7, bob.Points)
	require.Equal(t, 1, bob.MapsPlayed)
	require.InDelta(t, 2.0, bob.AverageRank, 0.0001)
}

func TestDailySnapshotLastNicknameWins(t *testing.T) {
	day := time.Date(2025, 10, 7, 15, 30, 0, 0, time.UTC)
	records := []domain.Record{
		rec("alice", "NewNick", "Map B", 2, day),
		rec("alice", "OldNick", "Map A", 1, day.Add(-48*time.Hour)),
		rec("bob", "Bob", "Map A", 31, day),
	}

	scores := DailySnapshot(records, day)
	require.Len(t, scores, 2)

	byLogin := make(map[string]domain.DailyScore)
	for _, s := range scores {
		byLogin[s.Login] = s
	}

	alice := byLogin["alice"]
	require.Equal(t, "NewNick", alice.Nickname, "latest record date wins")
	require.Equal(t, 17, alice.Score)
	require.Equal(t, time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC), alice.RecordedAt)

	require.Equal(t, 0, byLogin["bob"].Score)
}

func TestAssignTeam(t *testing.T) {
	require.Equal(t, "LeG", AssignTeam("LeG rider"))
	require.Equal(t, "LeG", AssignTeam("leg rider"))
	require.Equal(t, "", AssignTeam("independent"))
	require.Equal(t, "", AssignTeam(""))
}
