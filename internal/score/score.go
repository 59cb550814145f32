package score

import (
	"dedi-tracker/internal/domain"
	"sort"
	"strings"
	"time"
)

// teamPrefixes maps a known nickname prefix to a team label. Checked
// case-insensitively against the cleaned nickname.
var teamPrefixes = []string{
	"ĊĦ »", "ѕнιғт", "LeG", "нот", "Јғғ", "Сяс", "הѕс", "»тят",
	"νѕρ", "ғฟ๏", "ѕωα", "Law", "4W : : ", "nsc", "»ЯтА",
	"ωаѕρ .", "ғаιהτ.", "sigN", "GC l|", "kings",
}

// AssignPoints maps a record rank to challenge points. Total: any rank,
// including missing (<= 0) and beyond 30, yields 0.
func AssignPoints(rank int) int {
	switch {
	case rank == 1:
		return 10
	case rank == 2:
		return 7
	case rank == 3:
		return 4
	case rank >= 4 && rank <= 10:
		return 3
	case rank >= 11 && rank <= 20:
		return 2
	case rank >= 21 && rank <= 30:
		return 1
	default:
		return 0
	}
}

// AssignTeam returns the team label for a nickname, or "" when no known
// prefix matches.
func AssignTeam(nickname string) string {
	nickname = strings.ToLower(strings.TrimSpace(nickname))
	for _, prefix := range teamPrefixes {
		if strings.HasPrefix(nickname, strings.ToLower(prefix)) {
			return strings.TrimSpace(prefix)
		}
	}
	return ""
}

// Leaderboard aggregates a dataset into one row per (login, nickname):
// summed points over every record, distinct challenges played, and the
// mean rank over records that have one. Output order is unspecified;
// presentation sorts by points.
//
// Points sum over all rows as given. The orchestrator emits at most one
// current row per (login, map) per cycle; this function does not enforce
// that precondition.
func Leaderboard(records []domain.Record) []domain.PlayerScore {
	type key struct {
		login    string
		nickname string
	}
	type agg struct {
		points     int
		challenges map[string]struct{}
		rankSum    int
		rankCount  int
	}

	groups := make(map[key]*agg)
	var order []key

	for _, rec := range records {
		k := key{login: strings.ToLower(rec.Login), nickname: rec.Nickname}
		g, ok := groups[k]
		if !ok {
			g = &agg{challenges: make(map[string]struct{})}
			groups[k] = g
			order = append(order, k)
		}
		g.points += AssignPoints(rec.Rank)
		g.challenges[rec.Challenge] = struct{}{}
		if rec.HasRank() {
			g.rankSum += rec.Rank
			g.rankCount++
		}
	}

	scores := make([]domain.PlayerScore, 0, len(groups))
	for _, k := range order {
		g := groups[k]
		score := domain.PlayerScore{
			Login:      k.login,
			Nickname:   k.nickname,
			Team:       AssignTeam(k.nickname),
			Points:     g.points,
			MapsPlayed: len(g.challenges),
		}
		if g.rankCount > 0 {
			score.AverageRank = float64(g.rankSum) / float64(g.rankCount)
		}
		scores = append(scores, score)
	}
	return scores
}

// DailySnapshot collapses a dataset into one row per login for the given
// snapshot day: the nickname last seen by record date and the summed
// points across every record.
func DailySnapshot(records []domain.Record, day time.Time) []domain.DailyScore {
	sorted := make([]domain.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecordDate.Before(sorted[j].RecordDate)
	})

	day = Day(day)

	type agg struct {
		nickname string
		score    int
	}
	groups := make(map[string]*agg)
	var order []string

	for _, rec := range sorted {
		login := strings.ToLower(rec.Login)
		g, ok := groups[login]
		if !ok {
			g = &agg{}
			groups[login] = g
			order = append(order, login)
		}
		g.nickname = rec.Nickname
		g.score += AssignPoints(rec.Rank)
	}

	scores := make([]domain.DailyScore, 0, len(groups))
	for _, login := range order {
		g := groups[login]
		scores = append(scores, domain.DailyScore{
			Login:      login,
			Nickname:   g.nickname,
			Score:      g.score,
			RecordedAt: day,
		})
	}
	return scores
}

// Day truncates a timestamp to its UTC calendar day, the granularity of
// the daily score table's uniqueness key.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
