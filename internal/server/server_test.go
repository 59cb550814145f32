package server

import (
	"context"
	"dedi-tracker/internal/domain"
	"dedi-tracker/internal/snapshot"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubHistory struct {
	scores []domain.DailyScore
	err    error
}

func (s *stubHistory) History(ctx context.Context) ([]domain.DailyScore, error) {
	return s.scores, s.err
}

type stubCounter struct {
	count int
	err   error
}

func (s *stubCounter) CountSince(ctx context.Context, cutoff time.Time) (int, error) {
	return s.count, s.err
}

type stubLookup struct{}

func (stubLookup) UIDByShortKey(key string) (string, bool) {
	if key == "1" {
		return "UID1", true
	}
	return "", false
}

func (stubLookup) Name(uid string) string { return "Dodo *1* Sprint" }

func testServer(slot *snapshot.Slot, history ScoreHistory) *httptest.Server {
	return httptest.NewServer(New(slot, history, &stubCounter{count: 3}, stubLookup{}, zerolog.Nop()).Routes())
}

func seedSlot() *snapshot.Slot {
	slot := snapshot.NewSlot()
	now := time.Now().UTC()
	slot.Publish(domain.Dataset{Records: []domain.Record{
		{Login: "alice", Nickname: "Alice", Rank: 1, TimeSeconds: 62.5, TimeValid: true,
			Challenge: "Map A", MapUID: "UID1", RecordDate: now},
		{Login: "bob", Nickname: "Bob", Rank: 2, Challenge: "Map A", MapUID: "UID1", RecordDate: now},
	}}, now)
	return slot
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestRecordsEndpoint(t *testing.T) {
	srv := testServer(seedSlot(), &stubHistory{})
	defer srv.Close()

	var resp datasetResponse
	getJSON(t, srv.URL+"/api/v1/records", &resp)

	require.Equal(t, 2, resp.Count)
	require.NotNil(t, resp.LastUpdated)
	require.Len(t, resp.Records, 2)

	require.NotNil(t, resp.Records[0].TimeSeconds)
	require.InDelta(t, 62.5, *resp.Records[0].TimeSeconds, 0.0001)
	require.Nil(t, resp.Records[1].TimeSeconds, "missing time serializes as null")
}

func TestRecordsEndpointEmptySlot(t *testing.T) {
	srv := testServer(snapshot.NewSlot(), &stubHistory{})
	defer srv.Close()

	var resp datasetResponse
	getJSON(t, srv.URL+"/api/v1/records", &resp)

	require.Nil(t, resp.LastUpdated, "staleness is observable, not an error")
	require.Empty(t, resp.Records)
}

func TestLeaderboardSortedByPoints(t *testing.T) {
	srv := testServer(seedSlot(), &stubHistory{})
	defer srv.Close()

	var resp struct {
		Players []domain.PlayerScore `json:"players"`
	}
	getJSON(t, srv.URL+"/api/v1/leaderboard", &resp)

	require.Len(t, resp.Players, 2)
	require.Equal(t, "alice", resp.Players[0].Login)
	require.Equal(t, 10, resp.Players[0].Points)
	require.Equal(t, 7, resp.Players[1].Points)
}

func TestScoreHistoryEndpoint(t *testing.T) {
	history := &stubHistory{scores: []domain.DailyScore{
		{Login: "alice", Nickname: "Alice", Score: 10, RecordedAt: time.Now().UTC()},
	}}
	srv := testServer(snapshot.NewSlot(), history)
	defer srv.Close()

	var resp []domain.DailyScore
	getJSON(t, srv.URL+"/api/v1/scores/history", &resp)
	require.Len(t, resp, 1)

	history.err = errors.New("db down")
	r, err := http.Get(srv.URL + "/api/v1/scores/history")
	require.NoError(t, err)
	defer r.Body.Close()
	require.Equal(t, http.StatusInternalServerError, r.StatusCode)
}

func TestStatsEndpoints(t *testing.T) {
	srv := testServer(seedSlot(), &stubHistory{})
	defer srv.Close()

	var top1 []struct {
		Login string `json:"Login"`
		Count int    `json:"Count"`
	}
	getJSON(t, srv.URL+"/api/v1/stats/top1", &top1)
	require.Len(t, top1, 1)
	require.Equal(t, "alice", top1[0].Login)

	var recent []recordResponse
	getJSON(t, srv.URL+"/api/v1/stats/recent", &recent)
	require.Len(t, recent, 2)

	var newToday struct {
		Count int `json:"count"`
	}
	getJSON(t, srv.URL+"/api/v1/stats/new-today", &newToday)
	require.Equal(t, 3, newToday.Count)
}

func TestMapLookupEndpoint(t *testing.T) {
	srv := testServer(snapshot.NewSlot(), &stubHistory{})
	defer srv.Close()

	var resp struct {
		UID  string `json:"uid"`
		Name string `json:"name"`
	}
	getJSON(t, srv.URL+"/api/v1/maps/lookup?key=1", &resp)
	require.Equal(t, "UID1", resp.UID)
	require.Equal(t, "Dodo *1* Sprint", resp.Name)

	r, err := http.Get(srv.URL + "/api/v1/maps/lookup?key=99")
	require.NoError(t, err)
	defer r.Body.Close()
	require.Equal(t, http.StatusNotFound, r.StatusCode)

	r2, err := http.Get(srv.URL + "/api/v1/maps/lookup")
	require.NoError(t, err)
	defer r2.Body.Close()
	require.Equal(t, http.StatusBadRequest, r2.StatusCode)
}
