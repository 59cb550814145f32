package server

import (
	"context"
	"dedi-tracker/internal/constants"
	"dedi-tracker/internal/domain"
	"dedi-tracker/internal/score"
	"dedi-tracker/internal/snapshot"
	"dedi-tracker/internal/stats"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// ScoreHistory is the slice of the daily score repository the read API
// needs.
type ScoreHistory interface {
	History(ctx context.Context) ([]domain.DailyScore, error)
}

// NewRecordCounter counts detected records since a cutoff.
type NewRecordCounter interface {
	CountSince(ctx context.Context, cutoff time.Time) (int, error)
}

// MapLookup resolves registry short keys and display names.
type MapLookup interface {
	UIDByShortKey(key string) (string, bool)
	Name(uid string) string
}

// Server exposes the read-only JSON API over the shared dataset slot and
// the daily score history. Handlers never trigger a scrape and never block
// on the background worker.
type Server struct {
	slot       *snapshot.Slot
	history    ScoreHistory
	newRecords NewRecordCounter
	maps       MapLookup
	logger     zerolog.Logger
}

func New(slot *snapshot.Slot, history ScoreHistory, newRecords NewRecordCounter, maps MapLookup, logger zerolog.Logger) *Server {
	return &Server{slot: slot, history: history, newRecords: newRecords, maps: maps, logger: logger}
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/records", s.handleRecords)
	mux.HandleFunc("GET /api/v1/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/v1/stats/recent", s.handleRecent)
	mux.HandleFunc("GET /api/v1/stats/active-maps", s.handleActiveMaps)
	mux.HandleFunc("GET /api/v1/stats/top1", s.handleTop1)
	mux.HandleFunc("GET /api/v1/stats/most-records", s.handleMostRecords)
	mux.HandleFunc("GET /api/v1/stats/new-today", s.handleNewToday)
	mux.HandleFunc("GET /api/v1/scores/history", s.handleScoreHistory)
	mux.HandleFunc("GET /api/v1/maps/lookup", s.handleMapLookup)
	return mux
}

type recordResponse struct {
	Game        string     `json:"game"`
	Login       string     `json:"login"`
	Nickname    string     `json:"nickname"`
	Rank        int        `json:"rank,omitempty"`
	MaxEntries  int        `json:"max_entries,omitempty"`
	TimeSeconds *float64   `json:"time_s"`
	Mode        string     `json:"mode,omitempty"`
	Challenge   string     `json:"challenge"`
	Environment string     `json:"environment,omitempty"`
	RecordDate  *time.Time `json:"record_date"`
	MapUID      string     `json:"map_uid"`
}

type datasetResponse struct {
	LastUpdated *time.Time       `json:"last_updated"`
	Count       int              `json:"count"`
	Records     []recordResponse `json:"records"`
}

func toRecordResponse(rec domain.Record) recordResponse {
	resp := recordResponse{
		Game:        rec.Game,
		Login:       rec.Login,
		Nickname:    rec.Nickname,
		Rank:        rec.Rank,
		MaxEntries:  rec.MaxEntries,
		Mode:        rec.Mode,
		Challenge:   rec.Challenge,
		Environment: rec.Environment,
		MapUID:      rec.MapUID,
	}
	if rec.TimeValid {
		t := rec.TimeSeconds
		resp.TimeSeconds = &t
	}
	if !rec.RecordDate.IsZero() {
		d := rec.RecordDate
		resp.RecordDate = &d
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if snap := s.slot.Load(); snap != nil {
		status["last_updated"] = snap.UpdatedAt
		status["records"] = len(snap.Dataset.Records)
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	snap := s.slot.Load()
	if snap == nil {
		s.writeJSON(w, http.StatusOK, datasetResponse{Records: []recordResponse{}})
		return
	}

	resp := datasetResponse{
		LastUpdated: &snap.UpdatedAt,
		Count:       len(snap.Dataset.Records),
		Records:     make([]recordResponse, 0, len(snap.Dataset.Records)),
	}
	for _, rec := range snap.Dataset.Records {
		resp.Records = append(resp.Records, toRecordResponse(rec))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	var records []domain.Record
	var updated *time.Time
	if snap := s.slot.Load(); snap != nil {
		records = snap.Dataset.Records
		updated = &snap.UpdatedAt
	}

	scores := score.Leaderboard(records)
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Points > scores[j].Points
	})

	s.writeJSON(w, http.StatusOK, map[string]any{
		"last_updated": updated,
		"players":      scores,
	})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	records := s.currentRecords()
	recent := stats.RecentRecords(records, constants.RecentRecordsLimit)

	resp := make([]recordResponse, 0, len(recent))
	for _, rec := range recent {
		resp = append(resp, toRecordResponse(rec))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActiveMaps(w http.ResponseWriter, r *http.Request) {
	cutoff := time.Now().Add(-constants.ActiveMapsWindow)
	s.writeJSON(w, http.StatusOK, stats.ActiveMaps(s.currentRecords(), cutoff, constants.ActiveMapsLimit))
}

func (s *Server) handleTop1(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, stats.Top1Counts(s.currentRecords(), constants.Top1Limit))
}

func (s *Server) handleMostRecords(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, stats.MostRecords(s.currentRecords(), constants.MostRecordsLimit))
}

func (s *Server) handleNewToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	since := score.Day(time.Now())
	count, err := s.newRecords.CountSince(ctx, since)
	if err != nil {
		s.logger.Error().Err(err).Msg("new record count query failed")
		http.Error(w, "new record count unavailable", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"since": since, "count": count})
}

func (s *Server) handleMapLookup(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key parameter is required", http.StatusBadRequest)
		return
	}
	uid, ok := s.maps.UIDByShortKey(key)
	if !ok {
		http.Error(w, "unknown map key", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"uid": uid, "name": s.maps.Name(uid)})
}

func (s *Server) handleScoreHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	scores, err := s.history.History(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("score history query failed")
		http.Error(w, "score history unavailable", http.StatusInternalServerError)
		return
	}
	if scores == nil {
		scores = []domain.DailyScore{}
	}
	s.writeJSON(w, http.StatusOK, scores)
}

func (s *Server) currentRecords() []domain.Record {
	if snap := s.slot.Load(); snap != nil {
		return snap.Dataset.Records
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("encoding response failed")
	}
}
