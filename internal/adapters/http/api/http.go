// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/backmarker/backmarker/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the scoring service.
type Dependencies interface {
	// Leaderboard returns the ranked season leaderboard.
	Leaderboard(ctx context.Context, season int) ([]types.LeaderboardEntry, error)

	// PlayerBreakdown returns one user's race-by-race season view.
	PlayerBreakdown(ctx context.Context, season int, username string) (types.PlayerSeason, error)

	// SeasonStats returns the auxiliary season aggregations.
	SeasonStats(ctx context.Context, season int) (types.SeasonStats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	breakdownHandler   *BreakdownHandler
	seasonStatsHandler *SeasonStatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		leaderboardHandler: NewLeaderboardHandler(deps),
		breakdownHandler:   NewBreakdownHandler(deps),
		seasonStatsHandler: NewSeasonStatsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/api/players/", MetricsMiddleware(s.breakdownHandler.HandleGetBreakdown, "player_races"))
	mux.HandleFunc("/api/stats/season", MetricsMiddleware(s.seasonStatsHandler.HandleGetSeasonStats, "season_stats"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// parseSeason reads the mandatory season query parameter. Seasons are
// four-digit years; anything non-positive is rejected up front.
func parseSeason(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("season")
	if raw == "" {
		return 0, ErrMissingSeason
	}
	season, err := strconv.Atoi(raw)
	if err != nil || season <= 0 {
		return 0, ErrBadSeason
	}
	return season, nil
}
