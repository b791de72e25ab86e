// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/backmarker/backmarker/internal/adapters/repository"
	"github.com/backmarker/backmarker/internal/domain/types"
)

// leaderboardResponse mirrors the read contract for GET /api/leaderboard.
type leaderboardResponse struct {
	Entries []types.LeaderboardEntry `json:"entries"`
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps Dependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /api/leaderboard?season=YYYY requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	season, err := parseSeason(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	entries, err := h.deps.Leaderboard(r.Context(), season)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if entries == nil {
		entries = []types.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Entries: entries})
}
