// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/backmarker/backmarker/internal/adapters/repository"
)

// SeasonStatsHandler handles season statistics requests.
type SeasonStatsHandler struct {
	deps Dependencies
}

// NewSeasonStatsHandler creates a new season stats handler.
func NewSeasonStatsHandler(deps Dependencies) *SeasonStatsHandler {
	return &SeasonStatsHandler{deps: deps}
}

// HandleGetSeasonStats handles GET /api/stats/season?season=YYYY requests.
func (h *SeasonStatsHandler) HandleGetSeasonStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	season, err := parseSeason(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	stats, err := h.deps.SeasonStats(r.Context(), season)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
