// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/backmarker/backmarker/internal/adapters/repository"
	service "github.com/backmarker/backmarker/internal/app"
)

// BreakdownHandler handles per-player race breakdown requests.
type BreakdownHandler struct {
	deps Dependencies
}

// NewBreakdownHandler creates a new breakdown handler.
func NewBreakdownHandler(deps Dependencies) *BreakdownHandler {
	return &BreakdownHandler{deps: deps}
}

// HandleGetBreakdown handles GET /api/players/{username}/races?season=YYYY
// requests.
func (h *BreakdownHandler) HandleGetBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	username, ok := playerRacesPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	season, err := parseSeason(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	player, err := h.deps.PlayerBreakdown(r.Context(), season, username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPlayer):
			writeError(w, http.StatusNotFound, "unknown_player", err)
		case errors.Is(err, repository.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, player)
}

// playerRacesPath extracts the username from /api/players/{username}/races.
func playerRacesPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/api/players/")
	if !ok {
		return "", false
	}
	username, ok := strings.CutSuffix(rest, "/races")
	if !ok || username == "" || strings.Contains(username, "/") {
		return "", false
	}
	return username, true
}
