package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrMissingSeason = errors.New("missing season query parameter")
	ErrBadSeason     = errors.New("season must be a positive year")
)
