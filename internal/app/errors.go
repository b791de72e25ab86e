package service

import "errors"

var (
	// ErrNoStore is returned by Start when no pick store was configured.
	ErrNoStore = errors.New("no store configured")

	// ErrUnknownPlayer is returned when a breakdown is requested for a
	// username with no picks in the season.
	ErrUnknownPlayer = errors.New("unknown player")
)
