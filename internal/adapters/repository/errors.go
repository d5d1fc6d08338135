package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrDetailNotFound = errors.New("match detail not found")
	ErrInvalidLimit   = errors.New("invalid leaderboard limit")
)
