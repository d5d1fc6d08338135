package team

import "errors"

// Sentinel kinds for team organization errors.
var (
	ErrInvalidTeamComposition = errors.New("invalid team composition")
)
