// Package gate decides whether a match is statistically meaningful enough to
// move ratings at all.
package gate

import "github.com/openfrag/agmmr/internal/domain/model"

// Default validity thresholds.
const (
	defaultMinTotalFrags    = 10
	defaultMinTotalDamage   = 1000
	defaultMinActivePlayers = 1

	// A player counts as active with at least one frag and meaningful damage.
	activeMinFrags  = 1
	activeMinDamage = 100
)

// Gate evaluates match validity against configurable thresholds.
type Gate struct {
	minTotalFrags    int
	minTotalDamage   int
	minActivePlayers int
}

// Option applies a configuration option to the Gate.
type Option func(*Gate)

// WithMinTotalFrags sets the minimum total frag count for a valid match.
func WithMinTotalFrags(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.minTotalFrags = n
		}
	}
}

// WithMinTotalDamage sets the minimum total damage dealt for a valid match.
func WithMinTotalDamage(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.minTotalDamage = n
		}
	}
}

// WithMinActivePlayers sets the minimum number of active players for a valid
// match.
func WithMinActivePlayers(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.minActivePlayers = n
		}
	}
}

// New creates a Gate with the default thresholds.
func New(opts ...Option) *Gate {
	g := &Gate{
		minTotalFrags:    defaultMinTotalFrags,
		minTotalDamage:   defaultMinTotalDamage,
		minActivePlayers: defaultMinActivePlayers,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Valid reports whether the match should move ratings. An invalid match still
// carries skill ratings through unchanged; it just produces zero MMR movement.
func (g *Gate) Valid(records []*model.MatchStatRecord) bool {
	totalFrags := 0
	totalDamage := 0
	activePlayers := 0
	for _, r := range records {
		totalFrags += r.Frags
		totalDamage += r.DamageDealt
		if r.Frags >= activeMinFrags && r.DamageDealt >= activeMinDamage {
			activePlayers++
		}
	}

	if totalFrags < g.minTotalFrags {
		return false
	}
	if totalDamage < g.minTotalDamage {
		return false
	}
	return activePlayers >= g.minActivePlayers
}
