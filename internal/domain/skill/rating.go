// Package skill holds the Bayesian skill-rating model: the Gaussian rating
// type, the process-lifetime rating store, the first-match bootstrap, and the
// two-team rating update.
package skill

import (
	"math"

	"github.com/openfrag/agmmr/internal/domain/model"
)

// Model defaults. Mu is the prior mean skill estimate, Sigma the prior
// uncertainty (Mu/3).
const (
	DefaultMu    = 25.0
	DefaultSigma = 8.333
)

// Bootstrap proxy constants: K/D around 1.5 and a damage ratio around 1.2
// both map to an exactly average proxy of 1.0.
const (
	proxyKDNorm       = 1.5
	proxyDamageNorm   = 1.2
	proxyDamageFloor  = 1000.0
	proxyKDWeight     = 0.6
	proxyDamageWeight = 0.4
	proxyMuSpread     = 5.0
	bootstrapMuMin    = 15.0
	bootstrapMuMax    = 35.0
	perfectKDCap      = 5.0
)

// Rating is a Gaussian belief about a player's latent skill.
type Rating struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// Default returns the model's prior rating.
func Default() Rating {
	return Rating{Mu: DefaultMu, Sigma: DefaultSigma}
}

// Finite reports whether both fields hold finite values.
func (r Rating) Finite() bool {
	return !math.IsNaN(r.Mu) && !math.IsInf(r.Mu, 0) &&
		!math.IsNaN(r.Sigma) && !math.IsInf(r.Sigma, 0)
}

// Normalize replaces an unusable rating with the model defaults. Non-finite
// fields and non-positive uncertainty (the zero value of a never-rated
// persisted record) both count as unusable. The second return value reports
// whether the input was already usable.
func Normalize(r Rating) (Rating, bool) {
	if r.Finite() && r.Sigma > 0 {
		return r, true
	}
	return Default(), false
}

// DisplayMMR derives a display-only MMR from a rating mean. It bootstraps
// leaderboard display for players with no processed matches; matchmaking MMR
// comes from match processing.
func DisplayMMR(r Rating) int {
	return int(math.Round(r.Mu * 10))
}

// Bootstrap estimates an initial rating for a never-seen player from their
// first-match statistics. The proxy blends kill efficiency with damage
// efficiency and shifts the prior mean by up to proxyMuSpread either way;
// uncertainty stays at the model default.
func Bootstrap(rec *model.MatchStatRecord) Rating {
	kd := math.Min(float64(rec.Frags), perfectKDCap)
	if rec.Deaths > 0 {
		kd = float64(rec.Frags) / float64(rec.Deaths)
	}
	kdScore := clamp(kd/proxyKDNorm, 0, 2)

	// Players who took no damage fall back to a flat per-1000-damage ratio.
	damageRatio := float64(rec.DamageDealt) / proxyDamageFloor
	if rec.DamageTaken > 0 {
		damageRatio = float64(rec.DamageDealt) / float64(rec.DamageTaken)
	}
	damageScore := clamp(damageRatio/proxyDamageNorm, 0, 2)

	skillProxy := kdScore*proxyKDWeight + damageScore*proxyDamageWeight

	mu := clamp(DefaultMu+(skillProxy-1)*proxyMuSpread, bootstrapMuMin, bootstrapMuMax)
	return Rating{Mu: mu, Sigma: DefaultSigma}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
