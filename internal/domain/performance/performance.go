// Package performance computes match-relative performance scores.
//
// A score of 1.0 is exactly average play for the roster the player is scored
// against; every ratio is capped so a single outlier stat cannot dominate.
package performance

import (
	"math"

	"github.com/openfrag/agmmr/internal/domain/model"
)

// Ratio caps and weights for the composite score.
const (
	perfectKDCap = 5.0
	kdRatioCap   = 3.0
	fragRatioCap = 2.5
	dmgRatioCap  = 2.5
	kdWeight     = 0.5
	fragWeight   = 0.3
	dmgWeight    = 0.2
	scoreFloor   = 0.2
	scoreCeiling = 2.5
	neutralRatio = 1.0
)

// Score is an ephemeral per-player, per-match performance summary.
type Score struct {
	Score       float64
	Adjustment  float64
	KDRatio     float64
	FragRatio   float64
	DamageRatio float64
}

// Compute scores one player against the arithmetic averages of the given
// roster. The roster is the whole match for the headline score, or a single
// side when establishing a carry baseline. Division-by-zero cases fall back
// to neutral values rather than failing.
func Compute(player *model.MatchStatRecord, roster []*model.MatchStatRecord) Score {
	var sumFrags, sumDeaths, sumDamage float64
	for _, r := range roster {
		sumFrags += float64(r.Frags)
		sumDeaths += float64(r.Deaths)
		sumDamage += float64(r.DamageDealt)
	}
	n := float64(len(roster))
	avgFrags := sumFrags / n
	avgDeaths := sumDeaths / n
	avgDamage := sumDamage / n

	kd := playerKD(player)

	avgKD := avgFrags
	if avgDeaths > 0 {
		avgKD = avgFrags / avgDeaths
	}

	kdRatio := neutralRatio
	if avgKD > 0 {
		kdRatio = math.Min(kdRatioCap, kd/avgKD)
	}
	fragRatio := neutralRatio
	if avgFrags > 0 {
		fragRatio = math.Min(fragRatioCap, float64(player.Frags)/avgFrags)
	}
	damageRatio := neutralRatio
	if avgDamage > 0 {
		damageRatio = math.Min(dmgRatioCap, float64(player.DamageDealt)/avgDamage)
	}

	score := kdRatio*kdWeight + fragRatio*fragWeight + damageRatio*dmgWeight

	return Score{
		Score:       math.Max(scoreFloor, math.Min(scoreCeiling, score)),
		KDRatio:     kdRatio,
		FragRatio:   fragRatio,
		DamageRatio: damageRatio,
	}
}

// playerKD returns frags/deaths, capping a perfect (deathless) K/D at 5.
func playerKD(r *model.MatchStatRecord) float64 {
	if r.Deaths > 0 {
		return float64(r.Frags) / float64(r.Deaths)
	}
	return math.Min(float64(r.Frags), perfectKDCap)
}
