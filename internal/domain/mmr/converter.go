// Package mmr converts skill-rating movement plus performance, balance, and
// carry signals into a bounded integer MMR delta.
package mmr

import (
	"math"

	"github.com/openfrag/agmmr/internal/domain/skill"
)

// Conversion weights and bounds.
const (
	muDeltaWeight   = 5.0
	sigmaGainWeight = 1.5

	baseAdjustCeiling = 22.0
	baseAdjustPerSeat = 2.0
	baseAdjustFloor   = 8.0
	deviationCap      = 0.5
	perfMultiplier    = 0.35
	winAdjustFloor    = 4.0
	lossAdjustCeiling = -4.0

	balanceThreshold  = 3.0
	upsetBase         = 1.3
	upsetBonusCap     = 0.4
	upsetBonusScale   = 10.0
	expectedBase      = 0.8
	expectedCutCap    = 0.2
	expectedCutScale  = 15.0
	balanceFactorMin  = 0.5
	balanceFactorMax  = 1.8

	carryThreshold = 0.4

	winDeltaMin  = 2
	winDeltaMax  = 40
	lossDeltaMin = -40
	lossDeltaMax = -2

	placementBase        = 1000.0
	placementMuWeight    = 40.0
	placementPerfWeight  = 200.0
	placementSigmaWeight = 20.0
)

// BaseChange translates skill-rating movement into MMR points: mean movement
// weighted up, plus a small credit for uncertainty reduction. Non-finite
// ratings yield zero.
func BaseChange(old, updated skill.Rating) float64 {
	if !old.Finite() || !updated.Finite() {
		return 0
	}
	return (updated.Mu-old.Mu)*muDeltaWeight +
		math.Max(0, old.Sigma-updated.Sigma)*sigmaGainWeight
}

// PerformanceAdjustment converts a performance score into MMR points. Smaller
// teams carry more individual weight, so the base magnitude scales down with
// team size. Every win nets at least +4 here, every loss at least -4.
func PerformanceAdjustment(score float64, won bool, teamSize int) float64 {
	base := math.Max(baseAdjustFloor, baseAdjustCeiling-float64(teamSize)*baseAdjustPerSeat)
	deviation := math.Max(-deviationCap, math.Min(deviationCap, score-1.0))
	multiplier := deviation * perfMultiplier

	if won {
		return math.Max(winAdjustFloor, base*(1+multiplier))
	}
	return math.Min(lossAdjustCeiling, -base*(1-multiplier))
}

// BalanceFactor amplifies MMR movement for upsets and dampens it for expected
// outcomes, based on the pre-update average skill of the two sides. Within
// balanceThreshold mean skill the match counts as even and the factor is 1.
func BalanceFactor(winnerAvgMu, loserAvgMu float64) float64 {
	diff := math.Abs(winnerAvgMu - loserAvgMu)
	if diff <= balanceThreshold {
		return 1.0
	}

	var factor float64
	if winnerAvgMu < loserAvgMu {
		// Upset: the weaker side won.
		factor = upsetBase + math.Min(upsetBonusCap, diff/upsetBonusScale)
	} else {
		factor = expectedBase - math.Min(expectedCutCap, diff/expectedCutScale)
	}
	return math.Max(balanceFactorMin, math.Min(balanceFactorMax, factor))
}

// CarryAdjustment rewards players who outperform their own side and penalizes
// those carried by it. diff is the player's side-relative performance score
// minus their teammates' average; deviations inside the threshold are noise
// and yield zero. Outperforming cushions a loss far more than it pads a win;
// underperforming bites hardest on a win.
func CarryAdjustment(diff float64, won bool) float64 {
	switch {
	case diff > carryThreshold:
		if won {
			return math.Min(8, diff*4)
		}
		return math.Min(18, diff*12)
	case diff < -carryThreshold:
		if won {
			return math.Max(-12, diff*8)
		}
		return math.Max(-10, diff*6)
	default:
		return 0
	}
}

// Delta combines the adjustment terms into the final bounded integer MMR
// delta. Winners land in [2, 40], losers in [-40, -2]. A non-finite
// combination short-circuits to zero, which callers treat as "leave MMR
// unchanged".
func Delta(base, perf, carry, balance float64, won bool) int {
	combined := (base + perf + carry) * balance
	if math.IsNaN(combined) || math.IsInf(combined, 0) {
		return 0
	}
	d := int(math.Round(combined))
	if won {
		return clampInt(d, winDeltaMin, winDeltaMax)
	}
	return clampInt(d, lossDeltaMin, lossDeltaMax)
}

// PlacementMMR computes the absolute starting MMR for a player's first-ever
// match: a mid-ladder baseline shifted by the rating mean, a performance
// bonus, and a penalty for residual uncertainty. Never negative.
func PlacementMMR(r skill.Rating, score float64) int {
	r, _ = skill.Normalize(r)
	placement := placementBase +
		(r.Mu-skill.DefaultMu)*placementMuWeight +
		(score-1.0)*placementPerfWeight -
		(r.Sigma-skill.DefaultSigma)*placementSigmaWeight
	return int(math.Max(0, math.Round(placement)))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
