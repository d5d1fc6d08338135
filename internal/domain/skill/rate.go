package skill

import "math"

// Update-model constants, named after the conventions of the TrueSkill
// literature:
//   - Beta: per-player performance variance (DefaultMu / 6).
//   - Tau: additive dynamics applied to sigma before each update, keeping
//     ratings from freezing solid over long histories.
const (
	beta = DefaultMu / 6
	tau  = DefaultSigma / 100

	// Below this win probability the truncated-Gaussian correction is taken
	// at its asymptote to avoid dividing by a vanishing CDF.
	cdfEpsilon = 1e-9
)

// RateTeams produces updated ratings for a decided two-team match. The first
// group is the winning side, the second the losing side; both keep their input
// order. Winners' means move up and losers' down, and every participant's
// sigma shrinks in proportion to the information the outcome carried. The
// result is deterministic for identical inputs.
func RateTeams(winners, losers []Rating) ([]Rating, []Rating) {
	// Dynamics: inflate each variance by tau^2 before measuring the outcome.
	winVars := teamVariances(winners)
	loseVars := teamVariances(losers)

	c2 := float64(len(winners)+len(losers)) * beta * beta
	for _, v := range winVars {
		c2 += v
	}
	for _, v := range loseVars {
		c2 += v
	}
	c := math.Sqrt(c2)

	t := (teamMu(winners) - teamMu(losers)) / c
	v := truncGaussMean(t)
	w := truncGaussVar(t, v)

	newWinners := make([]Rating, len(winners))
	for i, r := range winners {
		newWinners[i] = updated(r, winVars[i], c, c2, v, w, +1)
	}
	newLosers := make([]Rating, len(losers))
	for i, r := range losers {
		newLosers[i] = updated(r, loseVars[i], c, c2, v, w, -1)
	}
	return newWinners, newLosers
}

func updated(r Rating, variance, c, c2, v, w, direction float64) Rating {
	mu := r.Mu + direction*(variance/c)*v
	sigma2 := variance * (1 - (variance/c2)*w)
	if sigma2 < 0 {
		sigma2 = 0
	}
	return Rating{Mu: mu, Sigma: math.Sqrt(sigma2)}
}

func teamMu(team []Rating) float64 {
	sum := 0.0
	for _, r := range team {
		sum += r.Mu
	}
	return sum
}

func teamVariances(team []Rating) []float64 {
	vars := make([]float64, len(team))
	for i, r := range team {
		vars[i] = r.Sigma*r.Sigma + tau*tau
	}
	return vars
}

// truncGaussMean is the additive correction v(t) = phi(t) / Phi(t) for a
// Gaussian truncated below at zero (win margin over a draw margin of zero).
func truncGaussMean(t float64) float64 {
	denom := normCDF(t)
	if denom < cdfEpsilon {
		// Asymptote for heavily unexpected outcomes.
		return -t
	}
	return normPDF(t) / denom
}

// truncGaussVar is the multiplicative correction w(t) = v(t) * (v(t) + t),
// always in [0, 1] so variances only shrink.
func truncGaussVar(t, v float64) float64 {
	w := v * (v + t)
	return math.Max(0, math.Min(1, w))
}

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
