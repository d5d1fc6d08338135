package mmr_test

import (
	"math"
	"testing"

	mmr "github.com/openfrag/agmmr/internal/domain/mmr"
	"github.com/openfrag/agmmr/internal/domain/skill"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBaseChange(t *testing.T) {
	Convey("Given pre- and post-match ratings", t, func() {
		Convey("When the mean rises and uncertainty shrinks", func() {
			old := skill.Rating{Mu: 25, Sigma: 8}
			updated := skill.Rating{Mu: 26, Sigma: 7.5}

			Convey("Then both movements convert to points", func() {
				So(mmr.BaseChange(old, updated), ShouldEqual, 5.75)
			})
		})

		Convey("When the mean falls", func() {
			old := skill.Rating{Mu: 25, Sigma: 8}
			updated := skill.Rating{Mu: 24, Sigma: 8}

			Convey("Then the base change is negative", func() {
				So(mmr.BaseChange(old, updated), ShouldEqual, -5.0)
			})
		})

		Convey("When uncertainty somehow grew", func() {
			old := skill.Rating{Mu: 25, Sigma: 7}
			updated := skill.Rating{Mu: 25, Sigma: 8}

			Convey("Then the sigma term never goes negative", func() {
				So(mmr.BaseChange(old, updated), ShouldEqual, 0.0)
			})
		})

		Convey("When a rating is non-finite", func() {
			old := skill.Rating{Mu: math.NaN(), Sigma: 8}
			updated := skill.Rating{Mu: 26, Sigma: 8}

			Convey("Then the base change is zero", func() {
				So(mmr.BaseChange(old, updated), ShouldEqual, 0.0)
			})
		})
	})
}

func TestPerformanceAdjustment(t *testing.T) {
	Convey("Given a performance score", t, func() {
		Convey("When an average player wins on a team of five", func() {
			Convey("Then the adjustment is the plain base magnitude", func() {
				So(mmr.PerformanceAdjustment(1.0, true, 5), ShouldEqual, 12.0)
			})
		})

		Convey("When an average player loses on a team of five", func() {
			Convey("Then the adjustment mirrors to the negative base", func() {
				So(mmr.PerformanceAdjustment(1.0, false, 5), ShouldEqual, -12.0)
			})
		})

		Convey("When the team is tiny", func() {
			Convey("Then individual weight grows", func() {
				So(mmr.PerformanceAdjustment(1.0, true, 1), ShouldEqual, 20.0)
			})
		})

		Convey("When the team is huge", func() {
			Convey("Then the base bottoms out at the floor", func() {
				So(mmr.PerformanceAdjustment(1.0, true, 10), ShouldEqual, 8.0)
			})
		})

		Convey("When a standout wins", func() {
			adj := mmr.PerformanceAdjustment(2.5, true, 5)

			Convey("Then the deviation cap limits the bonus", func() {
				So(adj, ShouldBeGreaterThan, 12.0)
				So(adj, ShouldBeLessThanOrEqualTo, 12.0*1.175)
			})
		})

		Convey("When a standout loses", func() {
			adj := mmr.PerformanceAdjustment(2.5, false, 5)

			Convey("Then the loss softens but stays at most -4", func() {
				So(adj, ShouldBeGreaterThan, -12.0)
				So(adj, ShouldBeLessThanOrEqualTo, -4.0)
			})
		})

		Convey("When a passenger wins", func() {
			adj := mmr.PerformanceAdjustment(0.2, true, 5)

			Convey("Then the win still nets at least +4", func() {
				So(adj, ShouldBeLessThan, 12.0)
				So(adj, ShouldBeGreaterThanOrEqualTo, 4.0)
			})
		})
	})
}

func TestBalanceFactor(t *testing.T) {
	Convey("Given the average skill of both sides", t, func() {
		Convey("When the sides are evenly matched", func() {
			Convey("Then the factor is neutral", func() {
				So(mmr.BalanceFactor(25, 25), ShouldEqual, 1.0)
				So(mmr.BalanceFactor(26.5, 24.0), ShouldEqual, 1.0)
				So(mmr.BalanceFactor(22, 25), ShouldEqual, 1.0)
			})
		})

		Convey("When the weaker side wins", func() {
			Convey("Then the upset amplifies movement", func() {
				So(mmr.BalanceFactor(20, 30), ShouldEqual, 1.7)
			})

			Convey("Then a massive upset caps at the bonus ceiling", func() {
				So(mmr.BalanceFactor(10, 35), ShouldEqual, 1.7)
			})
		})

		Convey("When the stronger side wins", func() {
			Convey("Then the expected outcome dampens movement", func() {
				So(mmr.BalanceFactor(30, 26), ShouldEqual, 0.6)
				So(mmr.BalanceFactor(35, 10), ShouldEqual, 0.6)
			})
		})
	})
}

func TestCarryAdjustment(t *testing.T) {
	Convey("Given a side-relative performance difference", t, func() {
		Convey("When the difference is within the noise band", func() {
			Convey("Then no carry adjustment applies", func() {
				So(mmr.CarryAdjustment(0, true), ShouldEqual, 0.0)
				So(mmr.CarryAdjustment(0.4, true), ShouldEqual, 0.0)
				So(mmr.CarryAdjustment(-0.4, false), ShouldEqual, 0.0)
			})
		})

		Convey("When the player carried the side", func() {
			Convey("Then a win pads modestly", func() {
				So(mmr.CarryAdjustment(0.5, true), ShouldEqual, 2.0)
				So(mmr.CarryAdjustment(3, true), ShouldEqual, 8.0)
			})

			Convey("Then a loss is cushioned much harder", func() {
				So(mmr.CarryAdjustment(0.5, false), ShouldEqual, 6.0)
				So(mmr.CarryAdjustment(3, false), ShouldEqual, 18.0)
			})
		})

		Convey("When the player was carried", func() {
			Convey("Then a win bites hardest", func() {
				So(mmr.CarryAdjustment(-0.5, true), ShouldEqual, -4.0)
				So(mmr.CarryAdjustment(-3, true), ShouldEqual, -12.0)
			})

			Convey("Then a loss adds a smaller penalty", func() {
				So(mmr.CarryAdjustment(-0.5, false), ShouldEqual, -3.0)
				So(mmr.CarryAdjustment(-3, false), ShouldEqual, -10.0)
			})
		})
	})
}

func TestDelta(t *testing.T) {
	Convey("Given the combined adjustment terms", t, func() {
		Convey("When a winner's terms sum inside the band", func() {
			Convey("Then the rounded sum passes through", func() {
				So(mmr.Delta(10, 12, 0, 1.0, true), ShouldEqual, 22)
				So(mmr.Delta(10, 12, 0, 0.5, true), ShouldEqual, 11)
			})
		})

		Convey("When a winner's terms sum below the floor", func() {
			Convey("Then the winner still gains at least 2", func() {
				So(mmr.Delta(-30, 4, 0, 1.0, true), ShouldEqual, 2)
			})
		})

		Convey("When a winner's terms overflow the ceiling", func() {
			Convey("Then the gain caps at 40", func() {
				So(mmr.Delta(80, 14, 8, 1.8, true), ShouldEqual, 40)
			})
		})

		Convey("When a loser's terms sum above the ceiling", func() {
			Convey("Then the loser still drops at least 2", func() {
				So(mmr.Delta(20, -4, 0, 1.0, false), ShouldEqual, -2)
			})
		})

		Convey("When a loser's terms overflow the floor", func() {
			Convey("Then the drop caps at -40", func() {
				So(mmr.Delta(-80, -14, -10, 1.8, false), ShouldEqual, -40)
			})
		})

		Convey("When the combination is not finite", func() {
			Convey("Then the delta is zero", func() {
				So(mmr.Delta(math.NaN(), 12, 0, 1.0, true), ShouldEqual, 0)
				So(mmr.Delta(math.Inf(1), 12, 0, 1.0, false), ShouldEqual, 0)
			})
		})
	})
}

func TestPlacementMMR(t *testing.T) {
	Convey("Given a first-match rating and performance score", t, func() {
		Convey("When the player is exactly average", func() {
			Convey("Then placement lands on the mid-ladder baseline", func() {
				So(mmr.PlacementMMR(skill.Default(), 1.0), ShouldEqual, 1000)
			})
		})

		Convey("When the rating mean is above the prior", func() {
			Convey("Then placement rises with it", func() {
				So(mmr.PlacementMMR(skill.Rating{Mu: 30, Sigma: 8.333}, 1.0), ShouldEqual, 1200)
			})
		})

		Convey("When the performance score is strong", func() {
			Convey("Then the performance bonus applies", func() {
				So(mmr.PlacementMMR(skill.Default(), 2.0), ShouldEqual, 1200)
			})
		})

		Convey("When residual uncertainty is high", func() {
			Convey("Then placement is penalized", func() {
				got := mmr.PlacementMMR(skill.Rating{Mu: 25, Sigma: 10}, 1.0)
				So(got, ShouldBeLessThan, 1000)
			})
		})

		Convey("When the inputs are catastrophically bad", func() {
			Convey("Then placement never goes negative", func() {
				So(mmr.PlacementMMR(skill.Rating{Mu: 0, Sigma: 8.333}, 0.2), ShouldBeGreaterThanOrEqualTo, 0)
			})
		})

		Convey("When the rating is corrupted", func() {
			Convey("Then the defaults stand in", func() {
				So(mmr.PlacementMMR(skill.Rating{Mu: math.NaN(), Sigma: 8.333}, 1.0), ShouldEqual, 1000)
			})
		})
	})
}
