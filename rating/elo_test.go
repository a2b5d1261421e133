package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Run("equal ratings move by half the K-factor on a win", func(t *testing.T) {
		assert.Equal(t, 1016, Calculate(1000, 1000, ScoreWin))
		assert.Equal(t, 984, Calculate(1000, 1000, ScoreLoss))
	})

	t.Run("equal ratings are unchanged by a tie", func(t *testing.T) {
		for _, r := range []int{800, 1000, 1200, 1500} {
			assert.Equal(t, r, Calculate(r, float64(r), ScoreTie))
		}
	})

	t.Run("underdog win pays more than favourite win", func(t *testing.T) {
		// 1/(1+10^0.5) ~= 0.24 expected, delta = round(32*0.76) = 24.
		assert.Equal(t, 1024, Calculate(1000, 1200, ScoreWin))
		// Favourite beating the same opponent gains only 8.
		assert.Equal(t, 1208, Calculate(1200, 1000, ScoreWin))
	})

	t.Run("delta is capped by the K-factor", func(t *testing.T) {
		assert.Equal(t, 1032, Calculate(1000, 3000, ScoreWin))
		assert.Equal(t, 968, Calculate(1000, -1000, ScoreLoss))
	})

	t.Run("no floor on the resulting rating", func(t *testing.T) {
		assert.Less(t, Calculate(10, 800, ScoreLoss), 0)
	})

	t.Run("zero sum within rounding tolerance", func(t *testing.T) {
		cases := []struct {
			r1, r2 int
			score  float64
		}{
			{1000, 1000, ScoreWin},
			{1000, 1200, ScoreWin},
			{1200, 1000, ScoreLoss},
			{1450, 980, ScoreTie},
			{987, 1013, ScoreWin},
			{1, 2999, ScoreLoss},
		}
		for _, tc := range cases {
			sumBefore := tc.r1 + tc.r2
			sumAfter := Calculate(tc.r1, float64(tc.r2), tc.score) +
				Calculate(tc.r2, float64(tc.r1), 1-tc.score)
			// Both deltas round independently, so the pool may drift
			// by at most one point per match.
			assert.InDelta(t, sumBefore, sumAfter, 1,
				"ratings %d vs %d, score %v", tc.r1, tc.r2, tc.score)
		}
	})
}

func TestExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1000, 1000), 1e-9)
	assert.InDelta(t, 0.2402530734, ExpectedScore(1000, 1200), 1e-9)

	// Perspectives of the two sides always sum to 1.
	sum := ExpectedScore(1000, 1200) + ExpectedScore(1200, 1000)
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestTeamAverage(t *testing.T) {
	assert.Equal(t, 1100.0, TeamAverage(1000, 1200))
	// Odd sums land on .5 instead of truncating.
	assert.Equal(t, 1000.5, TeamAverage(1000, 1001))
}
