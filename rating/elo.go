// Package rating implements the club's pure rating engine: the ELO
// update formula, match outcome resolution and round-robin standings
// aggregation. Nothing in this package touches the database or the
// network, so every function is deterministic and directly testable.
package rating

import "math"

// KFactor is the maximum possible rating swing per match.
const KFactor = 32

// Match scores fed into Calculate. A tie is only reachable from
// tournament group play; ladder matches are validated to be decisive.
const (
	ScoreWin  = 1.0
	ScoreTie  = 0.5
	ScoreLoss = 0.0
)

// ExpectedScore returns the probability of the rated player beating the
// opponent under the logistic ELO model. The opponent side is a float
// because doubles play rates each player against the opposing team's
// average, which lands on .5 for odd sums.
func ExpectedScore(rating int, opponent float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponent-float64(rating))/400.0))
}

// Calculate returns the player's new rating after a match with the given
// actual score (ScoreWin, ScoreTie or ScoreLoss).
//
// The delta is rounded half away from zero (math.Round); this is pinned
// deliberately so exact .5 deltas do not depend on a platform default.
// The result is not clamped and may go negative for extreme mismatches.
func Calculate(rating int, opponent, actual float64) int {
	delta := KFactor * (actual - ExpectedScore(rating, opponent))
	return rating + int(math.Round(delta))
}

// TeamAverage is the effective rating of a doubles team: the plain
// arithmetic mean of both partners' doubles ratings.
func TeamAverage(a, b int) float64 {
	return float64(a+b) / 2.0
}
