package elo

import "math"

const (
	// K is shared by incremental updates and replay. Changing it for one
	// and not the other breaks replay consistency.
	K = 32
	// DefaultRating is the rating of a competitor who has not played yet.
	DefaultRating = 1500.0

	deviation = 400.0
)

// ExpectedScore is the probability that a player rated self beats a player
// rated opponent.
func ExpectedScore(self, opponent float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponent-self)/deviation))
}

// Calculate new ratings after winner beat loser.
// Ea - winner expectation, Eb = 1 - Ea.
// Winner gains k*(1-Ea), loser gains k*(0-Eb); both are the same delta, so
// the sum of the two ratings does not change.
func Calculate(winner, loser, k float64) (float64, float64) {
	eWin := ExpectedScore(winner, loser)
	eLose := 1 - eWin
	delta := k * eLose
	return winner + delta, loser - delta
}

// ApplyResult is Calculate with the shared K.
func ApplyResult(winner, loser float64) (float64, float64) {
	return Calculate(winner, loser, K)
}
