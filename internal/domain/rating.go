package domain

import "time"

// Standing is one row of the ranking table.
type Standing struct {
	Rank   int
	Name   string
	Rating float64
}

// TrajectoryPoint is a competitor's rating right after one replayed match.
type TrajectoryPoint struct {
	Seq        int
	Date       time.Time
	Competitor string
	Opponent   string
	Won        bool
	Rating     float64
	Change     float64
}

type Record struct {
	Wins   int
	Losses int
}

func (r Record) Games() int {
	return r.Wins + r.Losses
}
