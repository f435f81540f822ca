// Package replay rebuilds ratings from nothing but the match log.
package replay

import (
	"math"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/goserg/ratingengine/internal/domain"
	"github.com/goserg/ratingengine/internal/elo"
)

type Result struct {
	Ratings    map[string]float64
	Trajectory []domain.TrajectoryPoint
	Records    map[string]domain.Record
}

// Chronological returns a copy of matches sorted by date. Matches on the same
// day keep their insertion order.
func Chronological(matches []domain.Match) []domain.Match {
	sorted := make([]domain.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// Replay applies every match in chronological order to an empty rating map.
// The input is not modified.
func Replay(matches []domain.Match) Result {
	res := Result{
		Ratings:    make(map[string]float64),
		Trajectory: make([]domain.TrajectoryPoint, 0, 2*len(matches)),
		Records:    make(map[string]domain.Record),
	}
	for seq, match := range Chronological(matches) {
		winner, loser := match.Winner, match.Loser()
		before := [2]float64{res.rating(winner), res.rating(loser)}
		after := [2]float64{}
		after[0], after[1] = elo.ApplyResult(before[0], before[1])
		res.Ratings[winner], res.Ratings[loser] = after[0], after[1]

		w := res.Records[winner]
		w.Wins++
		res.Records[winner] = w
		l := res.Records[loser]
		l.Losses++
		res.Records[loser] = l

		res.Trajectory = append(res.Trajectory,
			domain.TrajectoryPoint{
				Seq:        seq,
				Date:       match.Date,
				Competitor: winner,
				Opponent:   loser,
				Won:        true,
				Rating:     after[0],
				Change:     after[0] - before[0],
			},
			domain.TrajectoryPoint{
				Seq:        seq,
				Date:       match.Date,
				Competitor: loser,
				Opponent:   winner,
				Won:        false,
				Rating:     after[1],
				Change:     after[1] - before[1],
			},
		)
	}
	return res
}

func (r *Result) rating(name string) float64 {
	rating, ok := r.Ratings[name]
	if !ok {
		return elo.DefaultRating
	}
	return rating
}

// Of returns the trajectory points of one competitor.
func (r *Result) Of(name string) []domain.TrajectoryPoint {
	var points []domain.TrajectoryPoint
	for i := range r.Trajectory {
		if r.Trajectory[i].Competitor == name {
			points = append(points, r.Trajectory[i])
		}
	}
	return points
}

type Drift struct {
	Competitor string
	Replayed   float64
	Stored     float64
}

func (d Drift) Delta() float64 {
	return d.Stored - d.Replayed
}

// Compare lists competitors whose replayed and stored ratings differ by more
// than tolerance, sorted by name. A competitor missing on one side is taken
// at elo.DefaultRating.
func Compare(replayed, stored map[string]float64, tolerance float64) []Drift {
	names := mapset.NewSet[string]()
	for name := range replayed {
		names.Add(name)
	}
	for name := range stored {
		names.Add(name)
	}
	var drifts []Drift
	names.Each(func(name string) bool {
		r, ok := replayed[name]
		if !ok {
			r = elo.DefaultRating
		}
		s, ok := stored[name]
		if !ok {
			s = elo.DefaultRating
		}
		if math.Abs(r-s) > tolerance || math.IsNaN(r-s) {
			drifts = append(drifts, Drift{Competitor: name, Replayed: r, Stored: s})
		}
		return false
	})
	sort.Slice(drifts, func(i, j int) bool {
		return drifts[i].Competitor < drifts[j].Competitor
	})
	return drifts
}
