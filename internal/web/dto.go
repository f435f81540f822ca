package web

import (
	"errors"
	"time"

	"github.com/goserg/ratingengine/internal/domain"
	"github.com/goserg/ratingengine/internal/normalize"
	"github.com/goserg/ratingengine/internal/replay"
	"github.com/goserg/ratingengine/internal/service"
)

type createMatch struct {
	Date        string `json:"date"`
	CompetitorA string `json:"competitor_a"`
	CompetitorB string `json:"competitor_b"`
	Winner      string `json:"winner"`
}

var (
	ErrMissingCompetitor = errors.New("both competitors must be present")
	ErrMissingWinner     = errors.New("winner must be present")
	ErrWrongWinner       = errors.New("winner must be one of the competitors")
)

func (c createMatch) Validate() error {
	var err error
	a, b, w := normalize.Name(c.CompetitorA), normalize.Name(c.CompetitorB), normalize.Name(c.Winner)
	if a == "" || b == "" {
		err = errors.Join(err, ErrMissingCompetitor)
	}
	if w == "" {
		err = errors.Join(err, ErrMissingWinner)
	} else if w != a && w != b {
		err = errors.Join(err, ErrWrongWinner)
	}
	if c.Date != "" {
		if _, perr := domain.ParseDate(c.Date); perr != nil {
			err = errors.Join(err, perr)
		}
	}
	return err
}

// convertToDomainMatch dates the match today when no date was sent.
func (c createMatch) convertToDomainMatch(now time.Time) domain.Match {
	date := now
	if c.Date != "" {
		date, _ = domain.ParseDate(c.Date)
	}
	return domain.NewMatch(date, c.CompetitorA, c.CompetitorB, c.Winner)
}

type matchView struct {
	Date        string `json:"date"`
	CompetitorA string `json:"competitor_a"`
	CompetitorB string `json:"competitor_b"`
	Winner      string `json:"winner"`
}

func newMatchView(m domain.Match) matchView {
	return matchView{
		Date:        m.Date.Format(domain.DateLayout),
		CompetitorA: m.CompetitorA,
		CompetitorB: m.CompetitorB,
		Winner:      m.Winner,
	}
}

func newMatchViews(matches []domain.Match) []matchView {
	views := make([]matchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, newMatchView(m))
	}
	return views
}

type standingView struct {
	Rank   int     `json:"rank"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

func newStandingViews(standings []domain.Standing) []standingView {
	views := make([]standingView, 0, len(standings))
	for _, s := range standings {
		views = append(views, standingView(s))
	}
	return views
}

type pointView struct {
	Seq        int     `json:"seq"`
	Date       string  `json:"date"`
	Competitor string  `json:"competitor"`
	Opponent   string  `json:"opponent"`
	Won        bool    `json:"won"`
	Rating     float64 `json:"rating"`
	Change     float64 `json:"change"`
}

func newPointViews(points []domain.TrajectoryPoint) []pointView {
	views := make([]pointView, 0, len(points))
	for _, p := range points {
		views = append(views, pointView{
			Seq:        p.Seq,
			Date:       p.Date.Format(domain.DateLayout),
			Competitor: p.Competitor,
			Opponent:   p.Opponent,
			Won:        p.Won,
			Rating:     p.Rating,
			Change:     p.Change,
		})
	}
	return views
}

type changeView struct {
	Name   string  `json:"name"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

type submissionView struct {
	Match     matchView  `json:"match"`
	Backdated bool       `json:"backdated"`
	Winner    changeView `json:"winner"`
	Loser     changeView `json:"loser"`
}

func newSubmissionView(s service.Submission) submissionView {
	return submissionView{
		Match:     newMatchView(s.Match),
		Backdated: s.Backdated,
		Winner:    changeView(s.Winner),
		Loser:     changeView(s.Loser),
	}
}

type cardView struct {
	standingView
	Wins       int         `json:"wins"`
	Losses     int         `json:"losses"`
	Trajectory []pointView `json:"trajectory"`
}

func newCardView(c service.CompetitorCard) cardView {
	return cardView{
		standingView: standingView(c.Standing),
		Wins:         c.Record.Wins,
		Losses:       c.Record.Losses,
		Trajectory:   newPointViews(c.Trajectory),
	}
}

type driftView struct {
	Competitor string  `json:"competitor"`
	Replayed   float64 `json:"replayed"`
	Stored     float64 `json:"stored"`
	Delta      float64 `json:"delta"`
}

type verifyView struct {
	Consistent bool        `json:"consistent"`
	Drift      []driftView `json:"drift"`
}

func newVerifyView(drifts []replay.Drift) verifyView {
	views := make([]driftView, 0, len(drifts))
	for _, d := range drifts {
		views = append(views, driftView{
			Competitor: d.Competitor,
			Replayed:   d.Replayed,
			Stored:     d.Stored,
			Delta:      d.Delta(),
		})
	}
	return verifyView{Consistent: len(drifts) == 0, Drift: views}
}
