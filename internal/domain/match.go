package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/goserg/ratingengine/internal/normalize"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = time.DateOnly

var (
	ErrInvalidMatch      = errors.New("invalid match")
	ErrStorage           = errors.New("storage error")
	ErrBackdated         = errors.New("match is dated before the latest recorded match")
	ErrUnknownCompetitor = errors.New("unknown competitor")
)

type Match struct {
	Date        time.Time
	CompetitorA string
	CompetitorB string
	Winner      string
}

// NewMatch normalizes names and truncates the date to a calendar day.
func NewMatch(date time.Time, competitorA, competitorB, winner string) Match {
	return Match{
		Date:        Day(date),
		CompetitorA: normalize.Name(competitorA),
		CompetitorB: normalize.Name(competitorB),
		Winner:      normalize.Name(winner),
	}
}

// Day returns t as a calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func (m Match) Loser() string {
	if m.Winner == m.CompetitorA {
		return m.CompetitorB
	}
	return m.CompetitorA
}

// Validate reports every problem with the match at once. A name that is
// blank after normalization counts as missing.
func (m Match) Validate() error {
	var err error
	if normalize.Name(m.CompetitorA) == "" || normalize.Name(m.CompetitorB) == "" {
		err = errors.Join(err, fmt.Errorf("%w: both competitors must be named", ErrInvalidMatch))
	}
	if m.CompetitorA != "" && m.CompetitorA == m.CompetitorB {
		err = errors.Join(err, fmt.Errorf("%w: %q cannot play against themselves", ErrInvalidMatch, m.CompetitorA))
	}
	if normalize.Name(m.Winner) == "" || (m.Winner != m.CompetitorA && m.Winner != m.CompetitorB) {
		err = errors.Join(err, fmt.Errorf("%w: winner %q is not one of the competitors", ErrInvalidMatch, m.Winner))
	}
	if m.Date.IsZero() {
		err = errors.Join(err, fmt.Errorf("%w: missing date", ErrInvalidMatch))
	}
	return err
}

func (m Match) String() string {
	return fmt.Sprintf("%s: %s beat %s", m.Date.Format(DateLayout), m.Winner, m.Loser())
}
