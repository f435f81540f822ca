// Package matchlog keeps the append-only record of submitted matches.
package matchlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/goserg/ratingengine/internal/domain"
)

type Log struct {
	mu      sync.RWMutex
	matches []domain.Match
	latest  time.Time
}

func New() *Log {
	return &Log{}
}

// FromMatches rebuilds a log from stored matches, rejecting the whole set if
// any record is invalid.
func FromMatches(matches []domain.Match) (*Log, error) {
	l := New()
	for i := range matches {
		if err := l.Append(matches[i]); err != nil {
			return nil, fmt.Errorf("match #%d: %w", i, err)
		}
	}
	return l, nil
}

func (l *Log) Append(match domain.Match) error {
	if err := match.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.matches = append(l.matches, match)
	if match.Date.After(l.latest) {
		l.latest = match.Date
	}
	return nil
}

// All returns the matches in insertion order.
func (l *Log) All() []domain.Match {
	l.mu.RLock()
	defer l.mu.RUnlock()

	matches := make([]domain.Match, len(l.matches))
	copy(matches, l.matches)
	return matches
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.matches)
}

// Latest returns the latest match date seen so far.
func (l *Log) Latest() (time.Time, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.latest, len(l.matches) > 0
}

// Truncate drops every match after the first n. It only exists to undo an
// append whose persistence failed.
func (l *Log) Truncate(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n < 0 || n >= len(l.matches) {
		return
	}
	l.matches = l.matches[:n:n]
	l.latest = time.Time{}
	for i := range l.matches {
		if l.matches[i].Date.After(l.latest) {
			l.latest = l.matches[i].Date
		}
	}
}
