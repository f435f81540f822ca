// Package ratings holds the current rating of every competitor that has
// played at least once.
package ratings

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goserg/ratingengine/internal/domain"
	"github.com/goserg/ratingengine/internal/elo"
)

type Store struct {
	mu      sync.RWMutex
	ratings map[string]float64
}

func New() *Store {
	return &Store{
		ratings: make(map[string]float64),
	}
}

// FromMap builds a store holding a copy of ratings.
func FromMap(ratings map[string]float64) *Store {
	s := New()
	s.Replace(ratings)
	return s
}

// Rating returns the stored rating, or elo.DefaultRating for a name that has
// never played. Unknown names are not added.
func (s *Store) Rating(name string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.rating(name)
}

func (s *Store) rating(name string) float64 {
	r, ok := s.ratings[name]
	if !ok {
		return elo.DefaultRating
	}
	return r
}

func (s *Store) RecordResult(winner, loser string) error {
	if winner == "" || loser == "" {
		return fmt.Errorf("%w: both competitors must be named", domain.ErrInvalidMatch)
	}
	if winner == loser {
		return fmt.Errorf("%w: %q cannot play against themselves", domain.ErrInvalidMatch, winner)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ratings[winner], s.ratings[loser] = elo.ApplyResult(s.rating(winner), s.rating(loser))
	return nil
}

// Snapshot returns the ranking table: rating descending, then name ascending.
// Equal ratings share a rank.
func (s *Store) Snapshot() []domain.Standing {
	s.mu.RLock()
	standings := make([]domain.Standing, 0, len(s.ratings))
	for name, rating := range s.ratings {
		standings = append(standings, domain.Standing{Name: name, Rating: rating})
	}
	s.mu.RUnlock()

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Rating != standings[j].Rating {
			return standings[i].Rating > standings[j].Rating
		}
		return standings[i].Name < standings[j].Name
	})
	for i := range standings {
		if i > 0 && standings[i].Rating == standings[i-1].Rating {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}
	return standings
}

// Ratings returns a copy of the current state.
func (s *Store) Ratings() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := make(map[string]float64, len(s.ratings))
	for name, r := range s.ratings {
		m[name] = r
	}
	return m
}

// Replace discards the current state and takes a copy of ratings.
func (s *Store) Replace(ratings map[string]float64) {
	m := make(map[string]float64, len(ratings))
	for name, r := range ratings {
		m[name] = r
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ratings = m
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.ratings)
}
