package storage

import (
	"context"

	"github.com/goserg/ratingengine/internal/domain"
)

// State is everything that is persisted: the ratings record and the match
// log record.
type State struct {
	Ratings map[string]float64
	Matches []domain.Match
}

func (s State) Empty() bool {
	return len(s.Ratings) == 0 && len(s.Matches) == 0
}

// Storage persists State. Missing records load as an empty State. Save
// replaces both records or neither. Clear is idempotent. Errors wrap
// domain.ErrStorage.
type Storage interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
	Clear(ctx context.Context) error
	Close() error
}
