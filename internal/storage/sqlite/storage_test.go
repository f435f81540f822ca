package sqlite

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/goserg/ratingengine/internal/domain"
	"github.com/goserg/ratingengine/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &StorageSuite{})
}

func (s *StorageSuite) SetupTest() {
	l := logrus.New()
	l.SetOutput(io.Discard)
	st, err := New(l, filepath.Join(s.T().TempDir(), "rating.sqlite"))
	s.Require().NoError(err)
	s.storage = st
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	s.Require().NoError(s.storage.Close())
}

func (s *StorageSuite) state() storage.State {
	return storage.State{
		Ratings: map[string]float64{"Alice": 1516, "Bob": 1500.7363067935, "Carol": 1483.2636932065},
		Matches: []domain.Match{
			{Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), CompetitorA: "Alice", CompetitorB: "Bob", Winner: "Alice"},
			{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), CompetitorA: "Bob", CompetitorB: "Carol", Winner: "Bob"},
		},
	}
}

func (s *StorageSuite) TestLoadEmpty() {
	got, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.True(got.Empty())
}

func (s *StorageSuite) TestSaveLoad() {
	s.Require().NoError(s.storage.Save(s.ctx, s.state()))
	got, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(s.state(), got, "insertion order must survive")
}

func (s *StorageSuite) TestSaveReplaces() {
	s.Require().NoError(s.storage.Save(s.ctx, s.state()))
	next := storage.State{
		Ratings: map[string]float64{"Dave": 1516, "Eve": 1484},
		Matches: []domain.Match{
			{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), CompetitorA: "Dave", CompetitorB: "Eve", Winner: "Dave"},
		},
	}
	s.Require().NoError(s.storage.Save(s.ctx, next))
	got, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(next, got)
}

func (s *StorageSuite) TestClear() {
	s.Require().NoError(s.storage.Clear(s.ctx))
	s.Require().NoError(s.storage.Save(s.ctx, s.state()))
	s.Require().NoError(s.storage.Clear(s.ctx))
	s.Require().NoError(s.storage.Clear(s.ctx))
	got, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.True(got.Empty())
}

func (s *StorageSuite) TestLoadCorrupt() {
	_, err := s.storage.db.Exec(`INSERT INTO matches (seq, date, competitor_a, competitor_b, winner) VALUES (0, 'soon', 'A', 'B', 'A')`)
	s.Require().NoError(err)
	_, err = s.storage.Load(s.ctx)
	s.ErrorIs(err, domain.ErrStorage)
}

func (s *StorageSuite) TestSaveLoadLargeLog() {
	const n = 7500
	state := storage.State{
		Ratings: make(map[string]float64, n),
		Matches: make([]domain.Match, 0, n),
	}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		a, b := fmt.Sprintf("player-%d", i), fmt.Sprintf("player-%d", i+1)
		state.Matches = append(state.Matches, domain.Match{
			Date:        start.AddDate(0, 0, i/10),
			CompetitorA: a,
			CompetitorB: b,
			Winner:      a,
		})
		state.Ratings[a] = 1500 + float64(i%32)
	}
	s.Require().NoError(s.storage.Save(s.ctx, state))

	got, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Len(got.Matches, n)
	s.Equal(state.Matches[0], got.Matches[0])
	s.Equal(state.Matches[n-1], got.Matches[n-1])
	s.Equal(state.Ratings, got.Ratings)

	state.Matches = append(state.Matches, domain.Match{
		Date: start.AddDate(0, 0, n), CompetitorA: "player-0", CompetitorB: "player-1", Winner: "player-1",
	})
	s.Require().NoError(s.storage.Save(s.ctx, state), "a grown log must still save")
}
