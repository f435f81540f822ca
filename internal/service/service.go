// Package service owns the rating state of one ranking: the RatingStore, the
// MatchLog and their durable copy. All mutations go through a single writer
// lock; reads work on copies.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goserg/ratingengine/internal/domain"
	"github.com/goserg/ratingengine/internal/matchlog"
	"github.com/goserg/ratingengine/internal/metrics"
	"github.com/goserg/ratingengine/internal/normalize"
	"github.com/goserg/ratingengine/internal/ratings"
	"github.com/goserg/ratingengine/internal/replay"
	"github.com/goserg/ratingengine/internal/storage"

	"github.com/sirupsen/logrus"
)

const defaultDriftTolerance = 1e-9

type Engine struct {
	mu      sync.RWMutex
	store   *ratings.Store
	matches *matchlog.Log
	storage storage.Storage

	rejectBackdated bool
	tolerance       float64

	metrics *metrics.Metrics
	log     *logrus.Entry
}

type Option func(*Engine)

// WithRejectBackdated refuses matches dated before the latest recorded one
// instead of accepting and flagging them.
func WithRejectBackdated(reject bool) Option {
	return func(e *Engine) {
		e.rejectBackdated = reject
	}
}

func WithDriftTolerance(tolerance float64) Option {
	return func(e *Engine) {
		if tolerance > 0 {
			e.tolerance = tolerance
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// New returns an empty engine. Call Load to pick up the durable state.
func New(st storage.Storage, l *logrus.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     ratings.New(),
		matches:   matchlog.New(),
		storage:   st,
		tolerance: defaultDriftTolerance,
		log: l.WithFields(map[string]interface{}{
			"from": "engine",
		}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.New()
	}
	return e
}

func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// Load replaces the in-memory state with the durable one. Ratings are
// re-derived from the match log; a stored ratings record that disagrees is
// reported as drift and ignored.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.storage.Load(ctx)
	if err != nil {
		return err
	}
	if state.Empty() {
		e.log.Info("no stored state, starting empty")
	}
	log, err := matchlog.FromMatches(state.Matches)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	res := e.replay(state.Matches)
	e.reportDrift("load", replay.Compare(res.Ratings, state.Ratings, e.tolerance))

	e.matches = log
	e.store.Replace(res.Ratings)
	e.metrics.SetSize(e.store.Len(), e.matches.Len())
	e.log.WithFields(logrus.Fields{
		"matches":     e.matches.Len(),
		"competitors": e.store.Len(),
	}).Info("state loaded")
	return nil
}

type RatingChange struct {
	Name   string
	Before float64
	After  float64
}

type Submission struct {
	Match domain.Match
	// Backdated is set when the match is dated before the latest recorded
	// match. Its effect lands in the past, so later ratings were recomputed.
	Backdated bool
	Winner    RatingChange
	Loser     RatingChange
}

// Submit validates the match, appends it to the log, updates the ratings and
// persists both. If any step fails the state is left as it was. Names are
// normalized and the date truncated to its day before anything else.
func (e *Engine) Submit(ctx context.Context, match domain.Match) (Submission, error) {
	match = domain.NewMatch(match.Date, match.CompetitorA, match.CompetitorB, match.Winner)
	if err := match.Validate(); err != nil {
		e.metrics.MatchRejected(metrics.ReasonInvalid)
		return Submission{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	latest, ok := e.matches.Latest()
	backdated := ok && match.Date.Before(latest)
	if backdated && e.rejectBackdated {
		e.metrics.MatchRejected(metrics.ReasonBackdated)
		return Submission{}, fmt.Errorf("%w: %s, latest is %s", domain.ErrBackdated,
			match.Date.Format(domain.DateLayout), latest.Format(domain.DateLayout))
	}

	winner, loser := match.Winner, match.Loser()
	prevRatings := e.store.Ratings()
	prevLen := e.matches.Len()
	sub := Submission{
		Match:     match,
		Backdated: backdated,
		Winner:    RatingChange{Name: winner, Before: e.store.Rating(winner)},
		Loser:     RatingChange{Name: loser, Before: e.store.Rating(loser)},
	}

	if err := e.matches.Append(match); err != nil {
		e.metrics.MatchRejected(metrics.ReasonInvalid)
		return Submission{}, err
	}
	if !backdated {
		if err := e.store.RecordResult(winner, loser); err != nil {
			e.matches.Truncate(prevLen)
			e.metrics.MatchRejected(metrics.ReasonInvalid)
			return Submission{}, err
		}
	}

	all := e.matches.All()
	res := e.replay(all)
	if !backdated {
		e.reportDrift("submit", replay.Compare(res.Ratings, e.store.Ratings(), e.tolerance))
	}
	e.store.Replace(res.Ratings)

	err := e.storage.Save(ctx, storage.State{Ratings: res.Ratings, Matches: all})
	if err != nil {
		e.matches.Truncate(prevLen)
		e.store.Replace(prevRatings)
		e.metrics.MatchRejected(metrics.ReasonStorage)
		e.log.WithError(err).Error("match not saved, state rolled back")
		return Submission{}, err
	}

	sub.Winner.After = e.store.Rating(winner)
	sub.Loser.After = e.store.Rating(loser)
	e.metrics.MatchSubmitted(backdated)
	e.metrics.SetSize(e.store.Len(), e.matches.Len())

	entry := e.log.WithFields(logrus.Fields{
		"date":   match.Date.Format(domain.DateLayout),
		"winner": winner,
		"loser":  loser,
	})
	if backdated {
		entry.WithField("latest", latest.Format(domain.DateLayout)).
			Warn("back-dated match accepted, ratings recomputed from the log")
	} else {
		entry.Debug("match recorded")
	}
	return sub, nil
}

// Reset removes the durable records and empties the in-memory state. The
// in-memory state is kept if the storage cannot be cleared.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.storage.Clear(ctx); err != nil {
		return err
	}
	e.store.Replace(nil)
	e.matches = matchlog.New()
	e.metrics.Cleared()
	e.metrics.SetSize(0, 0)
	e.log.Info("ratings and match log cleared")
	return nil
}

func (e *Engine) Rating(name string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.store.Rating(normalize.Name(name))
}

func (e *Engine) Snapshot() []domain.Standing {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.store.Snapshot()
}

// Matches returns the log in insertion order.
func (e *Engine) Matches() []domain.Match {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.matches.All()
}

// Trajectory replays a copy of the log. It never touches the RatingStore.
func (e *Engine) Trajectory() []domain.TrajectoryPoint {
	res := e.replay(e.Matches())
	return res.Trajectory
}

type CompetitorCard struct {
	Standing   domain.Standing
	Record     domain.Record
	Trajectory []domain.TrajectoryPoint
}

func (e *Engine) Competitor(name string) (CompetitorCard, error) {
	name = normalize.Name(name)
	e.mu.RLock()
	all := e.matches.All()
	snapshot := e.store.Snapshot()
	e.mu.RUnlock()

	var (
		standing domain.Standing
		found    bool
	)
	for i := range snapshot {
		if snapshot[i].Name == name {
			standing, found = snapshot[i], true
			break
		}
	}
	if !found {
		return CompetitorCard{}, fmt.Errorf("%w: %q", domain.ErrUnknownCompetitor, name)
	}
	res := e.replay(all)
	return CompetitorCard{
		Standing:   standing,
		Record:     res.Records[name],
		Trajectory: res.Of(name),
	}, nil
}

// Verify replays the log and compares the result with the RatingStore. Any
// difference is logged as drift; it points at an ordering or K mismatch.
func (e *Engine) Verify() []replay.Drift {
	e.mu.RLock()
	all := e.matches.All()
	stored := e.store.Ratings()
	e.mu.RUnlock()

	drifts := replay.Compare(e.replay(all).Ratings, stored, e.tolerance)
	e.reportDrift("verify", drifts)
	return drifts
}

func (e *Engine) replay(matches []domain.Match) replay.Result {
	start := time.Now()
	res := replay.Replay(matches)
	e.metrics.ObserveReplay(time.Since(start))
	return res
}

func (e *Engine) reportDrift(stage string, drifts []replay.Drift) {
	if len(drifts) == 0 {
		return
	}
	e.metrics.Drift(len(drifts))
	for _, d := range drifts {
		e.log.WithFields(logrus.Fields{
			"stage":      stage,
			"competitor": d.Competitor,
			"replayed":   d.Replayed,
			"stored":     d.Stored,
			"delta":      d.Delta(),
		}).Warn("rating drift between store and replay")
	}
}

func (e *Engine) Close() error {
	return e.storage.Close()
}
