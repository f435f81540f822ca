// Package file stores the ratings record and the match log record as two
// files in one directory.
package file

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goserg/ratingengine/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	ratingsName = "elo_ratings"
	matchesName = "match_history"
)

type Storage struct {
	mu      sync.Mutex
	dir     string
	codec   Codec
	ratings string
	matches string
	log     *logrus.Entry
}

var _ storage.Storage = (*Storage)(nil)

func New(l *logrus.Logger, dir string, codec Codec) (*Storage, error) {
	log := l.WithFields(map[string]interface{}{
		"from": "file-storage",
	})
	if codec == nil {
		codec = jsonCodec{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storage.Wrap("create data dir", err)
	}
	log.WithField("dir", dir).Info("file storage ready")
	return &Storage{
		dir:     dir,
		codec:   codec,
		ratings: filepath.Join(dir, ratingsName+codec.Ext()),
		matches: filepath.Join(dir, matchesName+codec.Ext()),
		log:     log,
	}, nil
}

func (s *Storage) Load(_ context.Context) (storage.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := storage.State{Ratings: make(map[string]float64)}
	found, err := s.read(s.ratings, &state.Ratings)
	if err != nil {
		return storage.State{}, err
	}
	if !found {
		s.log.Debug("no ratings record")
	}
	if state.Ratings == nil {
		state.Ratings = make(map[string]float64)
	}

	var records []storage.MatchRecord
	found, err = s.read(s.matches, &records)
	if err != nil {
		return storage.State{}, err
	}
	if !found {
		s.log.Debug("no match log record")
	}
	state.Matches, err = storage.ConvertMatchesToDomain(records)
	if err != nil {
		return storage.State{}, err
	}
	return state, nil
}

func (s *Storage) read(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, storage.Wrap("read "+filepath.Base(path), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return true, storage.Wrap("decode "+filepath.Base(path), errors.New("empty file"))
	}
	if err := s.codec.Unmarshal(data, v); err != nil {
		return true, storage.Wrap("decode "+filepath.Base(path), err)
	}
	return true, nil
}

// Save writes both records to temp files first and then renames them into
// place. If the second rename fails the previous ratings file is put back.
func (s *Storage) Save(_ context.Context, state storage.State) error {
	ratings := state.Ratings
	if ratings == nil {
		ratings = map[string]float64{}
	}
	ratingsData, err := s.codec.Marshal(ratings)
	if err != nil {
		return storage.Wrap("encode ratings", err)
	}
	matchesData, err := s.codec.Marshal(storage.ConvertMatchesFromDomain(state.Matches))
	if err != nil {
		return storage.Wrap("encode matches", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ratingsTmp, err := s.writeTemp(ratingsName, ratingsData)
	if err != nil {
		return err
	}
	defer os.Remove(ratingsTmp)
	matchesTmp, err := s.writeTemp(matchesName, matchesData)
	if err != nil {
		return err
	}
	defer os.Remove(matchesTmp)

	previous, err := os.ReadFile(s.ratings)
	hadPrevious := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return storage.Wrap("read ratings", err)
	}

	if err := os.Rename(ratingsTmp, s.ratings); err != nil {
		return storage.Wrap("replace ratings", err)
	}
	if err := os.Rename(matchesTmp, s.matches); err != nil {
		s.restoreRatings(previous, hadPrevious)
		return storage.Wrap("replace matches", err)
	}
	return nil
}

func (s *Storage) restoreRatings(previous []byte, hadPrevious bool) {
	var err error
	if hadPrevious {
		var tmp string
		tmp, err = s.writeTemp(ratingsName, previous)
		if err == nil {
			err = os.Rename(tmp, s.ratings)
		}
	} else {
		err = os.Remove(s.ratings)
	}
	if err != nil {
		s.log.WithError(err).Error("cannot restore ratings after failed save")
	}
}

func (s *Storage) writeTemp(name string, data []byte) (string, error) {
	f, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return "", storage.Wrap("create temp file", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", storage.Wrap("write temp file", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", storage.Wrap("sync temp file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", storage.Wrap("close temp file", err)
	}
	return f.Name(), nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for _, path := range []string{s.ratings, s.matches} {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = errors.Join(err, storage.Wrap("remove "+filepath.Base(path), rmErr))
		}
	}
	if err == nil {
		s.log.Info("records removed")
	}
	return err
}

func (s *Storage) Close() error {
	return nil
}
