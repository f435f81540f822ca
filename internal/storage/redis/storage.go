// Package redis keeps the ratings record in a hash and the match log in a
// list. Both are written in one MULTI/EXEC.
package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/goserg/ratingengine/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultPrefix = "ratingengine"
	attempts      = 3
	backoff       = 100 * time.Millisecond
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Storage struct {
	client     *redis.Client
	ratingsKey string
	matchesKey string
	log        *logrus.Entry
}

var _ storage.Storage = (*Storage)(nil)

func New(ctx context.Context, l *logrus.Logger, cfg Config) (*Storage, error) {
	log := l.WithFields(map[string]interface{}{
		"from": "redis-storage",
	})
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	s := newStorage(client, cfg.Prefix, log)
	err := retry(ctx, func() error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		client.Close()
		return nil, storage.Wrap("ping", err)
	}
	log.WithField("addr", cfg.Addr).Info("redis storage connected")
	return s, nil
}

func newStorage(client *redis.Client, prefix string, log *logrus.Entry) *Storage {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Storage{
		client:     client,
		ratingsKey: prefix + ":ratings",
		matchesKey: prefix + ":matches",
		log:        log,
	}
}

func (s *Storage) Load(ctx context.Context) (storage.State, error) {
	var (
		ratingsCmd *redis.MapStringStringCmd
		matchesCmd *redis.StringSliceCmd
	)
	err := retry(ctx, func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			ratingsCmd = pipe.HGetAll(ctx, s.ratingsKey)
			matchesCmd = pipe.LRange(ctx, s.matchesKey, 0, -1)
			return nil
		})
		return err
	})
	if err != nil {
		return storage.State{}, storage.Wrap("load", err)
	}

	ratings, err := decodeRatings(ratingsCmd.Val())
	if err != nil {
		return storage.State{}, err
	}
	records, err := decodeMatches(matchesCmd.Val())
	if err != nil {
		return storage.State{}, err
	}
	matches, err := storage.ConvertMatchesToDomain(records)
	if err != nil {
		return storage.State{}, err
	}
	return storage.State{Ratings: ratings, Matches: matches}, nil
}

func (s *Storage) Save(ctx context.Context, state storage.State) error {
	ratings := encodeRatings(state.Ratings)
	matches, err := encodeMatches(storage.ConvertMatchesFromDomain(state.Matches))
	if err != nil {
		return storage.Wrap("encode matches", err)
	}
	err = retry(ctx, func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.ratingsKey, s.matchesKey)
			if len(ratings) > 0 {
				pipe.HSet(ctx, s.ratingsKey, ratings)
			}
			if len(matches) > 0 {
				pipe.RPush(ctx, s.matchesKey, matches...)
			}
			return nil
		})
		return err
	})
	return storage.Wrap("save", err)
}

func (s *Storage) Clear(ctx context.Context) error {
	err := retry(ctx, func() error {
		return s.client.Del(ctx, s.ratingsKey, s.matchesKey).Err()
	})
	if err != nil {
		return storage.Wrap("clear", err)
	}
	s.log.Info("records removed")
	return nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

// retry runs fn up to attempts times with a linear backoff. It gives up
// early when ctx is done.
func retry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff * time.Duration(i+1)):
		}
	}
	return err
}

func encodeRatings(ratings map[string]float64) map[string]interface{} {
	encoded := make(map[string]interface{}, len(ratings))
	for name, r := range ratings {
		encoded[name] = strconv.FormatFloat(r, 'g', -1, 64)
	}
	return encoded
}

func decodeRatings(raw map[string]string) (map[string]float64, error) {
	ratings := make(map[string]float64, len(raw))
	for name, v := range raw {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, storage.Wrap("decode rating of "+strconv.Quote(name), err)
		}
		ratings[name] = r
	}
	return ratings, nil
}

func encodeMatches(records []storage.MatchRecord) ([]interface{}, error) {
	encoded := make([]interface{}, 0, len(records))
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, string(data))
	}
	return encoded, nil
}

func decodeMatches(raw []string) ([]storage.MatchRecord, error) {
	records := make([]storage.MatchRecord, 0, len(raw))
	for i, v := range raw {
		var record storage.MatchRecord
		if err := json.Unmarshal([]byte(v), &record); err != nil {
			return nil, storage.Wrap("decode match #"+strconv.Itoa(i), err)
		}
		records = append(records, record)
	}
	return records, nil
}
