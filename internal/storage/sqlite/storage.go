// Package sqlite keeps the ratings and the match log in an embedded sqlite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goserg/ratingengine/internal/migrate"
	"github.com/goserg/ratingengine/internal/storage"
	"github.com/goserg/ratingengine/internal/storage/sqlite/gen/model"
	"github.com/goserg/ratingengine/internal/storage/sqlite/gen/table"

	jet "github.com/go-jet/jet/v2/sqlite"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// insertBatch keeps one INSERT well under sqlite's bound variable limit
// (five per match row).
const insertBatch = 1000

type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ storage.Storage = (*Storage)(nil)

func New(l *logrus.Logger, fileName string) (*Storage, error) {
	log := l.WithFields(map[string]interface{}{
		"from": "sqlite-storage",
	})
	db, err := sql.Open("sqlite3", buildSource(fileName))
	if err != nil {
		return nil, storage.Wrap("open", err)
	}
	db.SetMaxOpenConns(1)

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, storage.Wrap("ping", err)
	}
	err = migrate.UpServerDB(db)
	if err != nil {
		db.Close()
		return nil, storage.Wrap("migrate", err)
	}
	log.WithField("file", fileName).Info("sqlite storage connected")
	return &Storage{
		db:  db,
		log: log,
	}, nil
}

func buildSource(fileName string) string {
	return "file:" + fileName + "?cache=shared"
}

func (s *Storage) Load(ctx context.Context) (storage.State, error) {
	var ratings []model.Ratings
	err := table.Ratings.
		SELECT(table.Ratings.AllColumns).
		FROM(table.Ratings).
		QueryContext(ctx, s.db, &ratings)
	if err != nil {
		return storage.State{}, storage.Wrap("list ratings", err)
	}

	var matches []model.Matches
	err = table.Matches.
		SELECT(table.Matches.AllColumns).
		FROM(table.Matches).
		ORDER_BY(table.Matches.Seq.ASC()).
		QueryContext(ctx, s.db, &matches)
	if err != nil {
		return storage.State{}, storage.Wrap("list matches", err)
	}

	domainMatches, err := storage.ConvertMatchesToDomain(convertMatchesToRecords(matches))
	if err != nil {
		return storage.State{}, err
	}
	return storage.State{
		Ratings: convertRatingsToMap(ratings),
		Matches: domainMatches,
	}, nil
}

// Save replaces both tables in a single transaction.
func (s *Storage) Save(ctx context.Context, state storage.State) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Wrap("begin", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.WithError(rbErr).Error("rollback failed")
			}
		}
	}()

	if err = clearTables(ctx, tx); err != nil {
		return err
	}
	ratings := convertRatingsFromMap(state.Ratings)
	for start := 0; start < len(ratings); start += insertBatch {
		end := min(start+insertBatch, len(ratings))
		_, err = table.Ratings.
			INSERT(table.Ratings.AllColumns).
			MODELS(ratings[start:end]).
			ExecContext(ctx, tx)
		if err != nil {
			return storage.Wrap("insert ratings", err)
		}
	}
	matches := convertMatchesFromRecords(storage.ConvertMatchesFromDomain(state.Matches))
	for start := 0; start < len(matches); start += insertBatch {
		end := min(start+insertBatch, len(matches))
		_, err = table.Matches.
			INSERT(table.Matches.AllColumns).
			MODELS(matches[start:end]).
			ExecContext(ctx, tx)
		if err != nil {
			return storage.Wrap("insert matches", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return storage.Wrap("commit", err)
	}
	return nil
}

func (s *Storage) Clear(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Wrap("begin", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.WithError(rbErr).Error("rollback failed")
			}
		}
	}()
	if err = clearTables(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return storage.Wrap("commit", err)
	}
	s.log.Info("records removed")
	return nil
}

func clearTables(ctx context.Context, tx *sql.Tx) error {
	_, err := table.Ratings.DELETE().WHERE(jet.Bool(true)).ExecContext(ctx, tx)
	if err != nil {
		return storage.Wrap("delete ratings", err)
	}
	_, err = table.Matches.DELETE().WHERE(jet.Bool(true)).ExecContext(ctx, tx)
	if err != nil {
		return storage.Wrap("delete matches", err)
	}
	return nil
}

func (s *Storage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}
