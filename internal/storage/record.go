package storage

import (
	"fmt"

	"github.com/goserg/ratingengine/internal/domain"
)

// MatchRecord is the durable form of a match.
type MatchRecord struct {
	Date        string `json:"date" cbor:"date"`
	CompetitorA string `json:"competitor_a" cbor:"competitor_a"`
	CompetitorB string `json:"competitor_b" cbor:"competitor_b"`
	Winner      string `json:"winner" cbor:"winner"`
}

func ConvertMatchesFromDomain(matches []domain.Match) []MatchRecord {
	converted := make([]MatchRecord, 0, len(matches))
	for _, match := range matches {
		converted = append(converted, MatchRecord{
			Date:        match.Date.Format(domain.DateLayout),
			CompetitorA: match.CompetitorA,
			CompetitorB: match.CompetitorB,
			Winner:      match.Winner,
		})
	}
	return converted
}

// ConvertMatchesToDomain fails on the first record that is not a valid match.
func ConvertMatchesToDomain(records []MatchRecord) ([]domain.Match, error) {
	converted := make([]domain.Match, 0, len(records))
	for i, record := range records {
		date, err := domain.ParseDate(record.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: match #%d: bad date %q", domain.ErrStorage, i, record.Date)
		}
		match := domain.Match{
			Date:        date,
			CompetitorA: record.CompetitorA,
			CompetitorB: record.CompetitorB,
			Winner:      record.Winner,
		}
		if err := match.Validate(); err != nil {
			return nil, fmt.Errorf("%w: match #%d: %w", domain.ErrStorage, i, err)
		}
		converted = append(converted, match)
	}
	return converted, nil
}

// Wrap marks err as a storage failure. Nil stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}
