package sqlite

import (
	"github.com/goserg/ratingengine/internal/storage"
	"github.com/goserg/ratingengine/internal/storage/sqlite/gen/model"
)

func convertRatingsToMap(ratings []model.Ratings) map[string]float64 {
	converted := make(map[string]float64, len(ratings))
	for _, r := range ratings {
		converted[r.Name] = r.Rating
	}
	return converted
}

func convertRatingsFromMap(ratings map[string]float64) []model.Ratings {
	converted := make([]model.Ratings, 0, len(ratings))
	for name, rating := range ratings {
		converted = append(converted, model.Ratings{
			Name:   name,
			Rating: rating,
		})
	}
	return converted
}

func convertMatchesToRecords(matches []model.Matches) []storage.MatchRecord {
	converted := make([]storage.MatchRecord, 0, len(matches))
	for _, match := range matches {
		converted = append(converted, storage.MatchRecord{
			Date:        match.Date,
			CompetitorA: match.CompetitorA,
			CompetitorB: match.CompetitorB,
			Winner:      match.Winner,
		})
	}
	return converted
}

// convertMatchesFromRecords numbers matches by their position in the log.
func convertMatchesFromRecords(records []storage.MatchRecord) []model.Matches {
	converted := make([]model.Matches, 0, len(records))
	for i, record := range records {
		converted = append(converted, model.Matches{
			Seq:         int32(i),
			Date:        record.Date,
			CompetitorA: record.CompetitorA,
			CompetitorB: record.CompetitorB,
			Winner:      record.Winner,
		})
	}
	return converted
}
