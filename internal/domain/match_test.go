package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatch_Validate(t *testing.T) {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		match   Match
		wantErr bool
	}{
		{
			name:  "winA",
			match: Match{Date: date, CompetitorA: "Alice", CompetitorB: "Bob", Winner: "Alice"},
		},
		{
			name:  "winB",
			match: Match{Date: date, CompetitorA: "Alice", CompetitorB: "Bob", Winner: "Bob"},
		},
		{
			name:    "same competitor",
			match:   Match{Date: date, CompetitorA: "Alice", CompetitorB: "Alice", Winner: "Alice"},
			wantErr: true,
		},
		{
			name:    "stranger wins",
			match:   Match{Date: date, CompetitorA: "Alice", CompetitorB: "Bob", Winner: "Carol"},
			wantErr: true,
		},
		{
			name:    "missing A",
			match:   Match{Date: date, CompetitorB: "Bob", Winner: "Bob"},
			wantErr: true,
		},
		{
			name:    "blank B",
			match:   Match{Date: date, CompetitorA: "Alice", CompetitorB: "   ", Winner: "Alice"},
			wantErr: true,
		},
		{
			name:    "blank winner of blank players",
			match:   Match{Date: date, CompetitorA: "Alice", CompetitorB: "\t", Winner: "\t"},
			wantErr: true,
		},
		{
			name:    "missing winner",
			match:   Match{Date: date, CompetitorA: "Alice", CompetitorB: "Bob"},
			wantErr: true,
		},
		{
			name:    "names differ only by case",
			match:   Match{Date: date, CompetitorA: "alice", CompetitorB: "Alice", Winner: "Alice"},
			wantErr: false,
		},
		{
			name:    "missing date",
			match:   Match{CompetitorA: "Alice", CompetitorB: "Bob", Winner: "Alice"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.match.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMatch)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMatch_Loser(t *testing.T) {
	m := Match{CompetitorA: "Alice", CompetitorB: "Bob", Winner: "Bob"}
	assert.Equal(t, "Alice", m.Loser())
	m.Winner = "Alice"
	assert.Equal(t, "Bob", m.Loser())
}

func TestNewMatch(t *testing.T) {
	m := NewMatch(time.Date(2024, 5, 1, 17, 30, 0, 0, time.FixedZone("MSK", 3*3600)), " Alice ", "Bob", "Alice ")
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), m.Date)
	assert.Equal(t, "Alice", m.CompetitorA)
	assert.Equal(t, "Alice", m.Winner)
	assert.NoError(t, m.Validate())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.Format(DateLayout))

	_, err = ParseDate("29.02.2024")
	assert.Error(t, err)
}
