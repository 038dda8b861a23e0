package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setpoint-app/setpoint/models"
)

func TestRulesFor(t *testing.T) {
	standard, err := RulesFor(models.FormatStandard)
	require.NoError(t, err)
	assert.Equal(t, Rules{SetsToWin: 3, PointsPerSet: 25, TiebreakerPoints: 15, MaxSets: 5}, standard)

	beach, err := RulesFor(models.FormatAVPBeach)
	require.NoError(t, err)
	assert.Equal(t, Rules{SetsToWin: 2, PointsPerSet: 21, TiebreakerPoints: 15, MaxSets: 3}, beach)

	_, err = RulesFor(models.ScoringFormat("indoor_6x6"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestPointsToWin(t *testing.T) {
	standard, _ := RulesFor(models.FormatStandard)
	beach, _ := RulesFor(models.FormatAVPBeach)

	tests := []struct {
		name  string
		rules Rules
		set   int
		want  int
	}{
		{"standard regular set", standard, 1, 25},
		{"standard fourth set", standard, 4, 25},
		{"standard deciding set", standard, 5, 15},
		{"beach regular set", beach, 1, 21},
		{"beach second set", beach, 2, 21},
		{"beach deciding set", beach, 3, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rules.PointsToWin(tt.set))
		})
	}
}

func TestSetWinner(t *testing.T) {
	tests := []struct {
		name       string
		home, away int
		target     int
		winner     models.Side
		won        bool
	}{
		{"not at target", 24, 23, 25, "", false},
		{"at target with lead of two", 25, 23, 25, models.SideHome, true},
		{"at target with lead of one", 25, 24, 25, "", false},
		{"past target win by two", 26, 24, 25, models.SideHome, true},
		{"away wins", 19, 21, 21, models.SideAway, true},
		{"extended deuce continues", 30, 29, 25, "", false},
		{"extended deuce resolved", 31, 29, 25, models.SideHome, true},
		{"tiebreaker threshold", 15, 13, 15, models.SideHome, true},
		{"zero zero", 0, 0, 25, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, won := SetWinner(tt.home, tt.away, tt.target)
			assert.Equal(t, tt.won, won)
			assert.Equal(t, tt.winner, winner)
		})
	}
}
