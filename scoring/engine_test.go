package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setpoint-app/setpoint/models"
)

func mustRules(t *testing.T, format models.ScoringFormat) Rules {
	t.Helper()
	rules, err := RulesFor(format)
	require.NoError(t, err)
	return rules
}

// playPoints applies a sequence of points, keeping the history the way
// the service layer does.
func playPoints(t *testing.T, score models.Score, history []models.PointEvent, rules Rules, sides ...models.Side) (models.Score, []models.PointEvent) {
	t.Helper()
	for _, side := range sides {
		res := ApplyPoint(score, side, rules)
		history = append(history, res.Event)
		score = res.Score
	}
	return score, history
}

func TestNewScore(t *testing.T) {
	score := NewScore()
	assert.Equal(t, 1, score.CurrentSet)
	assert.Zero(t, score.Home)
	assert.Zero(t, score.Away)
	assert.Equal(t, models.SetsWon{}, score.SetsWon)
	assert.Empty(t, score.SetHistory)
}

func TestApplyPointRecordsScoreBeforePoint(t *testing.T) {
	rules := mustRules(t, models.FormatStandard)
	score := NewScore()
	score.Home = 7
	score.Away = 5

	res := ApplyPoint(score, models.SideAway, rules)

	assert.Equal(t, models.PointEvent{
		Side:      models.SideAway,
		SetNumber: 1,
		HomeScore: 7,
		AwayScore: 5,
	}, res.Event)
	assert.Equal(t, 7, res.Score.Home)
	assert.Equal(t, 6, res.Score.Away)
	assert.False(t, res.SetWon)

	// Input value untouched.
	assert.Equal(t, 5, score.Away)
}

func TestApplyPointSetWinBoundary(t *testing.T) {
	rules := mustRules(t, models.FormatStandard)
	score := NewScore()
	score.Home = 24
	score.Away = 24

	// 25-24: at target but only one ahead, the set continues.
	res := ApplyPoint(score, models.SideHome, rules)
	assert.False(t, res.SetWon)
	assert.Equal(t, 25, res.Score.Home)
	assert.Equal(t, 24, res.Score.Away)
	assert.Equal(t, 1, res.Score.CurrentSet)

	// 26-24: won by two.
	res = ApplyPoint(res.Score, models.SideHome, rules)
	require.True(t, res.SetWon)
	assert.Equal(t, models.SideHome, res.SetWinner)
	assert.False(t, res.MatchWon)
	assert.Equal(t, []models.SetScore{{Home: 26, Away: 24}}, res.Score.SetHistory)
	assert.Equal(t, models.SetsWon{Home: 1}, res.Score.SetsWon)

	// Next set opened at 0-0.
	assert.Equal(t, 2, res.Score.CurrentSet)
	assert.Zero(t, res.Score.Home)
	assert.Zero(t, res.Score.Away)
}

func TestApplyPointTiebreakerSetUsesLowerTarget(t *testing.T) {
	rules := mustRules(t, models.FormatAVPBeach)
	score := models.Score{
		CurrentSet: 3,
		Home:       14,
		Away:       13,
		SetsWon:    models.SetsWon{Home: 1, Away: 1},
		SetHistory: []models.SetScore{{Home: 21, Away: 18}, {Home: 19, Away: 21}},
	}

	res := ApplyPoint(score, models.SideHome, rules)

	require.True(t, res.SetWon)
	assert.Equal(t, models.SideHome, res.SetWinner)
	assert.True(t, res.MatchWon)
	assert.Equal(t, 15, res.Score.Home)
	assert.Equal(t, 13, res.Score.Away)
}

func TestApplyPointMatchCompletionFreezesDecidingSet(t *testing.T) {
	rules := mustRules(t, models.FormatAVPBeach)
	score := models.Score{
		CurrentSet: 2,
		Home:       20,
		Away:       15,
		SetsWon:    models.SetsWon{Home: 1},
		SetHistory: []models.SetScore{{Home: 21, Away: 19}},
	}

	res := ApplyPoint(score, models.SideHome, rules)

	require.True(t, res.MatchWon)
	// No third set is opened, the deciding set keeps its final values.
	assert.Equal(t, 2, res.Score.CurrentSet)
	assert.Equal(t, 21, res.Score.Home)
	assert.Equal(t, 15, res.Score.Away)
	assert.Equal(t, models.SetsWon{Home: 2}, res.Score.SetsWon)
	assert.Len(t, res.Score.SetHistory, 2)
}

func TestSetsWonMatchesSetHistoryAfterAnySequence(t *testing.T) {
	rules := mustRules(t, models.FormatStandard)
	score := NewScore()
	var history []models.PointEvent

	// Alternate runs long enough to close several sets.
	sides := make([]models.Side, 0, 200)
	for i := 0; i < 100; i++ {
		sides = append(sides, models.SideHome, models.SideHome, models.SideAway)
	}
	for _, side := range sides {
		res := ApplyPoint(score, side, rules)
		history = append(history, res.Event)
		score = res.Score
		assert.Equal(t, score.SetsWon.Home+score.SetsWon.Away, len(score.SetHistory))
		if res.MatchWon {
			break
		}
	}

	// And back down through undo.
	for len(history) > 0 {
		last := history[len(history)-1]
		history = history[:len(history)-1]
		next, err := UndoPoint(score, last)
		require.NoError(t, err)
		score = next
		assert.Equal(t, score.SetsWon.Home+score.SetsWon.Away, len(score.SetHistory))
	}
	assert.Equal(t, NewScore(), score)
}

func TestUndoPointWithinSet(t *testing.T) {
	rules := mustRules(t, models.FormatStandard)
	score := NewScore()
	var history []models.PointEvent
	score, history = playPoints(t, score, history, rules,
		models.SideHome, models.SideAway, models.SideHome)

	before := cloneScore(score)
	res := ApplyPoint(score, models.SideAway, rules)

	restored, err := UndoPoint(res.Score, res.Event)
	require.NoError(t, err)
	assert.Equal(t, before, restored)
	assert.Len(t, history, 3)
}

func TestUndoPointAcrossSetBoundary(t *testing.T) {
	_ = mustRules(t, models.FormatAVPBeach)
	score := models.Score{
		CurrentSet: 2,
		Home:       0,
		Away:       0,
		SetsWon:    models.SetsWon{Home: 1},
		SetHistory: []models.SetScore{{Home: 21, Away: 19}},
	}
	last := models.PointEvent{
		Side:      models.SideHome,
		SetNumber: 1,
		HomeScore: 20,
		AwayScore: 19,
	}

	restored, err := UndoPoint(score, last)
	require.NoError(t, err)

	assert.Equal(t, 1, restored.CurrentSet)
	assert.Equal(t, 20, restored.Home)
	assert.Equal(t, 19, restored.Away)
	assert.Equal(t, models.SetsWon{}, restored.SetsWon)
	assert.Empty(t, restored.SetHistory)
}

func TestUndoPointRoundTripAcrossSetBoundary(t *testing.T) {
	rules := mustRules(t, models.FormatStandard)
	score := NewScore()
	score.Home = 24
	score.Away = 20

	before := cloneScore(score)
	res := ApplyPoint(score, models.SideHome, rules)
	require.True(t, res.SetWon)
	require.Equal(t, 2, res.Score.CurrentSet)

	restored, err := UndoPoint(res.Score, res.Event)
	require.NoError(t, err)
	assert.Equal(t, before, restored)
}

func TestUndoPointRepeatedWalksBackThroughSets(t *testing.T) {
	rules := mustRules(t, models.FormatAVPBeach)
	score := NewScore()
	var history []models.PointEvent

	// Home takes set 1 to 21-0, away takes two points of set 2.
	for i := 0; i < 21; i++ {
		score, history = playPoints(t, score, history, rules, models.SideHome)
	}
	score, history = playPoints(t, score, history, rules, models.SideAway, models.SideAway)
	require.Equal(t, 2, score.CurrentSet)
	require.Len(t, history, 23)

	for len(history) > 0 {
		last := history[len(history)-1]
		history = history[:len(history)-1]
		next, err := UndoPoint(score, last)
		require.NoError(t, err)
		score = next
	}
	assert.Equal(t, NewScore(), score)
}

func TestUndoPointInconsistentSetHistory(t *testing.T) {
	// A point from an earlier set with an empty set history means the
	// stored state is corrupt.
	score := models.Score{CurrentSet: 2, SetHistory: []models.SetScore{}}
	last := models.PointEvent{Side: models.SideHome, SetNumber: 1, HomeScore: 20, AwayScore: 19}

	_, err := UndoPoint(score, last)
	assert.ErrorIs(t, err, ErrInconsistentSetHistory)

	// A point from a later set than the current one is corrupt too.
	score = models.Score{CurrentSet: 1, SetHistory: []models.SetScore{}}
	last.SetNumber = 3
	_, err = UndoPoint(score, last)
	assert.ErrorIs(t, err, ErrInconsistentSetHistory)
}

func TestFullStandardMatch(t *testing.T) {
	rules := mustRules(t, models.FormatStandard)
	score := NewScore()
	var history []models.PointEvent
	var matchWon bool

	// Home sweeps three sets 25-0.
	for !matchWon {
		res := ApplyPoint(score, models.SideHome, rules)
		history = append(history, res.Event)
		score = res.Score
		matchWon = res.MatchWon
	}

	assert.Equal(t, models.SetsWon{Home: 3}, score.SetsWon)
	assert.Len(t, score.SetHistory, 3)
	assert.Equal(t, 3, score.CurrentSet)
	assert.Equal(t, 25, score.Home)
	assert.Len(t, history, 75)
}
