// Package scoring implements the live-scoring state machine: a rule
// table per format, point-by-point set and match progression, and
// single-step undo that can walk back across set boundaries. All
// functions here are pure, they take score values and return new ones;
// loading, authorization and persistence are the service layer's job.
package scoring

import (
	"errors"

	"github.com/setpoint-app/setpoint/models"
)

// ErrInconsistentSetHistory signals that the point history and the set
// history disagree. That is a data-integrity bug, not a user error.
var ErrInconsistentSetHistory = errors.New("cannot undo: set history inconsistent")

// NewScore is the score state at the start of set 1, before any point
// has been played.
func NewScore() models.Score {
	return models.Score{
		CurrentSet: 1,
		Home:       0,
		Away:       0,
		SetsWon:    models.SetsWon{Home: 0, Away: 0},
		SetHistory: []models.SetScore{},
	}
}

// PointResult is the outcome of applying a single point.
type PointResult struct {
	Score models.Score
	// Event is the log entry for the applied point: the side that
	// scored plus the score that was on the board before the point.
	Event models.PointEvent
	// SetWon and SetWinner are set when the point closed a set.
	SetWon    bool
	SetWinner models.Side
	// MatchWon is set when that set was the deciding one. The score
	// keeps the final in-set values, no new set is opened.
	MatchWon bool
}

// ApplyPoint awards one point to side and advances set and match state
// under the given rules. The input score is not modified.
func ApplyPoint(cur models.Score, side models.Side, rules Rules) PointResult {
	res := PointResult{
		Event: models.PointEvent{
			Side:      side,
			SetNumber: cur.CurrentSet,
			HomeScore: cur.Home,
			AwayScore: cur.Away,
		},
		Score: cloneScore(cur),
	}

	if side == models.SideHome {
		res.Score.Home++
	} else {
		res.Score.Away++
	}

	target := rules.PointsToWin(res.Score.CurrentSet)
	winner, won := SetWinner(res.Score.Home, res.Score.Away, target)
	if !won {
		return res
	}

	res.SetWon = true
	res.SetWinner = winner
	res.Score.SetHistory = append(res.Score.SetHistory, models.SetScore{
		Home: res.Score.Home,
		Away: res.Score.Away,
	})
	if winner == models.SideHome {
		res.Score.SetsWon.Home++
	} else {
		res.Score.SetsWon.Away++
	}

	if res.Score.SetsWon.Home >= rules.SetsToWin || res.Score.SetsWon.Away >= rules.SetsToWin {
		res.MatchWon = true
		return res
	}

	// Open the next set.
	res.Score.CurrentSet++
	res.Score.Home = 0
	res.Score.Away = 0
	return res
}

// UndoPoint reverts the point recorded in last, which must be the tail
// entry already popped from the match's point history.
//
// When last belongs to the current set, only the in-set score is
// restored. When last belongs to an earlier set, it was the point that
// closed that set: the closed set is removed from the set history, its
// winner's set count is decremented, and play returns to that set at
// the recorded score. One call reverts exactly one point; repeated
// calls walk back through history, including across several set
// boundaries.
func UndoPoint(cur models.Score, last models.PointEvent) (models.Score, error) {
	next := cloneScore(cur)

	if last.SetNumber == cur.CurrentSet {
		next.Home = last.HomeScore
		next.Away = last.AwayScore
		return next, nil
	}

	if last.SetNumber > cur.CurrentSet || len(cur.SetHistory) == 0 {
		return models.Score{}, ErrInconsistentSetHistory
	}

	closed := next.SetHistory[len(next.SetHistory)-1]
	next.SetHistory = next.SetHistory[:len(next.SetHistory)-1]
	// The recorded set satisfied the win predicate when it was played,
	// so the higher score identifies the winner.
	if closed.Home > closed.Away {
		next.SetsWon.Home--
	} else {
		next.SetsWon.Away--
	}

	next.CurrentSet = last.SetNumber
	next.Home = last.HomeScore
	next.Away = last.AwayScore
	return next, nil
}

func cloneScore(s models.Score) models.Score {
	out := s
	out.SetHistory = make([]models.SetScore, len(s.SetHistory))
	copy(out.SetHistory, s.SetHistory)
	return out
}
