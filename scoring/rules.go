package scoring

import (
	"errors"
	"fmt"

	"github.com/setpoint-app/setpoint/models"
)

var ErrUnknownFormat = errors.New("unknown scoring format")

// Rules is the rule table for one scoring format. It is derived once
// from the match's format and never mutated.
type Rules struct {
	SetsToWin        int
	PointsPerSet     int
	TiebreakerPoints int
	MaxSets          int
}

var formatRules = map[models.ScoringFormat]Rules{
	models.FormatStandard: {
		SetsToWin:        3,
		PointsPerSet:     25,
		TiebreakerPoints: 15,
		MaxSets:          5,
	},
	models.FormatAVPBeach: {
		SetsToWin:        2,
		PointsPerSet:     21,
		TiebreakerPoints: 15,
		MaxSets:          3,
	},
}

func RulesFor(format models.ScoringFormat) (Rules, error) {
	rules, ok := formatRules[format]
	if !ok {
		return Rules{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return rules, nil
}

// PointsToWin returns the point target for the given set. The last
// possible set of the match is always played to the lower tiebreaker
// threshold (set 5 of standard, set 3 of avp_beach).
func (r Rules) PointsToWin(currentSet int) int {
	if currentSet == r.MaxSets {
		return r.TiebreakerPoints
	}
	return r.PointsPerSet
}

// SetWinner reports which side, if any, has won a set at the given
// score. A set is won by reaching the target with a lead of at least
// two points. There is no hard ceiling, the win-by-2 rule is the only
// cap.
func SetWinner(home, away, target int) (models.Side, bool) {
	if home >= target && home-away >= 2 {
		return models.SideHome, true
	}
	if away >= target && away-home >= 2 {
		return models.SideAway, true
	}
	return "", false
}
