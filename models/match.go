package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusInProgress, MatchStatusCompleted:
		return true
	}
	return false
}

// Side identifies one of the two participants of a match.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

func (s Side) Valid() bool {
	return s == SideHome || s == SideAway
}

// ScoringFormat выбирается при создании матча и не меняется во время игры.
type ScoringFormat string

const (
	FormatStandard ScoringFormat = "standard"
	FormatAVPBeach ScoringFormat = "avp_beach"
)

type SetsWon struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// SetScore is the final score of a completed set.
type SetScore struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Score is the live score state of a match. It is treated as a value:
// every scoring operation computes a fresh Score and persists it whole,
// nothing patches it in place.
type Score struct {
	CurrentSet int        `json:"current_set"`
	Home       int        `json:"home"`
	Away       int        `json:"away"`
	SetsWon    SetsWon    `json:"sets_won"`
	SetHistory []SetScore `json:"set_history"`
}

// PointEvent records one scored point together with the score that was
// on the board *before* the point was applied. The point history is the
// undo log: its length is the only source of "can undo" truth.
type PointEvent struct {
	Side      Side `json:"side"`
	SetNumber int  `json:"set_number"`
	HomeScore int  `json:"home_score"`
	AwayScore int  `json:"away_score"`
}

type Match struct {
	ID             int            `json:"id"`
	OrganizationID int            `json:"organization_id"`
	TournamentID   *int           `json:"tournament_id,omitempty"`
	Name           string         `json:"name"`
	HomeTeamID     int            `json:"home_team_id"`
	AwayTeamID     int            `json:"away_team_id"`
	Status         MatchStatus    `json:"status"`
	ScoringFormat  *ScoringFormat `json:"scoring_format,omitempty"`
	Score          *Score         `json:"score,omitempty"`
	PointHistory   []PointEvent   `json:"point_history,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`

	HomeTeam *Team `json:"home_team,omitempty"`
	AwayTeam *Team `json:"away_team,omitempty"`
}

// MatchParticipants is the pair of display names shown on scoreboards.
type MatchParticipants struct {
	Home string `json:"home"`
	Away string `json:"away"`
}
