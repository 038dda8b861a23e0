package models

import "time"

// MatchStat is one free-form counter attached to a match, e.g. "aces"
// or "blocks" for a player. The ledger is edited independently of live
// scoring and carries no rules of its own.
type MatchStat struct {
	ID        int       `json:"id"`
	MatchID   int       `json:"match_id"`
	PlayerID  *int      `json:"player_id,omitempty"`
	Key       string    `json:"key"`
	Value     int       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
