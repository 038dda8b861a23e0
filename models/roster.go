package models

type Player struct {
	ID           int     `json:"id"`
	TeamID       int     `json:"team_id"`
	Name         string  `json:"name"`
	JerseyNumber *int    `json:"jersey_number,omitempty"`
	Position     *string `json:"position,omitempty"`
}
