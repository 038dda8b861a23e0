package models

import "time"

// TournamentStatus соответствует ENUM в БД.
type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusCompleted TournamentStatus = "completed"
)

type Tournament struct {
	ID             int              `json:"id"`
	OrganizationID int              `json:"organization_id"`
	Name           string           `json:"name"`
	Location       *string          `json:"location,omitempty"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	Status         TournamentStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`

	Matches []Match `json:"matches,omitempty"`
}
