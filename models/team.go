package models

import "time"

// Team is an organization-scoped roster entry. Players are plain name
// records, they are not linked to user accounts.
type Team struct {
	ID             int       `json:"id"`
	OrganizationID int       `json:"organization_id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`

	LogoKey *string `json:"-"`
	LogoURL *string `json:"logo_url,omitempty"`

	Players []Player `json:"players,omitempty"`
}
