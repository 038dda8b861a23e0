package models

import "time"

// Invite grants membership in an organization with a preassigned role.
// The token is a UUID, single use, with an expiry.
type Invite struct {
	ID             int        `json:"id"`
	OrganizationID int        `json:"organization_id"`
	Token          string     `json:"token"`
	Role           OrgRole    `json:"role"`
	ExpiresAt      time.Time  `json:"expires_at"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
