package models

import "time"

// OrgRole управляет доступом внутри организации. Роли сравниваются по
// вхождению в явный набор, иерархии между ними нет.
type OrgRole string

const (
	RoleOwner  OrgRole = "owner"
	RoleAdmin  OrgRole = "admin"
	RoleScorer OrgRole = "scorer"
	RoleViewer OrgRole = "viewer"
)

func (r OrgRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleScorer, RoleViewer:
		return true
	}
	return false
}

type Organization struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	LogoKey *string `json:"-"`
	LogoURL *string `json:"logo_url,omitempty"`
}

type Membership struct {
	OrganizationID int       `json:"organization_id"`
	UserID         int       `json:"user_id"`
	Role           OrgRole   `json:"role"`
	CreatedAt      time.Time `json:"created_at"`

	User *User `json:"user,omitempty"`
}
