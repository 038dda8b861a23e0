package models

// DashboardCounts is the aggregate view for an organization's landing
// page.
type DashboardCounts struct {
	Members           int `json:"members"`
	Teams             int `json:"teams"`
	Tournaments       int `json:"tournaments"`
	MatchesScheduled  int `json:"matches_scheduled"`
	MatchesInProgress int `json:"matches_in_progress"`
	MatchesCompleted  int `json:"matches_completed"`
}
