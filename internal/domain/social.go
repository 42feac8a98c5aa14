package domain

import "time"

// Mateship represents one direction of a mate connection. Connections are
// stored as a symmetric pair of rows so either side can be queried without
// an OR across columns.
type Mateship struct {
	UserID    string    `json:"user_id"`
	MateID    string    `json:"mate_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MateSummary is a mate entry as shown in the mates view, including how many
// active listings that mate currently has.
type MateSummary struct {
	User
	ActiveListings int `json:"active_listings"`
}
