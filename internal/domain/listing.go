package domain

import "time"

// Listing status constants.
const (
	ListingStatusActive = "active"
	ListingStatusClosed = "closed"
)

// Listing represents an item offered for sale. Amounts are in minor currency
// units (pence).
type Listing struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	ImageURL    string    `json:"image_url,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListingWithOwner is a listing enriched with the owner's display fields for
// feed rendering.
type ListingWithOwner struct {
	Listing
	OwnerName      string `json:"owner_name"`
	OwnerAvatarURL string `json:"owner_avatar_url,omitempty"`
}

// IsOpen reports whether the listing still accepts offers.
func (l *Listing) IsOpen() bool {
	return l.Status == ListingStatusActive
}
