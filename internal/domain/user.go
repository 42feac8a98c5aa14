package domain

import "time"

// User represents a marketplace member. Accounts originate in the external
// identity provider and are synced into the local store on sign-in, so the
// ID is the provider's subject identifier rather than a locally minted UUID.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	PayoutAccountID string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsOnboarded reports whether the user has a connected payout account and
// can therefore receive settlement transfers as a seller.
func (u *User) IsOnboarded() bool {
	return u.PayoutAccountID != ""
}
