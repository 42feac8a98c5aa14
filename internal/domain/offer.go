package domain

import "time"

// Offer status constants.
const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusDeclined = "declined"
	OfferStatusPaid     = "paid"
)

// Offer represents a buyer's bid on a listing. Amount is in minor currency
// units (pence).
type Offer struct {
	ID              string    `json:"id"`
	ListingID       string    `json:"listing_id"`
	BuyerID         string    `json:"buyer_id"`
	Amount          int64     `json:"amount"`
	Status          string    `json:"status"`
	PaymentIntentID string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OfferWithContext is an offer enriched with listing and counterparty fields
// so the incoming/outgoing views render without extra lookups.
type OfferWithContext struct {
	Offer
	ListingTitle    string `json:"listing_title"`
	ListingPrice    int64  `json:"listing_price"`
	ListingImageURL string `json:"listing_image_url,omitempty"`
	SellerID        string `json:"seller_id"`
	BuyerName       string `json:"buyer_name,omitempty"`
	SellerName      string `json:"seller_name,omitempty"`
}

// OfferSettlement is an offer joined with the seller fields settlement needs.
type OfferSettlement struct {
	Offer
	SellerID              string `json:"seller_id"`
	SellerPayoutAccountID string `json:"-"`
	ListingTitle          string `json:"listing_title"`
}

// ValidOfferStatuses returns all valid offer statuses.
func ValidOfferStatuses() []string {
	return []string{
		OfferStatusPending,
		OfferStatusAccepted,
		OfferStatusDeclined,
		OfferStatusPaid,
	}
}

// IsValidOfferStatus checks if a status string is valid.
func IsValidOfferStatus(status string) bool {
	for _, s := range ValidOfferStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// OfferTransitions defines which status transitions are valid. Sellers move
// pending offers to accepted or declined; paid is only reachable through
// settlement confirmation.
func OfferTransitions() map[string][]string {
	return map[string][]string{
		OfferStatusPending:  {OfferStatusAccepted, OfferStatusDeclined},
		OfferStatusAccepted: {OfferStatusPaid},
		OfferStatusDeclined: {},
		OfferStatusPaid:     {},
	}
}

// CanTransitionTo checks if the offer can transition to the target status.
func (o *Offer) CanTransitionTo(target string) bool {
	allowed, ok := OfferTransitions()[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}
