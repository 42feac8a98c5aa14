package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	"github.com/dougajmcdonald/mates-rates/pkg/database"
	apperrors "github.com/dougajmcdonald/mates-rates/pkg/errors"
)

var offerCols = []string{
	"id", "listing_id", "buyer_id", "amount", "status",
	"payment_intent_id", "created_at", "updated_at",
}

func sampleOffer() *domain.Offer {
	return &domain.Offer{
		ID:        "22222222-2222-2222-2222-222222222222",
		ListingID: "11111111-1111-1111-1111-111111111111",
		BuyerID:   "auth0|bob",
		Amount:    4000,
		Status:    domain.OfferStatusPending,
		CreatedAt: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
	}
}

func TestOfferRepository_Create(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOfferRepository(mock)
	o := sampleOffer()

	mock.ExpectExec("INSERT INTO offers").
		WithArgs(o.ID, o.ListingID, o.BuyerID, o.Amount, o.Status,
			o.PaymentIntentID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), o))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_GetByID_NotFound(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOfferRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM offers").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(offerCols))

	_, err = repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestOfferRepository_UpdateStatusFrom_CAS(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOfferRepository(mock)

	mock.ExpectExec("UPDATE offers").
		WithArgs(domain.OfferStatusAccepted, pgxmock.AnyArg(), "off-1", domain.OfferStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.UpdateStatusFrom(context.Background(), "off-1", domain.OfferStatusPending, domain.OfferStatusAccepted)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOfferRepository_UpdateStatusFrom_LostRace(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOfferRepository(mock)

	// The offer exists but a concurrent transition already moved it on.
	mock.ExpectExec("UPDATE offers").
		WithArgs(domain.OfferStatusDeclined, pgxmock.AnyArg(), "off-1", domain.OfferStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.UpdateStatusFrom(context.Background(), "off-1", domain.OfferStatusPending, domain.OfferStatusDeclined)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOfferRepository_GetForSettlement(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOfferRepository(mock)
	o := sampleOffer()

	cols := append(append([]string{}, offerCols...), "owner_id", "payout_account_id", "title")

	mock.ExpectQuery("SELECT (.+) FROM offers").
		WithArgs(o.ID).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(o.ID, o.ListingID, o.BuyerID, o.Amount, domain.OfferStatusAccepted,
				"", o.CreatedAt, o.UpdatedAt, "auth0|alice", "acct_123", "Cordless drill"))

	s, err := repo.GetForSettlement(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "auth0|alice", s.SellerID)
	assert.Equal(t, "acct_123", s.SellerPayoutAccountID)
	assert.Equal(t, "Cordless drill", s.ListingTitle)
	assert.Equal(t, domain.OfferStatusAccepted, s.Status)
}

func TestOfferRepository_SetPaymentIntent(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOfferRepository(mock)

	mock.ExpectExec("UPDATE offers").
		WithArgs("pi_abc", pgxmock.AnyArg(), "off-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetPaymentIntent(context.Background(), "off-1", "pi_abc"))
}

func TestOfferRepository_GetByPaymentIntent(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOfferRepository(mock)
	o := sampleOffer()

	mock.ExpectQuery("SELECT (.+) FROM offers").
		WithArgs("pi_abc").
		WillReturnRows(pgxmock.NewRows(offerCols).
			AddRow(o.ID, o.ListingID, o.BuyerID, o.Amount, domain.OfferStatusAccepted,
				"pi_abc", o.CreatedAt, o.UpdatedAt))

	got, err := repo.GetByPaymentIntent(context.Background(), "pi_abc")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, "pi_abc", got.PaymentIntentID)
}

func TestOfferRepository_ListIncoming(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOfferRepository(mock)
	o := sampleOffer()

	cols := append(append([]string{}, offerCols...),
		"title", "price", "image_url", "owner_id", "name")

	mock.ExpectQuery("SELECT (.+) FROM offers").
		WithArgs("auth0|alice").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(o.ID, o.ListingID, o.BuyerID, o.Amount, o.Status, "",
				o.CreatedAt, o.UpdatedAt, "Cordless drill", int64(4500), "", "auth0|alice", "Bob"))

	offers, err := repo.ListIncoming(context.Background(), "auth0|alice")
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "Cordless drill", offers[0].ListingTitle)
	assert.Equal(t, "Bob", offers[0].BuyerName)
	assert.Equal(t, "auth0|alice", offers[0].SellerID)
}

func TestOfferRepository_ListOutgoing(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOfferRepository(mock)
	o := sampleOffer()

	cols := append(append([]string{}, offerCols...),
		"title", "price", "image_url", "owner_id", "name")

	mock.ExpectQuery("SELECT (.+) FROM offers").
		WithArgs(o.BuyerID).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(o.ID, o.ListingID, o.BuyerID, o.Amount, o.Status, "",
				o.CreatedAt, o.UpdatedAt, "Cordless drill", int64(4500), "", "auth0|alice", "Alice"))

	offers, err := repo.ListOutgoing(context.Background(), o.BuyerID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "Alice", offers[0].SellerName)
}
