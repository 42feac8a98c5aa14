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

var listingCols = []string{
	"id", "owner_id", "title", "description", "price", "currency",
	"image_url", "status", "created_at", "updated_at",
}

func sampleListing() *domain.Listing {
	return &domain.Listing{
		ID:          "11111111-1111-1111-1111-111111111111",
		OwnerID:     "auth0|alice",
		Title:       "Cordless drill",
		Description: "Barely used",
		Price:       4500,
		Currency:    "gbp",
		Status:      domain.ListingStatusActive,
		CreatedAt:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestListingRepository_Create(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepository(mock)
	l := sampleListing()

	mock.ExpectExec("INSERT INTO listings").
		WithArgs(l.ID, l.OwnerID, l.Title, l.Description, l.Price, l.Currency,
			l.ImageURL, l.Status, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), l))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_GetByID_NotFound(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM listings").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(listingCols))

	_, err = repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestListingRepository_ListVisible(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepository(mock)
	newer := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	older := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	cols := append(append([]string{}, listingCols...), "name", "avatar_url")

	mock.ExpectQuery("SELECT (.+) FROM listings").
		WithArgs("auth0|alice").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("l-2", "auth0|bob", "Ladder", "", int64(2000), "gbp", "", "active", newer, newer, "Bob", "").
			AddRow("l-1", "auth0|alice", "Drill", "", int64(4500), "gbp", "", "active", older, older, "Alice", ""))

	listings, err := repo.ListVisible(context.Background(), "auth0|alice")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "l-2", listings[0].ID)
	assert.Equal(t, "Bob", listings[0].OwnerName)
	assert.Equal(t, "l-1", listings[1].ID)
}

func TestListingRepository_ListVisible_Empty(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepository(mock)

	cols := append(append([]string{}, listingCols...), "name", "avatar_url")

	mock.ExpectQuery("SELECT (.+) FROM listings").
		WithArgs("auth0|loner").
		WillReturnRows(pgxmock.NewRows(cols))

	listings, err := repo.ListVisible(context.Background(), "auth0|loner")
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
}

func TestListingRepository_ListOwnedBy(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepository(mock)
	l := sampleListing()

	mock.ExpectQuery("SELECT (.+) FROM listings").
		WithArgs(l.OwnerID).
		WillReturnRows(pgxmock.NewRows(listingCols).
			AddRow(l.ID, l.OwnerID, l.Title, l.Description, l.Price, l.Currency,
				l.ImageURL, domain.ListingStatusClosed, l.CreatedAt, l.UpdatedAt))

	listings, err := repo.ListOwnedBy(context.Background(), l.OwnerID)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	// Owner view includes closed listings.
	assert.Equal(t, domain.ListingStatusClosed, listings[0].Status)
}

func TestListingRepository_Update_ScopedToOwner(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepository(mock)
	l := sampleListing()
	l.OwnerID = "auth0|intruder"

	mock.ExpectExec("UPDATE listings").
		WithArgs(l.Title, l.Description, l.Price, l.ImageURL, l.Status,
			pgxmock.AnyArg(), l.ID, l.OwnerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.Update(context.Background(), l)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
