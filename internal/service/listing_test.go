package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	apperrors "github.com/dougajmcdonald/mates-rates/pkg/errors"
)

func activeListing(id, ownerID string) *domain.Listing {
	return &domain.Listing{
		ID:      id,
		OwnerID: ownerID,
		Title:   "Cordless drill",
		Price:   4500,
		Status:  domain.ListingStatusActive,
	}
}

func TestCreateListing(t *testing.T) {
	listings := new(mockListingRepo)
	svc := NewListingService(listings, new(mockGraphRepo), testLogger())

	listings.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
		return l.OwnerID == "alice" && l.Status == domain.ListingStatusActive && l.ID != "" && l.Currency == "gbp"
	})).Return(nil)

	listing, err := svc.CreateListing(context.Background(), "alice", &CreateListingInput{
		Title: "Cordless drill",
		Price: 4500,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusActive, listing.Status)
	listings.AssertExpectations(t)
}

func TestCreateListing_InvalidPrice(t *testing.T) {
	svc := NewListingService(new(mockListingRepo), new(mockGraphRepo), testLogger())

	_, err := svc.CreateListing(context.Background(), "alice", &CreateListingInput{Title: "Drill", Price: 0})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestGetListing_OwnerSkipsGraphLookup(t *testing.T) {
	listings := new(mockListingRepo)
	graph := new(mockGraphRepo)
	svc := NewListingService(listings, graph, testLogger())

	listings.On("GetByID", mock.Anything, "l-1").Return(activeListing("l-1", "alice"), nil)

	got, err := svc.GetListing(context.Background(), "alice", "l-1")
	require.NoError(t, err)
	assert.Equal(t, "l-1", got.ID)
	graph.AssertNotCalled(t, "AreMates", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetListing_MateCanView(t *testing.T) {
	listings := new(mockListingRepo)
	graph := new(mockGraphRepo)
	svc := NewListingService(listings, graph, testLogger())

	listings.On("GetByID", mock.Anything, "l-1").Return(activeListing("l-1", "alice"), nil)
	graph.On("AreMates", mock.Anything, "bob", "alice").Return(true, nil)

	got, err := svc.GetListing(context.Background(), "bob", "l-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.OwnerID)
}

func TestGetListing_StrangerSeesNotFound(t *testing.T) {
	listings := new(mockListingRepo)
	graph := new(mockGraphRepo)
	svc := NewListingService(listings, graph, testLogger())

	listings.On("GetByID", mock.Anything, "l-1").Return(activeListing("l-1", "alice"), nil)
	graph.On("AreMates", mock.Anything, "mallory", "alice").Return(false, nil)

	_, err := svc.GetListing(context.Background(), "mallory", "l-1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestListOwnedBy_NotGatedOnMateship(t *testing.T) {
	listings := new(mockListingRepo)
	graph := new(mockGraphRepo)
	svc := NewListingService(listings, graph, testLogger())

	listings.On("ListOwnedBy", mock.Anything, "alice").
		Return([]domain.Listing{*activeListing("l-1", "alice")}, nil)

	got, err := svc.ListOwnedBy(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	graph.AssertNotCalled(t, "AreMates", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateListing_NonOwnerSeesNotFound(t *testing.T) {
	listings := new(mockListingRepo)
	svc := NewListingService(listings, new(mockGraphRepo), testLogger())

	listings.On("GetByID", mock.Anything, "l-1").Return(activeListing("l-1", "alice"), nil)

	title := "Stolen drill"
	_, err := svc.UpdateListing(context.Background(), "mallory", "l-1", &UpdateListingInput{Title: &title})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	listings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateListing_PartialFields(t *testing.T) {
	listings := new(mockListingRepo)
	svc := NewListingService(listings, new(mockGraphRepo), testLogger())

	listings.On("GetByID", mock.Anything, "l-1").Return(activeListing("l-1", "alice"), nil)
	listings.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
		return l.Price == 4000 && l.Title == "Cordless drill"
	})).Return(nil)

	price := int64(4000)
	updated, err := svc.UpdateListing(context.Background(), "alice", "l-1", &UpdateListingInput{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(4000), updated.Price)
	listings.AssertExpectations(t)
}

func TestCloseListing(t *testing.T) {
	listings := new(mockListingRepo)
	svc := NewListingService(listings, new(mockGraphRepo), testLogger())

	listings.On("GetByID", mock.Anything, "l-1").Return(activeListing("l-1", "alice"), nil)
	listings.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
		return l.Status == domain.ListingStatusClosed
	})).Return(nil)

	closed, err := svc.CloseListing(context.Background(), "alice", "l-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusClosed, closed.Status)
}

func TestCloseListing_AlreadyClosedIsNoOp(t *testing.T) {
	listings := new(mockListingRepo)
	svc := NewListingService(listings, new(mockGraphRepo), testLogger())

	l := activeListing("l-1", "alice")
	l.Status = domain.ListingStatusClosed
	listings.On("GetByID", mock.Anything, "l-1").Return(l, nil)

	closed, err := svc.CloseListing(context.Background(), "alice", "l-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusClosed, closed.Status)
	listings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
