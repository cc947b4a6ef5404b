package services

import (
	"database/sql"
	"testing"

	"github.com/pawspace/pawspace-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSeller(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, display_name, email, password_hash, is_seller)
		VALUES (?, ?, ?, '', 1)`, id, name, id+"@example.com")
	require.NoError(t, err)
}

func seedBuyer(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, display_name, email, password_hash, is_seller)
		VALUES (?, ?, ?, '', 0)`, id, name, id+"@example.com")
	require.NoError(t, err)
}

func TestCreateListingRequiresSellerFlag(t *testing.T) {
	db := newTestDB(t)
	svc := NewListingService(db, nil)
	seedBuyer(t, db, "buyer1", "Mike Johnson")

	_, err := svc.CreateListing("buyer1", ListingInput{Title: "Dog Bed", Description: "Comfy", Price: 10})
	assert.ErrorIs(t, err, models.ErrNotSeller)

	_, err = svc.CreateListing("missing", ListingInput{Title: "Dog Bed", Description: "Comfy", Price: 10})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateListingDenormalizesSellerName(t *testing.T) {
	db := newTestDB(t)
	svc := NewListingService(db, NewEventService(db, nil))
	seedSeller(t, db, "seller1", "Jane Smith")

	listing, err := svc.CreateListing("seller1", ListingInput{
		Title:       "Dog Raincoat - Medium",
		Description: "Waterproof dog raincoat, size medium.",
		Price:       18.75,
		Condition:   "Like New",
		Category:    "Clothes",
	})
	require.NoError(t, err)
	assert.Equal(t, "seller1", listing.SellerID)
	assert.Equal(t, "Jane Smith", listing.SellerName)
	assert.False(t, listing.CreatedAt.IsZero())

	got, err := svc.GetListingByID(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, got.ID)
	assert.Equal(t, 18.75, got.Price)
}

func TestSearchListings(t *testing.T) {
	db := newTestDB(t)
	svc := NewListingService(db, nil)
	seedSeller(t, db, "seller1", "Jane Smith")

	bed, err := svc.CreateListing("seller1", ListingInput{
		Title:       "Dog Bed - Large",
		Description: "Comfortable large dog bed suitable for medium to large breeds.",
		Price:       45.99,
		Condition:   "Good",
		Category:    "Beds",
	})
	require.NoError(t, err)

	_, err = svc.CreateListing("seller1", ListingInput{
		Title:       "Puppy Collar Set",
		Description: "Set of 3 adjustable puppy collars with matching leashes.",
		Price:       15.50,
		Condition:   "Like New",
		Category:    "Accessories",
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    string
		category string
		wantIDs  []string
	}{
		{"title substring", "bed", "", []string{bed.ID}},
		{"case insensitive", "BED", "", []string{bed.ID}},
		{"description substring", "breeds", "", []string{bed.ID}},
		{"no match", "aquarium", "", nil},
		{"category filter", "", "Beds", []string{bed.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.SearchListings(tt.query, tt.category)
			require.NoError(t, err)
			var ids []string
			for _, l := range got {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	// Empty query returns the full catalog.
	all, err := svc.SearchListings("", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetListingsBySeller(t *testing.T) {
	db := newTestDB(t)
	svc := NewListingService(db, nil)
	seedSeller(t, db, "seller1", "Jane Smith")
	seedSeller(t, db, "seller2", "Alex Chen")

	_, err := svc.CreateListing("seller1", ListingInput{Title: "A", Description: "a", Price: 1})
	require.NoError(t, err)
	_, err = svc.CreateListing("seller2", ListingInput{Title: "B", Description: "b", Price: 2})
	require.NoError(t, err)

	got, err := svc.GetListingsBySeller("seller1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
}
