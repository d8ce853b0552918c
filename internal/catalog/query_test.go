package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Wikid82/autosource/backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Listing{}, &models.ListingImage{}, &models.Lead{}))
	return db
}

func TestResolveListingSort(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		dir    string
		scope  Scope
		column string
		desc   bool
	}{
		{"public default", "", "", ScopePublic, "price", false},
		{"admin default", "", "", ScopeAdmin, "created_at", true},
		{"km maps to mileage", "km", "desc", ScopePublic, "mileage", true},
		{"year ascending", "YEAR", "asc", ScopeAdmin, "year", false},
		{"created_at not public", "created_at", "asc", ScopePublic, "price", false},
		{"created_at admin", "created_at", "asc", ScopeAdmin, "created_at", false},
		{"unknown field falls back", "color", "asc", ScopeAdmin, "created_at", true},
		{"injection attempt falls back", "price; DROP TABLE listings", "", ScopePublic, "price", false},
		{"bad direction uses scope default", "price", "sideways", ScopeAdmin, "price", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ResolveListingSort(tt.field, tt.dir, tt.scope)
			assert.Equal(t, tt.column, s.Column)
			assert.Equal(t, tt.desc, s.Desc)
			assert.True(t, strings.HasSuffix(s.Clause(), ", id ASC"))
		})
	}
}

func TestResolveLeadSort(t *testing.T) {
	assert.Equal(t, "created_at DESC, id ASC", ResolveLeadSort("", "").Clause())
	assert.Equal(t, "created_at ASC, id ASC", ResolveLeadSort("created_at", "asc").Clause())

	status := ResolveLeadSort("status", "")
	assert.Contains(t, status.Column, "WHEN 'new' THEN 0")
	assert.Contains(t, status.Column, "WHEN 'delivered' THEN 5")
	assert.False(t, status.Desc)
}

func TestResolveWindow(t *testing.T) {
	limits := DefaultLimits()

	w := ResolveWindow(map[string]string{"page": "3", "pageSize": "500"}, ScopePublic, limits)
	assert.Equal(t, Window{Page: 3, PageSize: 12}, w)
	assert.Equal(t, 24, w.Offset())

	w = ResolveWindow(map[string]string{"page": "-2", "pageSize": "500"}, ScopeAdmin, limits)
	assert.Equal(t, Window{Page: 1, PageSize: 100}, w)

	w = ResolveWindow(map[string]string{"pageSize": "nope"}, ScopeAdmin, limits)
	assert.Equal(t, Window{Page: 1, PageSize: 20}, w)

	w = ResolveWindow(map[string]string{"pageSize": "50"}, ScopeAdmin, limits)
	assert.Equal(t, 50, w.PageSize)
}

func TestComposeListingQuery_Deterministic(t *testing.T) {
	raw := map[string]string{"brand": "bmw", "priceMax": "30000", "sort": "year", "dir": "desc", "page": "2"}
	a := ComposeListingQuery(raw, ScopePublic, DefaultLimits())
	b := ComposeListingQuery(raw, ScopePublic, DefaultLimits())
	assert.Equal(t, a, b)
	assert.Equal(t, ScopePublic, a.Scope)
	assert.Equal(t, "year DESC, id ASC", a.Sort.Clause())
}

func TestComposeListingQuery_UnknownScopeIsPublic(t *testing.T) {
	q := ComposeListingQuery(map[string]string{"status": "DRAFT"}, Scope("partner"), DefaultLimits())
	assert.Equal(t, ScopePublic, q.Scope)
	assert.Nil(t, q.Filter.Status)
}

func seedListings(t *testing.T, db *gorm.DB, n int, mk func(i int) models.Listing) {
	t.Helper()
	for i := 0; i < n; i++ {
		l := mk(i)
		require.NoError(t, db.Create(&l).Error)
	}
}

func TestRun_BrandAndPriceScenario(t *testing.T) {
	db := openTestDB(t)
	seedListings(t, db, 15, func(i int) models.Listing {
		return models.Listing{Brand: "BMW", Model: "320d", Year: 2018, Price: float64(10000 + i*1000), Status: models.ListingStatusPublished}
	})
	seedListings(t, db, 5, func(i int) models.Listing {
		return models.Listing{Brand: "BMW", Model: "M5", Year: 2021, Price: float64(45000 + i*1000), Status: models.ListingStatusPublished}
	})
	seedListings(t, db, 4, func(i int) models.Listing {
		return models.Listing{Brand: "Audi", Model: "A4", Year: 2019, Price: 15000, Status: models.ListingStatusPublished}
	})

	q := ComposeListingQuery(map[string]string{"brand": "BMW", "priceMax": "30000", "page": "1"}, ScopePublic, DefaultLimits())
	res, err := Run[models.Listing](context.Background(), db, q.Where, q.Sort, q.Window)
	require.NoError(t, err)

	assert.Len(t, res.Rows, 12)
	assert.Equal(t, int64(15), res.Total)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, 1, res.CurrentPage)
	assert.True(t, res.HasNext)
	assert.False(t, res.HasPrev)
	for i := 1; i < len(res.Rows); i++ {
		assert.LessOrEqual(t, res.Rows[i-1].Price, res.Rows[i].Price)
	}
}

func TestRun_ClampsOutOfRangePage(t *testing.T) {
	db := openTestDB(t)
	seedListings(t, db, 3, func(i int) models.Listing {
		return models.Listing{Brand: "Skoda", Model: "Octavia", Year: 2020, Price: 9000, Status: models.ListingStatusPublished}
	})

	q := ComposeListingQuery(map[string]string{"page": "100"}, ScopePublic, DefaultLimits())
	res, err := Run[models.Listing](context.Background(), db, q.Where, q.Sort, q.Window)
	require.NoError(t, err)

	assert.Equal(t, 1, res.CurrentPage)
	assert.Equal(t, 1, res.TotalPages)
	assert.Len(t, res.Rows, 3)
	assert.False(t, res.HasNext)
	assert.False(t, res.HasPrev)
}

func TestRun_EmptyResultHasRowsSlice(t *testing.T) {
	db := openTestDB(t)
	q := ComposeListingQuery(nil, ScopePublic, DefaultLimits())
	res, err := Run[models.Listing](context.Background(), db, q.Where, q.Sort, q.Window)
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.Equal(t, 1, res.TotalPages)
}

func TestRun_PublicScopeHidesUnpublished(t *testing.T) {
	db := openTestDB(t)
	statuses := []models.ListingStatus{models.ListingStatusDraft, models.ListingStatusPublished, models.ListingStatusArchived, models.ListingStatusSold}
	seedListings(t, db, 4, func(i int) models.Listing {
		return models.Listing{Brand: "VW", Model: "Golf", Year: 2017, Price: 8000, Status: statuses[i]}
	})

	pub := ComposeListingQuery(nil, ScopePublic, DefaultLimits())
	res, err := Run[models.Listing](context.Background(), db, pub.Where, pub.Sort, pub.Window)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)

	adm := ComposeListingQuery(nil, ScopeAdmin, DefaultLimits())
	res, err = Run[models.Listing](context.Background(), db, adm.Where, adm.Sort, adm.Window)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Total)
}

func TestRun_TiesAreStableAcrossPages(t *testing.T) {
	db := openTestDB(t)
	seedListings(t, db, 30, func(i int) models.Listing {
		return models.Listing{Brand: "Ford", Model: "Focus", Year: 2016, Price: 7000, Status: models.ListingStatusPublished}
	})

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		q := ComposeListingQuery(map[string]string{"page": fmt.Sprint(page)}, ScopePublic, DefaultLimits())
		res, err := Run[models.Listing](context.Background(), db, q.Where, q.Sort, q.Window)
		require.NoError(t, err)
		for _, l := range res.Rows {
			assert.False(t, seen[l.ID], "listing %s returned on more than one page", l.ID)
			seen[l.ID] = true
		}
	}
	assert.Len(t, seen, 30)
}

func TestRun_SearchEscapesWildcards(t *testing.T) {
	db := openTestDB(t)
	seedListings(t, db, 1, func(int) models.Listing {
		return models.Listing{Title: "100% original paint", Brand: "Porsche", Model: "911", Year: 2005, Price: 50000, Status: models.ListingStatusPublished}
	})
	seedListings(t, db, 1, func(int) models.Listing {
		return models.Listing{Title: "1000 km service", Brand: "Porsche", Model: "Boxster", Year: 2006, Price: 30000, Status: models.ListingStatusPublished}
	})

	q := ComposeListingQuery(map[string]string{"search": "100%"}, ScopePublic, DefaultLimits())
	res, err := Run[models.Listing](context.Background(), db, q.Where, q.Sort, q.Window)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "911", res.Rows[0].Model)
}

func TestRun_LeadStatusOrdering(t *testing.T) {
	db := openTestDB(t)
	for _, s := range []models.LeadStatus{models.LeadStatusOrdered, models.LeadStatusNew, models.LeadStatusQuoted} {
		require.NoError(t, db.Create(&models.Lead{VehicleInterest: "Golf", Contact: "x", Status: s}).Error)
	}

	q := ComposeLeadQuery(map[string]string{"sort": "status"}, DefaultLimits())
	res, err := Run[models.Lead](context.Background(), db, q.Where, q.Sort, q.Window)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, models.LeadStatusNew, res.Rows[0].Status)
	assert.Equal(t, models.LeadStatusQuoted, res.Rows[1].Status)
	assert.Equal(t, models.LeadStatusOrdered, res.Rows[2].Status)
}
