package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestBuildSearchNoFilters(t *testing.T) {
	query, args := buildSearch(SearchQuery{})

	// Un-geocoded listings are never eligible, filters or not.
	assert.Contains(t, query, "latitude IS NOT NULL AND longitude IS NOT NULL")
	assert.NotContains(t, query, "calc_distance")
	assert.NotContains(t, query, "LOWER(cuisine)")
	assert.NotContains(t, query, "number_of_bags >=")
	assert.Empty(t, args)
}

func TestBuildSearchDistance(t *testing.T) {
	q := SearchQuery{Radius: fptr(5), Lat: fptr(38.9), Lng: fptr(-77.0)}
	query, args := buildSearch(q)

	assert.Contains(t, query, "AS calc_distance")
	assert.Contains(t, query, "3958.8")
	// Select expression binds lat, lat, lng; the WHERE clause repeats
	// them and appends the radius.
	require.Len(t, args, 7)
	assert.Equal(t, []any{38.9, 38.9, -77.0, 38.9, 38.9, -77.0, 5.0}, args)
}

func TestBuildSearchDistanceRequiresCenter(t *testing.T) {
	// Radius without a center imposes no geo restriction.
	query, args := buildSearch(SearchQuery{Radius: fptr(5)})
	assert.NotContains(t, query, "calc_distance")
	assert.Empty(t, args)
}

func TestBuildSearchCuisines(t *testing.T) {
	query, args := buildSearch(SearchQuery{Cuisines: []string{"European", " asian "}})

	assert.Equal(t, 2, strings.Count(query, "LOWER(cuisine) LIKE ?"))
	// The sentinel cuisine always matches.
	assert.Contains(t, query, "LOWER(cuisine) = 'all'")
	assert.Equal(t, []any{"%european%", "%asian%"}, args)
}

func TestBuildSearchAvailability(t *testing.T) {
	query, args := buildSearch(SearchQuery{MinBags: iptr(3)})

	assert.Contains(t, query, "number_of_bags >= ?")
	assert.Equal(t, []any{3}, args)
}

func TestBuildSearchComposesConjunctively(t *testing.T) {
	q := SearchQuery{
		Cuisines: []string{"Bakery"},
		MinBags:  iptr(1),
		Radius:   fptr(10),
		Lat:      fptr(40.0),
		Lng:      fptr(-75.0),
	}
	query, args := buildSearch(q)

	where := query[strings.Index(query, "WHERE"):]
	// One AND inside the eligibility clause plus three joining the
	// geo, cuisine and availability predicates.
	assert.Equal(t, 4, strings.Count(where, " AND "), "predicates must compose conjunctively: %s", where)
	// Geo args first (select expr, then clause), then cuisine, then bags.
	assert.Equal(t, []any{40.0, 40.0, -75.0, 40.0, 40.0, -75.0, 10.0, "%bakery%", 1}, args)
	// Stable iteration order for a fixed snapshot, no relevance sort.
	assert.True(t, strings.HasSuffix(query, "ORDER BY id"))
}
