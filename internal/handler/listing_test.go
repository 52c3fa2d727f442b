package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMalformedDistanceIsClientError(t *testing.T) {
	// No repository attached: the request must be rejected before any
	// store access happens.
	h := &ListingHandler{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/restaurants?distance=abc&lat=38.9&lng=-77.0", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Search(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_filter")
}

func TestParseSearchQueryEmpty(t *testing.T) {
	q, err := parseSearchQuery(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, q.Cuisines)
	assert.Nil(t, q.MinBags)
	assert.Nil(t, q.Radius)
}

func TestParseSearchQueryCuisineList(t *testing.T) {
	q, err := parseSearchQuery(url.Values{"cuisine": {"European, Asian ,,Bakery"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"European", "Asian", "Bakery"}, q.Cuisines)
}

func TestParseSearchQueryFullGeoFilter(t *testing.T) {
	q, err := parseSearchQuery(url.Values{
		"distance": {"5"},
		"lat":      {"38.9"},
		"lng":      {"-77.0"},
	})
	require.NoError(t, err)
	require.NotNil(t, q.Radius)
	assert.Equal(t, 5.0, *q.Radius)
	assert.Equal(t, 38.9, *q.Lat)
	assert.Equal(t, -77.0, *q.Lng)
}

func TestParseSearchQueryDistanceAnySentinel(t *testing.T) {
	q, err := parseSearchQuery(url.Values{
		"distance": {"Any"},
		"lat":      {"38.9"},
		"lng":      {"-77.0"},
	})
	require.NoError(t, err)
	assert.Nil(t, q.Radius, `"Any" disables the geo filter`)
}

func TestParseSearchQueryIncompleteGeoFilter(t *testing.T) {
	// Distance without a caller position cannot be applied.
	q, err := parseSearchQuery(url.Values{"distance": {"5"}})
	require.NoError(t, err)
	assert.Nil(t, q.Radius)
	assert.Nil(t, q.Lat)
}

func TestParseSearchQueryMalformedNumerics(t *testing.T) {
	cases := map[string]url.Values{
		"distance":     {"distance": {"abc"}, "lat": {"38.9"}, "lng": {"-77.0"}},
		"lat":          {"distance": {"5"}, "lat": {"north"}, "lng": {"-77.0"}},
		"lng":          {"distance": {"5"}, "lat": {"38.9"}, "lng": {"west"}},
		"availability": {"availability": {"many"}},
		// Malformed numerics are a client error even when the filter
		// could not have applied anyway.
		"lone distance": {"distance": {"abc"}},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseSearchQuery(values)
			assert.Error(t, err)
		})
	}
}

func TestParseSearchQueryAvailability(t *testing.T) {
	q, err := parseSearchQuery(url.Values{"availability": {"3"}})
	require.NoError(t, err)
	require.NotNil(t, q.MinBags)
	assert.Equal(t, 3, *q.MinBags)
}
