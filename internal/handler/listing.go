package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thedjrox/Leftover-Locator/internal/repository"
)

// distanceAny is the sentinel distance value that disables the geo
// filter entirely.
const distanceAny = "Any"

// ListingHandler serves the filtered restaurant feed.
type ListingHandler struct {
	Listings *repository.ListingRepo
}

// NewListingHandler constructs a ListingHandler.
func NewListingHandler(listings *repository.ListingRepo) *ListingHandler {
	if listings == nil {
		panic("nil repository passed to NewListingHandler")
	}
	return &ListingHandler{Listings: listings}
}

// Search handles GET /restaurants. Recognized query parameters:
//
//	cuisine      – comma-separated category list
//	availability – minimum remaining bag count
//	distance     – radius in miles, or "Any" for no geo filter
//	lat, lng     – the caller's position for the distance filter
//
// Malformed numeric values are a client error, not a silently dropped
// filter. Only geocoded listings are ever returned.
func (h *ListingHandler) Search(c echo.Context) error {
	q, err := parseSearchQuery(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "invalid_filter",
			"message": err.Error(),
		})
	}

	items, err := h.Listings.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "database_error",
			"message": "failed to search listings",
		})
	}
	return c.JSON(http.StatusOK, items)
}

// parseSearchQuery validates raw query parameters into a typed
// SearchQuery. Every numeric parameter that is present must parse; the
// geo filter itself only engages when distance, lat and lng are all
// supplied and distance is not the "Any" sentinel.
func parseSearchQuery(values url.Values) (repository.SearchQuery, error) {
	var q repository.SearchQuery

	if raw := strings.TrimSpace(values.Get("cuisine")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				q.Cuisines = append(q.Cuisines, part)
			}
		}
	}

	if raw := strings.TrimSpace(values.Get("availability")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return repository.SearchQuery{}, fmt.Errorf("invalid availability %q", raw)
		}
		q.MinBags = &n
	}

	var radius, lat, lng *float64
	if raw := strings.TrimSpace(values.Get("distance")); raw != "" && raw != distanceAny {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return repository.SearchQuery{}, fmt.Errorf("invalid distance %q", raw)
		}
		radius = &v
	}
	if raw := strings.TrimSpace(values.Get("lat")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return repository.SearchQuery{}, fmt.Errorf("invalid latitude %q", raw)
		}
		lat = &v
	}
	if raw := strings.TrimSpace(values.Get("lng")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return repository.SearchQuery{}, fmt.Errorf("invalid longitude %q", raw)
		}
		lng = &v
	}
	if radius != nil && lat != nil && lng != nil {
		q.Radius, q.Lat, q.Lng = radius, lat, lng
	}

	return q, nil
}
