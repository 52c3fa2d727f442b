package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingFromRecord(t *testing.T) {
	record := map[string]string{
		fieldRestaurantName: "Cafe A",
		fieldAddress:        "123 Main St",
		fieldFoodType:       "Bakery",
		fieldCuisine:        "European",
		fieldOriginalCost:   "12.50",
		fieldReducedCost:    "4.99",
		fieldNumberOfBags:   "5",
		fieldComments:       "pickup after 6pm",
	}

	l := listingFromRecord(record)
	assert.Equal(t, "Cafe A", l.RestaurantName)
	assert.Equal(t, "123 Main St", l.Location)
	assert.Equal(t, "Bakery", l.FoodType)
	assert.Equal(t, "European", l.Cuisine)
	assert.Equal(t, 12.50, l.OriginalPrice)
	assert.Equal(t, 4.99, l.ReducedPrice)
	assert.Equal(t, 5, l.NumberOfBags)
	assert.Equal(t, "pickup after 6pm", l.Comments)
	assert.False(t, l.HasCoordinates())
}

func TestListingFromRecordLenientNumerics(t *testing.T) {
	// The sheet is filled in by hand; malformed cells become zero
	// instead of failing the row.
	l := listingFromRecord(map[string]string{
		fieldRestaurantName: "Cafe B",
		fieldOriginalCost:   "about ten",
		fieldReducedCost:    "",
		fieldNumberOfBags:   "a few",
	})
	assert.Zero(t, l.OriginalPrice)
	assert.Zero(t, l.ReducedPrice)
	assert.Zero(t, l.NumberOfBags)
}

// ingestRequest runs the Ingest handler against a raw JSON body without
// touching storage; only paths that reject before any mutation are
// exercised here.
func ingestRequest(t *testing.T, h *WebhookHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Ingest(e.NewContext(req, rec)))
	return rec
}

func TestIngestRejectsUnknownSheet(t *testing.T) {
	// Dependencies are never reached on the rejection path.
	h := &WebhookHandler{}

	rec := ingestRequest(t, h, `{"sheetName":"Some Other Sheet","record":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unrecognized_source")
}

func TestIngestRejectsMalformedBody(t *testing.T) {
	h := &WebhookHandler{}

	rec := ingestRequest(t, h, `{"sheetName": 42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
