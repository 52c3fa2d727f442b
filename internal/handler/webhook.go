package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thedjrox/Leftover-Locator/internal/feed"
	"github.com/thedjrox/Leftover-Locator/internal/geocode"
	"github.com/thedjrox/Leftover-Locator/internal/model"
	"github.com/thedjrox/Leftover-Locator/internal/queue"
	"github.com/thedjrox/Leftover-Locator/internal/repository"
	queue_publisher "github.com/thedjrox/Leftover-Locator/internal/service"
)

// recognizedSheet is the only source sheet the webhook accepts. Anything
// else is rejected before any state changes.
const recognizedSheet = "Food Leftover (Responses)"

// Column headers of the source sheet, used verbatim as record keys.
const (
	fieldRestaurantName = "Restaurant/food store name"
	fieldAddress        = "Adress (street address, city, state, postal code)"
	fieldFoodType       = "What foods do you give out?"
	fieldOriginalCost   = "Original cost"
	fieldReducedCost    = "Reduced cost"
	fieldNumberOfBags   = "Number of suprise bags"
	fieldComments       = "Comments"
	fieldCuisine        = "Cuisine"
)

// WebhookHandler ingests listing rows pushed from the response sheet.
type WebhookHandler struct {
	Listings *repository.ListingRepo
	Geocoder geocode.Geocoder
	Feed     *feed.Hub
}

// NewWebhookHandler constructs a WebhookHandler. All dependencies must
// be non-nil.
func NewWebhookHandler(listings *repository.ListingRepo, geocoder geocode.Geocoder, hub *feed.Hub) *WebhookHandler {
	if listings == nil || geocoder == nil || hub == nil {
		panic("nil dependency passed to NewWebhookHandler")
	}
	return &WebhookHandler{Listings: listings, Geocoder: geocoder, Feed: hub}
}

type webhookRequest struct {
	SheetName string            `json:"sheetName"`
	Record    map[string]string `json:"record"`
}

// Ingest handles POST /webhook. Unlike the tolerant background
// backfill, the address is geocoded synchronously here and a failure
// aborts the whole upsert: this is the primary ingestion path, and a
// bad write is worse than a temporarily missing row. On success the
// listing is upserted by its (restaurant_name, food_type) key and the
// full listing set is pushed to every viewer.
func (h *WebhookHandler) Ingest(c echo.Context) error {
	var body webhookRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SheetName != recognizedSheet {
		log.Printf("webhook: unrecognized sheet name %q", body.SheetName)
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "unrecognized_source",
			"message": "unknown sheet name",
		})
	}

	listing := listingFromRecord(body.Record)

	ctx := c.Request().Context()
	coords, err := h.Geocoder.Geocode(ctx, listing.Location)
	if err != nil {
		log.Printf("webhook: geocode failed for %q: %v", listing.Location, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "geocode_failure",
			"message": "failed to geocode address",
		})
	}
	listing.Latitude = &coords.Latitude
	listing.Longitude = &coords.Longitude

	if err := h.Listings.Upsert(ctx, listing); err != nil {
		log.Printf("webhook: upsert for %q failed: %v", listing.RestaurantName, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store listing"})
	}

	if all, err := h.Listings.All(ctx); err == nil {
		h.Feed.BroadcastListings(all)
	} else {
		log.Printf("webhook: snapshot after upsert failed: %v", err)
	}
	_ = queue_publisher.PublishInventoryEvent(ctx, queue.InventoryEvent{
		Type: queue.TypeListingUpserted,
		Listing: &queue.ListingUpsertedEvent{
			RestaurantName: listing.RestaurantName,
			FoodType:       listing.FoodType,
			Cuisine:        listing.Cuisine,
			NumberOfBags:   listing.NumberOfBags,
			ReducedPrice:   listing.ReducedPrice,
		},
	})

	return c.String(http.StatusOK, "Webhook processed")
}

// listingFromRecord maps raw sheet columns to a Listing. Numeric cells
// are parsed leniently: the sheet is filled in by hand, so a malformed
// price or count becomes zero rather than rejecting the whole row.
func listingFromRecord(record map[string]string) *model.Listing {
	return &model.Listing{
		RestaurantName: record[fieldRestaurantName],
		Location:       record[fieldAddress],
		FoodType:       record[fieldFoodType],
		Cuisine:        record[fieldCuisine],
		Comments:       record[fieldComments],
		OriginalPrice:  lenientFloat(record[fieldOriginalCost]),
		ReducedPrice:   lenientFloat(record[fieldReducedCost]),
		NumberOfBags:   lenientInt(record[fieldNumberOfBags]),
	}
}

func lenientFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func lenientInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
