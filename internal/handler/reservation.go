package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thedjrox/Leftover-Locator/internal/feed"
	"github.com/thedjrox/Leftover-Locator/internal/model"
	"github.com/thedjrox/Leftover-Locator/internal/queue"
	"github.com/thedjrox/Leftover-Locator/internal/repository"
	queue_publisher "github.com/thedjrox/Leftover-Locator/internal/service"
)

// ReservationHandler books surprise bags. The whole state change runs
// in one transaction so a concurrent reader never sees a reservation
// without its decrement or a decrement without its reservation.
type ReservationHandler struct {
	Listings     *repository.ListingRepo
	Reservations *repository.ReservationRepo
	Feed         *feed.Hub
}

// NewReservationHandler constructs a ReservationHandler. All
// dependencies must be non-nil.
func NewReservationHandler(listings *repository.ListingRepo, reservations *repository.ReservationRepo, hub *feed.Hub) *ReservationHandler {
	if listings == nil || reservations == nil || hub == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Listings: listings, Reservations: reservations, Feed: hub}
}

type reservationRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	RestName    string `json:"rest_name"`
}

// Create handles POST /reservations. Atomic unit, in order: insert the
// reservation if its identity triple is absent, take one bag off the
// named listing while stock remains, delete the listing once depleted,
// mark the reservation processed. A booking against a sold-out or
// unknown restaurant still records the reservation; the decrement is
// simply a no-op rather than an error. Duplicate submissions change
// nothing and decrement nothing.
func (h *ReservationHandler) Create(c echo.Context) error {
	var body reservationRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Email) == "" ||
		strings.TrimSpace(body.PhoneNumber) == "" ||
		strings.TrimSpace(body.RestName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, phone_number and rest_name are required"})
	}

	ctx := c.Request().Context()
	tx, err := h.Listings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res := &model.Reservation{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Email:       body.Email,
		PhoneNumber: body.PhoneNumber,
		RestName:    body.RestName,
	}
	created, err := h.Reservations.CreateTx(ctx, tx, res)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}

	// A re-submitted triple must not take a second bag.
	decremented := false
	if created {
		decremented, err = h.Listings.DecrementBagsTx(ctx, tx, body.RestName)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update stock"})
		}
		if decremented {
			if err := h.Listings.DeleteDepletedTx(ctx, tx, body.RestName); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update stock"})
			}
		}
		if err := h.Reservations.MarkProcessedTx(ctx, tx, body.Email, body.PhoneNumber, body.RestName); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to finalize reservation"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit reservation"})
	}
	committed = true

	// Post-commit fan-out: push the refreshed inventory to every viewer
	// and emit the audit event. Neither can fail the request anymore.
	if all, err := h.Listings.All(ctx); err == nil {
		h.Feed.BroadcastListings(all)
	} else {
		log.Printf("reservation: snapshot after commit failed: %v", err)
	}
	_ = queue_publisher.PublishInventoryEvent(ctx, queue.InventoryEvent{
		Type: queue.TypeReservationConfirmed,
		Reservation: &queue.ReservationConfirmedEvent{
			FirstName:   body.FirstName,
			LastName:    body.LastName,
			Email:       body.Email,
			PhoneNumber: body.PhoneNumber,
			RestName:    body.RestName,
			Decremented: decremented,
		},
	})

	return c.JSON(http.StatusCreated, echo.Map{"message": "Reservation created"})
}
