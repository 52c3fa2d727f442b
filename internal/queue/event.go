// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried on the inventory.events queue.
const (
	TypeReservationConfirmed = "reservation.confirmed"
	TypeListingUpserted      = "listing.upserted"
)

// InventoryEvent is the envelope published for every committed inventory
// change. One of the payload pointers is set according to Type. It
// contains enough information for downstream consumers to log or notify
// without querying the primary database.
type InventoryEvent struct {
	Type        string                     `json:"type"`
	OccurredAt  string                     `json:"occurred_at"`
	Reservation *ReservationConfirmedEvent `json:"reservation,omitempty"`
	Listing     *ListingUpsertedEvent      `json:"listing,omitempty"`
}

// ReservationConfirmedEvent is published when a reservation transaction
// commits.
type ReservationConfirmedEvent struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	RestName    string `json:"rest_name"`
	Decremented bool   `json:"decremented"`
}

// ListingUpsertedEvent is published when the ingestion webhook writes a
// listing.
type ListingUpsertedEvent struct {
	RestaurantName string  `json:"restaurant_name"`
	FoodType       string  `json:"food_type"`
	Cuisine        string  `json:"cuisine"`
	NumberOfBags   int     `json:"number_of_bags"`
	ReducedPrice   float64 `json:"reduced_price"`
}
