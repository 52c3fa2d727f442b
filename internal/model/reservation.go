package model

// Reservation records a customer's claim on one surprise bag at a
// restaurant. The (Email, PhoneNumber, RestName) triple is unique at
// the storage layer, which makes re-submitting the same booking a
// no-op rather than a duplicate row or a second stock decrement.
//
// Fields:
//  ID          – primary key identifier.
//  FirstName   – customer's first name.
//  LastName    – customer's last name.
//  Email       – customer's email; part of the identity triple.
//  PhoneNumber – customer's phone; part of the identity triple.
//  RestName    – restaurant the bag is reserved at; part of the
//                identity triple.
//  Processed   – set true once the stock decrement for this
//                reservation has been applied.
type Reservation struct {
	ID          uint64 `json:"id"`           // customer_reservations.id
	FirstName   string `json:"first_name"`   // customer_reservations.first_name
	LastName    string `json:"last_name"`    // customer_reservations.last_name
	Email       string `json:"email"`        // customer_reservations.email
	PhoneNumber string `json:"phone_number"` // customer_reservations.phone_number
	RestName    string `json:"rest_name"`    // customer_reservations.rest_name
	Processed   bool   `json:"processed"`    // customer_reservations.processed
}
