package model

// Listing is a restaurant's current offer of surplus food bags.
// Coordinates are resolved asynchronously from the free-text
// Location, so both remain nil until enrichment has run.
//
// Fields:
//  ID             – primary key identifier.
//  RestaurantName – name of the restaurant or food store.
//  Location       – free-text street address used for geocoding.
//  FoodType       – description of the foods given out.
//  Cuisine        – category tag; the literal "All" matches every
//                   cuisine filter.
//  OriginalPrice  – regular price of a bag.
//  ReducedPrice   – discounted price of a bag.
//  NumberOfBags   – remaining surprise bags; never negative. A
//                   listing with zero bags is deleted, not kept.
//  Comments       – free-text notes from the restaurant.
//  Latitude       – nil until geocoded (food_items.latitude).
//  Longitude      – nil until geocoded (food_items.longitude).
//  Distance       – great-circle miles from the caller's position;
//                   populated only by distance-filtered searches.
type Listing struct {
	ID             uint64   `json:"id"`              // food_items.id
	RestaurantName string   `json:"restaurant_name"` // food_items.restaurant_name
	Location       string   `json:"location"`        // food_items.location
	FoodType       string   `json:"food_type"`       // food_items.food_type
	Cuisine        string   `json:"cuisine"`         // food_items.cuisine
	OriginalPrice  float64  `json:"original_price"`  // food_items.original_price
	ReducedPrice   float64  `json:"reduced_price"`   // food_items.reduced_price
	NumberOfBags   int      `json:"number_of_bags"`  // food_items.number_of_bags
	Comments       string   `json:"comments"`        // food_items.comments
	Latitude       *float64 `json:"latitude"`        // food_items.latitude (nullable)
	Longitude      *float64 `json:"longitude"`       // food_items.longitude (nullable)
	Distance       *float64 `json:"calc_distance,omitempty"`
}

// HasCoordinates reports whether the listing has been geocoded and is
// therefore eligible for filtered search results.
func (l *Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}
