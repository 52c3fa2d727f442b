package repository

import (
	"context"
	"database/sql"

	"github.com/thedjrox/Leftover-Locator/internal/model"
)

// listingColumns is the scan order shared by every query that returns
// full listing rows.
const listingColumns = `id, restaurant_name, location, food_type, cuisine,
	original_price, reduced_price, number_of_bags, comments, latitude, longitude`

// ListingRepo provides access to the food_items table. It is the single
// owner of the table's mutation invariants: number_of_bags never goes
// negative, a depleted listing is deleted rather than zeroed, and
// coordinates are written at most once by the enrichment path.
type ListingRepo struct {
	db *sql.DB
}

// NewListingRepo returns a new ListingRepo bound to the given database.
func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span listing and reservation writes.
func (r *ListingRepo) DB() *sql.DB { return r.db }

// scanListing reads one row in listingColumns order.
func scanListing(scan func(dest ...any) error) (model.Listing, error) {
	var l model.Listing
	var comments sql.NullString
	var location sql.NullString
	var lat, lng sql.NullFloat64
	err := scan(
		&l.ID, &l.RestaurantName, &location, &l.FoodType, &l.Cuisine,
		&l.OriginalPrice, &l.ReducedPrice, &l.NumberOfBags, &comments, &lat, &lng,
	)
	if err != nil {
		return model.Listing{}, err
	}
	l.Location = location.String
	l.Comments = comments.String
	if lat.Valid {
		v := lat.Float64
		l.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		l.Longitude = &v
	}
	return l, nil
}

// All returns every listing, coordinated or not. This is the broadcast
// snapshot and the webhook response payload; filtered reads go through
// Search instead.
func (r *ListingRepo) All(ctx context.Context) ([]model.Listing, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+listingColumns+` FROM food_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts a listing or, when the (restaurant_name, food_type)
// pair already exists, refreshes its quantity, prices and comments in
// place. Coordinates are written on first insert only; the enrichment
// loop owns them afterwards.
func (r *ListingRepo) Upsert(ctx context.Context, l *model.Listing) error {
	const q = `INSERT INTO food_items
		(restaurant_name, location, food_type, cuisine, original_price, reduced_price, number_of_bags, comments, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			number_of_bags = VALUES(number_of_bags),
			original_price = VALUES(original_price),
			reduced_price  = VALUES(reduced_price),
			comments       = VALUES(comments)`
	_, err := r.db.ExecContext(ctx, q,
		l.RestaurantName, l.Location, l.FoodType, l.Cuisine,
		l.OriginalPrice, l.ReducedPrice, l.NumberOfBags, l.Comments,
		l.Latitude, l.Longitude,
	)
	return err
}

// MissingCoordinates returns the listings that still need enrichment.
func (r *ListingRepo) MissingCoordinates(ctx context.Context) ([]model.Listing, error) {
	const q = `SELECT ` + listingColumns + ` FROM food_items
		WHERE latitude IS NULL OR longitude IS NULL
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetCoordinates persists geocoded coordinates for a listing. The guard
// clause makes enrichment monotone: once both coordinates are set, a
// later sweep (or a racing one) cannot overwrite them.
func (r *ListingRepo) SetCoordinates(ctx context.Context, id uint64, lat, lng float64) error {
	const q = `UPDATE food_items SET latitude = ?, longitude = ?
		WHERE id = ? AND (latitude IS NULL OR longitude IS NULL)`
	_, err := r.db.ExecContext(ctx, q, lat, lng, id)
	return err
}

// DecrementBagsTx takes one bag off the named restaurant's listing, but
// only while stock remains. The conditional UPDATE is the concurrency
// mechanism: two racing reservations serialize on the row lock and the
// second sees number_of_bags already at 0, so the count can never go
// negative. Returns whether a decrement actually happened.
func (r *ListingRepo) DecrementBagsTx(ctx context.Context, tx *sql.Tx, restName string) (bool, error) {
	const q = `UPDATE food_items SET number_of_bags = number_of_bags - 1
		WHERE number_of_bags > 0 AND restaurant_name = ?`
	res, err := tx.ExecContext(ctx, q, restName)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteDepletedTx removes the named restaurant's listings once their
// stock hits zero. A listing with no bags does not exist.
func (r *ListingRepo) DeleteDepletedTx(ctx context.Context, tx *sql.Tx, restName string) error {
	const q = `DELETE FROM food_items WHERE number_of_bags <= 0 AND restaurant_name = ?`
	_, err := tx.ExecContext(ctx, q, restName)
	return err
}
