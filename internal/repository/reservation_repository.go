package repository

import (
	"context"
	"database/sql"

	"github.com/thedjrox/Leftover-Locator/internal/model"
)

// ReservationRepo provides access to the customer_reservations table.
// A reservation is identified by the (email, phone_number, rest_name)
// triple; the table's unique key on that triple is what makes booking
// idempotent.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateTx inserts the reservation if its identity triple is absent and
// reports whether a new row was created. A duplicate submission is a
// no-op: the existing row keeps its processed flag and the caller must
// not decrement stock again. Runs inside the caller's transaction so a
// reader never observes the reservation without its decrement or vice
// versa.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) (bool, error) {
	// `id = id` turns the duplicate-key path into a deliberate no-op
	// without bumping the auto-increment error out to the caller.
	const q = `INSERT INTO customer_reservations
		(first_name, last_name, email, phone_number, rest_name, processed)
		VALUES (?, ?, ?, ?, ?, FALSE)
		ON DUPLICATE KEY UPDATE id = id`
	result, err := tx.ExecContext(ctx, q,
		res.FirstName, res.LastName, res.Email, res.PhoneNumber, res.RestName)
	if err != nil {
		return false, err
	}
	// MySQL reports 1 affected row for a fresh insert and 0 for the
	// duplicate-key no-op path.
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	created := n == 1
	if created {
		if id, err := result.LastInsertId(); err == nil {
			res.ID = uint64(id)
		}
	}
	return created, nil
}

// MarkProcessedTx records that the stock decrement tied to this
// reservation has been applied.
func (r *ReservationRepo) MarkProcessedTx(ctx context.Context, tx *sql.Tx, email, phone, restName string) error {
	const q = `UPDATE customer_reservations SET processed = TRUE
		WHERE email = ? AND phone_number = ? AND rest_name = ?`
	_, err := tx.ExecContext(ctx, q, email, phone, restName)
	return err
}
