package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the two application tables when they do not exist
// yet. The unique keys are load-bearing: (restaurant_name, food_type)
// makes webhook re-ingestion an update instead of a duplicate row, and
// (email, phone_number, rest_name) makes reservation submission
// idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const listings = `CREATE TABLE IF NOT EXISTS food_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		restaurant_name VARCHAR(255) NOT NULL,
		location TEXT,
		food_type VARCHAR(255) NOT NULL,
		cuisine VARCHAR(128) NOT NULL DEFAULT '',
		original_price DOUBLE NOT NULL DEFAULT 0,
		reduced_price DOUBLE NOT NULL DEFAULT 0,
		number_of_bags INT NOT NULL DEFAULT 0,
		comments TEXT,
		latitude DOUBLE NULL,
		longitude DOUBLE NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_food_items_restaurant_food (restaurant_name, food_type)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

	const reservations = `CREATE TABLE IF NOT EXISTS customer_reservations (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		first_name VARCHAR(255) NOT NULL DEFAULT '',
		last_name VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL,
		phone_number VARCHAR(64) NOT NULL,
		rest_name VARCHAR(255) NOT NULL,
		processed TINYINT(1) NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		UNIQUE KEY uq_customer_reservations_identity (email, phone_number, rest_name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

	if _, err := db.ExecContext(ctx, listings); err != nil {
		return fmt.Errorf("create food_items: %w", err)
	}
	if _, err := db.ExecContext(ctx, reservations); err != nil {
		return fmt.Errorf("create customer_reservations: %w", err)
	}
	return nil
}
