// Package enrich backfills coordinates for listings whose address has
// not been geocoded yet. The webhook path geocodes synchronously, so
// this loop is the retry mechanism for rows that arrived through other
// paths or whose provider call failed: a fixed-interval rescan picks
// them up again until the provider cooperates.
package enrich

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/thedjrox/Leftover-Locator/internal/geocode"
	"github.com/thedjrox/Leftover-Locator/internal/model"
)

// ListingStore is the slice of the listing repository the enricher
// needs: find the rows missing coordinates and write them back.
type ListingStore interface {
	MissingCoordinates(ctx context.Context) ([]model.Listing, error)
	SetCoordinates(ctx context.Context, id uint64, lat, lng float64) error
	All(ctx context.Context) ([]model.Listing, error)
}

// Broadcaster receives the refreshed listing set after a successful
// coordinate write.
type Broadcaster interface {
	BroadcastListings(listings []model.Listing)
}

// Enricher runs the periodic coordinate backfill.
type Enricher struct {
	store    ListingStore
	geocoder geocode.Geocoder
	feed     Broadcaster
	interval time.Duration

	// mu guards against overlapping sweeps. The ticker goroutine is
	// sequential on its own; the lock covers externally triggered
	// SweepOnce calls racing a scheduled tick on the same rows.
	mu sync.Mutex
}

// New constructs an Enricher. interval <= 0 falls back to 10 seconds.
func New(store ListingStore, geocoder geocode.Geocoder, feed Broadcaster, interval time.Duration) *Enricher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Enricher{store: store, geocoder: geocoder, feed: feed, interval: interval}
}

// Run sweeps on a fixed interval until ctx is canceled. Intended to be
// started as a goroutine from main.
func (e *Enricher) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	log.Printf("enrich: backfill loop started (interval=%s)", e.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("enrich: backfill loop stopped")
			return
		case <-ticker.C:
			e.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs a single backfill pass. If another sweep is still
// running the call returns immediately: ticks are skipped, never run
// concurrently against the same rows, which would double-spend geocode
// calls. A failure on one listing is logged and does not stop the rest
// of the batch; the failed row simply stays uncoordinated until the
// next sweep. Each successful write triggers one broadcast of the
// refreshed listing set.
func (e *Enricher) SweepOnce(ctx context.Context) {
	if !e.mu.TryLock() {
		log.Printf("enrich: previous sweep still running, skipping tick")
		return
	}
	defer e.mu.Unlock()

	pending, err := e.store.MissingCoordinates(ctx)
	if err != nil {
		log.Printf("enrich: scan for uncoordinated listings failed: %v", err)
		return
	}

	for _, l := range pending {
		if ctx.Err() != nil {
			return
		}
		coords, err := e.geocoder.Geocode(ctx, l.Location)
		if err != nil {
			log.Printf("enrich: geocode failed for listing %d (%q): %v", l.ID, l.Location, err)
			continue
		}
		if err := e.store.SetCoordinates(ctx, l.ID, coords.Latitude, coords.Longitude); err != nil {
			log.Printf("enrich: persist coordinates for listing %d failed: %v", l.ID, err)
			continue
		}
		log.Printf("enrich: resolved %q -> (%v, %v)", l.Location, coords.Latitude, coords.Longitude)

		all, err := e.store.All(ctx)
		if err != nil {
			log.Printf("enrich: snapshot after update failed: %v", err)
			continue
		}
		e.feed.BroadcastListings(all)
	}
}
