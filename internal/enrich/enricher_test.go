package enrich

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thedjrox/Leftover-Locator/internal/geocode"
	"github.com/thedjrox/Leftover-Locator/internal/model"
)

// fakeStore is an in-memory ListingStore.
type fakeStore struct {
	mu       sync.Mutex
	listings map[uint64]*model.Listing
	setCalls int
}

func newFakeStore(listings ...*model.Listing) *fakeStore {
	s := &fakeStore{listings: make(map[uint64]*model.Listing)}
	for _, l := range listings {
		s.listings[l.ID] = l
	}
	return s
}

func (s *fakeStore) MissingCoordinates(ctx context.Context) ([]model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Listing
	for _, l := range s.listings {
		if !l.HasCoordinates() {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *fakeStore) SetCoordinates(ctx context.Context, id uint64, lat, lng float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.listings[id]
	if l.HasCoordinates() {
		return nil // set-once
	}
	l.Latitude, l.Longitude = &lat, &lng
	s.setCalls++
	return nil
}

func (s *fakeStore) All(ctx context.Context) ([]model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Listing
	for _, l := range s.listings {
		out = append(out, *l)
	}
	return out, nil
}

// fakeGeocoder resolves by address lookup, failing for unknown ones.
type fakeGeocoder struct {
	mu    sync.Mutex
	known map[string]geocode.Coordinates
	calls map[string]int
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (geocode.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls == nil {
		g.calls = make(map[string]int)
	}
	g.calls[address]++
	if c, ok := g.known[address]; ok {
		return c, nil
	}
	return geocode.Coordinates{}, geocode.ErrNotFound
}

// countingFeed records broadcasts.
type countingFeed struct {
	mu    sync.Mutex
	count int
	last  []model.Listing
}

func (f *countingFeed) BroadcastListings(listings []model.Listing) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	f.last = listings
}

func (f *countingFeed) broadcasts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

func TestSweepIsolatesPerItemFailures(t *testing.T) {
	good := &model.Listing{ID: 1, RestaurantName: "Cafe A", Location: "123 Main St"}
	bad := &model.Listing{ID: 2, RestaurantName: "Cafe B", Location: "no such place"}
	store := newFakeStore(good, bad)
	gc := &fakeGeocoder{known: map[string]geocode.Coordinates{
		"123 Main St": {Latitude: 38.9, Longitude: -77.0},
	}}
	fd := &countingFeed{}

	e := New(store, gc, fd, time.Second)
	e.SweepOnce(context.Background())

	// The succeeding listing was updated and broadcast exactly once.
	assert.True(t, good.HasCoordinates())
	assert.Equal(t, 38.9, *good.Latitude)
	assert.Equal(t, 1, fd.broadcasts())

	// The failing listing stays uncoordinated and is retried next sweep.
	assert.False(t, bad.HasCoordinates())
	e.SweepOnce(context.Background())
	assert.Equal(t, 2, gc.calls["no such place"])

	// The already-resolved listing is not geocoded again.
	assert.Equal(t, 1, gc.calls["123 Main St"])
}

func TestSweepSkipsWhenPreviousStillRunning(t *testing.T) {
	store := newFakeStore(&model.Listing{ID: 1, Location: "123 Main St"})
	release := make(chan struct{})
	started := make(chan struct{})
	gc := &blockingGeocoder{started: started, release: release}
	fd := &countingFeed{}
	e := New(store, gc, fd, time.Second)

	done := make(chan struct{})
	go func() {
		e.SweepOnce(context.Background())
		close(done)
	}()
	<-started

	// The overlapping call must return immediately without geocoding.
	e.SweepOnce(context.Background())
	assert.Equal(t, 1, gc.callCount())

	close(release)
	<-done
}

type blockingGeocoder struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *blockingGeocoder) Geocode(ctx context.Context, address string) (geocode.Coordinates, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	g.once.Do(func() { close(g.started) })
	<-g.release
	return geocode.Coordinates{}, geocode.ErrNotFound
}

func (g *blockingGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := newFakeStore()
	gc := &fakeGeocoder{}
	e := New(store, gc, &countingFeed{}, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestSweepBroadcastsFullSnapshot(t *testing.T) {
	pending := &model.Listing{ID: 1, Location: "123 Main St"}
	lat, lng := 40.0, -75.0
	settled := &model.Listing{ID: 2, Location: "9 Oak Ave", Latitude: &lat, Longitude: &lng}
	store := newFakeStore(pending, settled)
	gc := &fakeGeocoder{known: map[string]geocode.Coordinates{
		"123 Main St": {Latitude: 38.9, Longitude: -77.0},
	}}
	fd := &countingFeed{}

	New(store, gc, fd, time.Second).SweepOnce(context.Background())

	require.Equal(t, 1, fd.broadcasts())
	assert.Len(t, fd.last, 2, "broadcast carries the full listing set")
}
