package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"vibesrm/internal/cache"
	"vibesrm/internal/domain"
	"vibesrm/internal/events/eventstest"
	"vibesrm/internal/store"
	"vibesrm/internal/store/storetest"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

const (
	libLat = 43.6629
	libLon = -79.3957
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixedNames []int

func (f *fixedNames) IntN(n int) int {
	if len(*f) == 0 {
		return 0
	}
	v := (*f)[0]
	*f = (*f)[1:]
	return v % n
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes []string
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

func (m *memCache) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	m.deletes = append(m.deletes, key)
}

type fixture struct {
	svc    *Service
	store  *store.Store
	clock  *testClock
	events *eventstest.Recorder
	cache  *memCache
}

func newFixture(t *testing.T, opts ...func(*Options)) *fixture {
	t.Helper()
	st := storetest.NewStore(t)
	f := &fixture{
		store:  st,
		clock:  &testClock{t: t0},
		events: &eventstest.Recorder{},
		cache:  newMemCache(),
	}
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	f.svc = New(st, f.cache, f.events, o, WithClock(f.clock.Now), WithNameSource(&fixedNames{2, 7}))
	return f
}

func (f *fixture) withCache(c cache.Cache) {
	f.svc.cache = c
}

func (f *fixture) location(t *testing.T, capacity, occupancy int) domain.Location {
	t.Helper()
	loc := domain.Location{
		ID:         uuid.New(),
		Name:       "Gerstein Library",
		Category:   domain.CategoryLibrary,
		Latitude:   libLat,
		Longitude:  libLon,
		Capacity:   capacity,
		Occupancy:  occupancy,
		HasWifi:    true,
		HasOutlets: true,
	}
	if err := f.store.Locations().Create(context.Background(), &loc); err != nil {
		t.Fatalf("create location: %v", err)
	}
	return loc
}

func (f *fixture) occupancy(t *testing.T, id domain.LocationID) int {
	t.Helper()
	loc, err := f.store.Locations().Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get location: %v", err)
	}
	return loc.Occupancy
}

func (f *fixture) coins(t *testing.T, user domain.UserID) int {
	t.Helper()
	stats, err := f.svc.Stats(context.Background(), user)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	return stats.TotalCoins
}

func ptr[T any](v T) *T { return &v }
