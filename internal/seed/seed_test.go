package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"vibesrm/internal/domain"
	"vibesrm/internal/store"
	"vibesrm/internal/store/storetest"
)

const catalogue = `
locations:
  - id: 0b7c6a4e-3f57-4c41-9a55-2f0d7f1f3a01
    name: Robarts Library
    category: library
    latitude: 43.6645
    longitude: -79.3996
    capacity: 450
    amenities: [wifi, outlets]
    description: Fourteen floors of quiet.
  - id: 0b7c6a4e-3f57-4c41-9a55-2f0d7f1f3a02
    name: Sidney Smith Cafe
    category: cafe
    latitude: 43.6627
    longitude: -79.3984
    capacity: 60
    amenities: [wifi, food]
`

func TestParse(t *testing.T) {
	locs, err := Parse(strings.NewReader(catalogue))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(locs))
	}
	lib := locs[0]
	if lib.Name != "Robarts Library" || lib.Category != domain.CategoryLibrary || lib.Capacity != 450 || !lib.HasWifi || !lib.HasOutlets || lib.HasFood {
		t.Fatalf("unexpected library %+v", lib)
	}
	if !locs[1].HasFood {
		t.Fatalf("cafe should have food")
	}
}

func TestParseRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"bad id":       "locations:\n  - {id: nope, name: A, category: cafe, capacity: 1}\n",
		"bad category": "locations:\n  - {id: " + uuid.NewString() + ", name: A, category: bar, capacity: 1}\n",
		"capacity":     "locations:\n  - {id: " + uuid.NewString() + ", name: A, category: cafe, capacity: 0}\n",
		"latitude":     "locations:\n  - {id: " + uuid.NewString() + ", name: A, category: cafe, capacity: 1, latitude: 95}\n",
		"amenity":      "locations:\n  - {id: " + uuid.NewString() + ", name: A, category: cafe, capacity: 1, amenities: [pool]}\n",
		"unknown key":  "locations:\n  - {id: " + uuid.NewString() + ", name: A, category: cafe, capacity: 1, colour: red}\n",
	}
	for name, doc := range cases {
		if _, err := Parse(strings.NewReader(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	id := uuid.NewString()
	dup := "locations:\n  - {id: " + id + ", name: A, category: cafe, capacity: 1}\n  - {id: " + id + ", name: B, category: cafe, capacity: 1}\n"
	if _, err := Parse(strings.NewReader(dup)); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestLoadFileIsIdempotentAndKeepsOccupancy(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewStore(t)
	path := filepath.Join(t.TempDir(), "locations.yaml")
	if err := os.WriteFile(path, []byte(catalogue), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	n, err := LoadFile(ctx, st, path)
	if err != nil || n != 2 {
		t.Fatalf("load: %d (%v)", n, err)
	}
	id := uuid.MustParse("0b7c6a4e-3f57-4c41-9a55-2f0d7f1f3a01")
	if err := st.Locations().IncrementOccupancy(ctx, id); err != nil {
		t.Fatalf("increment: %v", err)
	}

	if _, err := LoadFile(ctx, st, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	all, err := st.Locations().List(ctx, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 locations after reload, got %d (%v)", len(all), err)
	}
	loc, err := st.Locations().Get(ctx, id)
	if err != nil || loc.Occupancy != 1 {
		t.Fatalf("reseeding must keep occupancy, got %+v (%v)", loc, err)
	}
}

func TestApplyRejectsCapacityBelowOccupancy(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewStore(t)
	loc := domain.Location{
		ID:        uuid.New(),
		Name:      "Gerstein",
		Category:  domain.CategoryLibrary,
		Capacity:  10,
		Occupancy: 8,
	}
	other := domain.Location{ID: uuid.New(), Name: "Annex", Category: domain.CategoryStudy, Capacity: 4}
	if err := st.Locations().Create(ctx, &loc); err != nil {
		t.Fatalf("create: %v", err)
	}

	shrunk := loc
	shrunk.Capacity = 5
	shrunk.Occupancy = 0
	if err := Apply(ctx, st, []domain.Location{other, shrunk}); !errors.Is(err, store.ErrNoCapacity) {
		t.Fatalf("expected ErrNoCapacity, got %v", err)
	}

	got, err := st.Locations().Get(ctx, loc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Capacity != 10 || got.Occupancy != 8 {
		t.Fatalf("occupancy %d must stay within capacity %d", got.Occupancy, got.Capacity)
	}
	if _, err := st.Locations().Get(ctx, other.ID); !errors.Is(err, store.ErrRecordNotFound) {
		t.Fatalf("a rejected seed must roll back every entry, got %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	st := storetest.NewStore(t)
	if _, err := LoadFile(context.Background(), st, filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
