// Package seed loads the campus location catalogue from YAML.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"vibesrm/internal/domain"
	"vibesrm/internal/geo"
	"vibesrm/internal/store"
)

type File struct {
	Locations []Location `yaml:"locations"`
}

type Location struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Latitude    float64  `yaml:"latitude"`
	Longitude   float64  `yaml:"longitude"`
	Capacity    int      `yaml:"capacity"`
	Amenities   []string `yaml:"amenities"`
	Description string   `yaml:"description"`
}

func Parse(r io.Reader) ([]domain.Location, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	out := make([]domain.Location, 0, len(f.Locations))
	seen := make(map[uuid.UUID]struct{}, len(f.Locations))
	for i, l := range f.Locations {
		loc, err := l.toDomain()
		if err != nil {
			return nil, fmt.Errorf("location %d (%s): %w", i, l.Name, err)
		}
		if _, dup := seen[loc.ID]; dup {
			return nil, fmt.Errorf("location %d (%s): duplicate id %s", i, l.Name, loc.ID)
		}
		seen[loc.ID] = struct{}{}
		out = append(out, loc)
	}
	return out, nil
}

func (l Location) toDomain() (domain.Location, error) {
	id, err := uuid.Parse(l.ID)
	if err != nil {
		return domain.Location{}, fmt.Errorf("invalid id %q", l.ID)
	}
	if strings.TrimSpace(l.Name) == "" {
		return domain.Location{}, fmt.Errorf("name is required")
	}
	cat := domain.Category(l.Category)
	if !cat.Valid() {
		return domain.Location{}, fmt.Errorf("unknown category %q", l.Category)
	}
	if !geo.ValidLatitude(l.Latitude) || !geo.ValidLongitude(l.Longitude) {
		return domain.Location{}, fmt.Errorf("coordinates out of bounds")
	}
	if l.Capacity <= 0 {
		return domain.Location{}, fmt.Errorf("capacity must be positive")
	}

	loc := domain.Location{
		ID:          id,
		Name:        l.Name,
		Category:    cat,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		Capacity:    l.Capacity,
		Description: l.Description,
	}
	for _, a := range l.Amenities {
		switch strings.ToLower(a) {
		case "wifi":
			loc.HasWifi = true
		case "outlets":
			loc.HasOutlets = true
		case "food":
			loc.HasFood = true
		case "whiteboard":
			loc.HasWhiteboard = true
		default:
			return domain.Location{}, fmt.Errorf("unknown amenity %q", a)
		}
	}
	return loc, nil
}

// Apply upserts every location in one transaction. Existing occupancy is
// left alone, and a capacity below it fails the whole load with
// store.ErrNoCapacity.
func Apply(ctx context.Context, st *store.Store, locs []domain.Location) error {
	return st.WithTx(ctx, func(tx *store.Store) error {
		for _, loc := range locs {
			if err := tx.Locations().Upsert(ctx, loc); err != nil {
				return fmt.Errorf("upsert %s: %w", loc.Name, err)
			}
		}
		return nil
	})
}

// LoadFile parses path and applies it, returning the number of locations.
func LoadFile(ctx context.Context, st *store.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	locs, err := Parse(f)
	if err != nil {
		return 0, err
	}
	if err := Apply(ctx, st, locs); err != nil {
		return 0, err
	}
	return len(locs), nil
}
