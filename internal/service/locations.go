package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"vibesrm/internal/cache"
	"vibesrm/internal/domain"
	"vibesrm/internal/store"
	"vibesrm/pkg/dto"
)

const NoiseWindow = time.Hour

// LocationDetails is read through the cache; a cache outage only costs a
// recomputation.
func (s *Service) LocationDetails(ctx context.Context, locationID string) (dto.LocationDetailsResponse, error) {
	id, err := uuid.Parse(locationID)
	if err != nil {
		return dto.LocationDetailsResponse{}, fmt.Errorf("%w: invalid locationId", domain.ErrInvalidInput)
	}
	out, err := cache.Fetch(ctx, s.cache, cache.LocationDetailsKey(id), s.opts.DetailsTTL, func(ctx context.Context) (dto.LocationDetailsResponse, error) {
		return s.loadLocationDetails(ctx, id)
	})
	if err != nil {
		return dto.LocationDetailsResponse{}, unavailable(err)
	}
	return out, nil
}

func (s *Service) loadLocationDetails(ctx context.Context, id domain.LocationID) (dto.LocationDetailsResponse, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	loc, err := s.store.Locations().Get(sctx, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return dto.LocationDetailsResponse{}, fmt.Errorf("%w: location %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return dto.LocationDetailsResponse{}, err
	}

	now := s.clock()
	noise, err := s.store.Noise().StatsSince(sctx, id, now.Add(-NoiseWindow))
	if err != nil {
		return dto.LocationDetailsResponse{}, err
	}
	ghostMode := domain.ModeGhost
	ghosts, err := s.store.Sessions().CountActive(sctx, id, &ghostMode)
	if err != nil {
		return dto.LocationDetailsResponse{}, err
	}

	return dto.LocationDetailsResponse{
		Location: locationView(*loc),
		Noise: dto.NoiseSummary{
			AverageLevel:  math.Round(noise.Average*10) / 10,
			Samples:       noise.Samples,
			WindowMinutes: int(NoiseWindow / time.Minute),
		},
		ActiveGhosts: ghosts,
		GeneratedAt:  now,
	}, nil
}

// ListLocations is never cached. An empty category lists everything.
func (s *Service) ListLocations(ctx context.Context, category string) (dto.LocationListResponse, error) {
	var filter *domain.Category
	if category != "" {
		c := domain.Category(category)
		if !c.Valid() {
			return dto.LocationListResponse{}, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, category)
		}
		filter = &c
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	locs, err := s.store.Locations().List(sctx, filter)
	if err != nil {
		return dto.LocationListResponse{}, unavailable(err)
	}
	out := dto.LocationListResponse{Locations: make([]dto.LocationView, 0, len(locs))}
	for _, l := range locs {
		out.Locations = append(out.Locations, locationView(l))
	}
	return out, nil
}

func locationView(l domain.Location) dto.LocationView {
	ratio := 0.0
	if l.Capacity > 0 {
		ratio = math.Round(float64(l.Occupancy)/float64(l.Capacity)*1000) / 1000
	}
	return dto.LocationView{
		ID:             l.ID.String(),
		Name:           l.Name,
		Category:       string(l.Category),
		Latitude:       l.Latitude,
		Longitude:      l.Longitude,
		Capacity:       l.Capacity,
		Occupancy:      l.Occupancy,
		OccupancyRatio: ratio,
		Amenities: dto.Amenities{
			Wifi:       l.HasWifi,
			Outlets:    l.HasOutlets,
			Food:       l.HasFood,
			Whiteboard: l.HasWhiteboard,
		},
		Description: l.Description,
	}
}
