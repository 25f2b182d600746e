package geo

import (
	"context"
	"errors"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/dcwatch/pkg/domain"
)

//go:generate moq -out mocks/geocoder.go -pkg mocks -skip-ensure -fmt goimports . Geocoder

// Geocoder converts place parts to coordinates
type Geocoder interface {
	Geocode(ctx context.Context, city, county, state string) (*domain.Coords, error)
}

// Resolver normalizes classification places and geocodes them
type Resolver struct {
	geocoder Geocoder
}

// NewResolver makes resolver, nil geocoder means no coordinates
func NewResolver(geocoder Geocoder) *Resolver {
	return &Resolver{geocoder: geocoder}
}

// Resolve builds the location key of the place and geocodes it. Geocoding failures are logged and
// the place is returned without coordinates, only a place without state is an error.
func (r *Resolver) Resolve(ctx context.Context, place domain.Place) (domain.ResolvedPlace, error) {
	key := domain.NewLocationKey(place)
	if key.State == "" {
		return domain.ResolvedPlace{}, errors.New("place without state")
	}

	res := domain.ResolvedPlace{Key: key}
	if r.geocoder == nil {
		return res, nil
	}
	coords, err := r.geocoder.Geocode(ctx, key.City, key.County, key.State)
	switch {
	case err == nil:
		res.Coords = coords
	case errors.Is(err, ErrDisabled), errors.Is(err, ErrNotGeocodable):
		lgr.Printf("[DEBUG] no geocoding for %s: %v", key, err)
	default:
		lgr.Printf("[WARN] geocoding of %s failed: %v", key, err)
	}
	return res, nil
}
