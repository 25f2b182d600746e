package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/dcwatch/pkg/domain"
)

// LocationRepository handles location-related database operations
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// upsertLocation inserts a location with clip_count 1 or increments clip_count of the existing one.
// Coordinates are replaced only when non-nil coords passed, existing ones are never cleared.
// Lock errors are returned unwrapped for retry.
func upsertLocation(ctx context.Context, q sqlx.QueryerContext, key domain.LocationKey, coords *domain.Coords) (*domain.Location, error) {
	var lat, lng sql.NullFloat64
	if coords != nil {
		lat = sql.NullFloat64{Float64: coords.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: coords.Longitude, Valid: true}
	}

	query := `
		INSERT INTO locations (city, county, state, latitude, longitude, clip_count, first_seen)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(city, county, state) DO UPDATE SET
			clip_count = locations.clip_count + 1,
			latitude = COALESCE(excluded.latitude, locations.latitude),
			longitude = COALESCE(excluded.longitude, locations.longitude)
		RETURNING id, city, county, state, latitude, longitude, clip_count, first_seen
	`

	var row locationRow
	if err := sqlx.GetContext(ctx, q, &row, query, key.City, key.County, key.State, lat, lng, time.Now().UTC()); err != nil {
		if isLockError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("upsert location %s: %w", key, err)
	}
	return row.toDomain(), nil
}

// GetLocation retrieves a location by its key, returns nil if not found
func (r *LocationRepository) GetLocation(ctx context.Context, key domain.LocationKey) (*domain.Location, error) {
	var row locationRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM locations WHERE city = ? AND county = ? AND state = ?",
		key.City, key.County, key.State)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	return row.toDomain(), nil
}

// CountLocations returns total number of known locations
func (r *LocationRepository) CountLocations(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM locations"); err != nil {
		return 0, fmt.Errorf("count locations: %w", err)
	}
	return count, nil
}

func (r *locationRow) toDomain() *domain.Location {
	loc := &domain.Location{
		ID:        r.ID,
		Key:       domain.LocationKey{City: r.City, County: r.County, State: r.State},
		ClipCount: r.ClipCount,
		FirstSeen: r.FirstSeen,
	}
	if r.Latitude.Valid {
		lat := r.Latitude.Float64
		loc.Latitude = &lat
	}
	if r.Longitude.Valid {
		lng := r.Longitude.Float64
		loc.Longitude = &lng
	}
	return loc
}
