package domain

import (
	"strings"
	"time"
)

// Coords is a geocoded point
type Coords struct {
	Latitude  float64
	Longitude float64
}

// LocationKey identifies a location row, missing parts are empty strings
type LocationKey struct {
	City   string
	County string
	State  string
}

// NewLocationKey builds a key from a place with trimmed parts
func NewLocationKey(p Place) LocationKey {
	return LocationKey{
		City:   strings.TrimSpace(p.City),
		County: strings.TrimSpace(p.County),
		State:  strings.ToUpper(strings.TrimSpace(p.State)),
	}
}

// String returns human-readable form, like "Loudoun County, VA"
func (k LocationKey) String() string {
	parts := make([]string, 0, 3)
	if k.City != "" {
		parts = append(parts, k.City)
	}
	if k.County != "" {
		parts = append(parts, k.County)
	}
	parts = append(parts, k.State)
	return strings.Join(parts, ", ")
}

// ResolvedPlace is a normalized location key, Coords is nil when geocoding gave nothing
type ResolvedPlace struct {
	Key    LocationKey
	Coords *Coords
}

// Location is the durable, de-duplicated location record
type Location struct {
	ID        int64
	Key       LocationKey
	Latitude  *float64
	Longitude *float64
	ClipCount int
	FirstSeen time.Time
}
