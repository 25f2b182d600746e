package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/dcwatch/pkg/domain"
	"github.com/umputun/dcwatch/pkg/geo/mocks"
)

func TestQuery(t *testing.T) {
	tests := []struct {
		city, county, state string
		want                string
		wantErr             error
	}{
		{"Ashburn", "Loudoun County", "VA", "Ashburn, VA", nil},
		{"", "Loudoun County", "VA", "Loudoun County, VA", nil},
		{" ", " Maricopa County ", "AZ", "Maricopa County, AZ", nil},
		{"", "", "TX", "", ErrNotGeocodable},
	}
	for _, tt := range tests {
		got, err := Query(tt.city, tt.county, tt.state)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestGeocodio_Geocode(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1.7/geocode", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		switch r.URL.Query().Get("q") {
		case "Ashburn, VA":
			_, _ = w.Write([]byte(`{"input":{},"results":[{"location":{"lat":39.0438,"lng":-77.4874},"accuracy":1},
				{"location":{"lat":1,"lng":2},"accuracy":0.5}]}`))
		case "Nowhere County, VA":
			_, _ = w.Write([]byte(`{"results":[]}`))
		default:
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"Could not geocode address"}`))
		}
	}))
	defer ts.Close()

	g := NewGeocodio("secret", ts.URL+"/v1.7", time.Second)

	t.Run("city match", func(t *testing.T) {
		c, err := g.Geocode(context.Background(), "Ashburn", "Loudoun County", "VA")
		require.NoError(t, err)
		assert.InDelta(t, 39.0438, c.Latitude, 0.0001)
		assert.InDelta(t, -77.4874, c.Longitude, 0.0001)
	})

	t.Run("no results", func(t *testing.T) {
		_, err := g.Geocode(context.Background(), "", "Nowhere County", "VA")
		assert.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("service error", func(t *testing.T) {
		_, err := g.Geocode(context.Background(), "???", "", "VA")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "422")
	})

	t.Run("state only makes no request", func(t *testing.T) {
		before := calls.Load()
		_, err := g.Geocode(context.Background(), "", "", "VA")
		assert.ErrorIs(t, err, ErrNotGeocodable)
		assert.Equal(t, before, calls.Load())
	})

	t.Run("no key makes no request", func(t *testing.T) {
		before := calls.Load()
		_, err := NewGeocodio("", ts.URL+"/v1.7", time.Second).Geocode(context.Background(), "Ashburn", "", "VA")
		assert.ErrorIs(t, err, ErrDisabled)
		assert.Equal(t, before, calls.Load())
	})
}

func TestResolver_Resolve(t *testing.T) {
	t.Run("geocoded", func(t *testing.T) {
		geocoder := &mocks.GeocoderMock{
			GeocodeFunc: func(_ context.Context, city, county, state string) (*domain.Coords, error) {
				assert.Equal(t, "Ashburn", city)
				assert.Equal(t, "", county)
				assert.Equal(t, "VA", state)
				return &domain.Coords{Latitude: 39, Longitude: -77}, nil
			},
		}
		res, err := NewResolver(geocoder).Resolve(context.Background(), domain.Place{City: " Ashburn ", State: "va"})
		require.NoError(t, err)
		assert.Equal(t, domain.LocationKey{City: "Ashburn", State: "VA"}, res.Key)
		require.NotNil(t, res.Coords)
		assert.InDelta(t, 39.0, res.Coords.Latitude, 0.001)
		assert.Len(t, geocoder.GeocodeCalls(), 1)
	})

	t.Run("geocoder failure gives no coords", func(t *testing.T) {
		geocoder := &mocks.GeocoderMock{
			GeocodeFunc: func(context.Context, string, string, string) (*domain.Coords, error) {
				return nil, errors.New("timeout")
			},
		}
		res, err := NewResolver(geocoder).Resolve(context.Background(), domain.Place{County: "Loudoun County", State: "VA"})
		require.NoError(t, err)
		assert.Equal(t, domain.LocationKey{County: "Loudoun County", State: "VA"}, res.Key)
		assert.Nil(t, res.Coords)
	})

	t.Run("not geocodable", func(t *testing.T) {
		geocoder := &mocks.GeocoderMock{
			GeocodeFunc: func(context.Context, string, string, string) (*domain.Coords, error) {
				return nil, ErrNotGeocodable
			},
		}
		res, err := NewResolver(geocoder).Resolve(context.Background(), domain.Place{State: "TX"})
		require.NoError(t, err)
		assert.Nil(t, res.Coords)
	})

	t.Run("no geocoder", func(t *testing.T) {
		res, err := NewResolver(nil).Resolve(context.Background(), domain.Place{State: "TX"})
		require.NoError(t, err)
		assert.Equal(t, domain.LocationKey{State: "TX"}, res.Key)
		assert.Nil(t, res.Coords)
	})

	t.Run("no state", func(t *testing.T) {
		geocoder := &mocks.GeocoderMock{}
		_, err := NewResolver(geocoder).Resolve(context.Background(), domain.Place{City: "Austin"})
		require.Error(t, err)
		assert.Empty(t, geocoder.GeocodeCalls())
	})
}
