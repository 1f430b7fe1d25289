// Package geocoder wraps the geocoding collaborator behind a small interface.
// The Express implementation this port follows configured `node-geocoder` with
// a provider name and API key from the environment; geo-golang plays the same
// role here, with the provider selected at startup from the config struct.
package geocoder

import (
	"context"
	"fmt"

	"github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/mapquest/open"
	"github.com/codingsince1985/geo-golang/openstreetmap"

	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/config"
)

// Location is one geocoding candidate: a point plus the normalized address
// parts stored alongside a posting.
type Location struct {
	Longitude        float64
	Latitude         float64
	FormattedAddress string
	City             string
	State            string
	Zipcode          string
	Country          string
}

// Geocoder resolves a free-text address or postal code to a location.
// Defined as an interface so handlers and tests can substitute a fake.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Location, error)
}

// providerGeocoder adapts a geo-golang provider to the Geocoder interface.
// geo-golang returns the coordinate from a forward geocode and the normalized
// address parts from a reverse geocode, so resolving one address costs two
// provider calls.
type providerGeocoder struct {
	provider geo.Geocoder
}

// New selects the provider named in the configuration.
func New(cfg *config.GeocoderConfig) (Geocoder, error) {
	switch cfg.Provider {
	case "openstreetmap":
		return &providerGeocoder{provider: openstreetmap.Geocoder()}, nil
	case "mapquest":
		return &providerGeocoder{provider: open.Geocoder(cfg.APIKey)}, nil
	default:
		return nil, apperror.NewConfigError(fmt.Sprintf("unknown geocoder provider '%s'", cfg.Provider), nil)
	}
}

// Geocode resolves the address. Provider failures and empty candidate sets
// both surface as ExternalServiceError so handlers map them to 502.
func (g *providerGeocoder) Geocode(ctx context.Context, address string) (*Location, error) {
	// geo-golang's interface predates context plumbing; honour cancellation
	// before each provider round-trip at least.
	if err := ctx.Err(); err != nil {
		return nil, apperror.NewExternalServiceError("geocoding cancelled", err)
	}

	point, err := g.provider.Geocode(address)
	if err != nil {
		return nil, apperror.NewExternalServiceError(fmt.Sprintf("failed to geocode address '%s'", address), err)
	}
	if point == nil {
		return nil, apperror.NewExternalServiceError(fmt.Sprintf("no geocoding candidate for address '%s'", address), nil)
	}

	loc := &Location{
		Longitude: point.Lng,
		Latitude:  point.Lat,
	}

	if err := ctx.Err(); err != nil {
		return nil, apperror.NewExternalServiceError("geocoding cancelled", err)
	}

	// The reverse lookup fills in the normalized locality parts. A failure
	// here degrades to a point-only location rather than failing the request:
	// the coordinate is what the radius search depends on.
	if addr, revErr := g.provider.ReverseGeocode(point.Lat, point.Lng); revErr == nil && addr != nil {
		loc.FormattedAddress = addr.FormattedAddress
		loc.City = addr.City
		loc.State = addr.State
		loc.Zipcode = addr.Postcode
		loc.Country = addr.CountryCode
	}

	return loc, nil
}
