package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"spot_picker/internal/adapters/observability"
	"spot_picker/internal/domain"
)

// AddressResolver turns coordinates into a human-readable address. It never fails:
// every problem degrades to domain.UnknownAddress with a logged warning.
type AddressResolver struct {
	geo domain.Geocoder
}

func NewAddressResolver(g domain.Geocoder) *AddressResolver {
	return &AddressResolver{geo: g}
}

func (r *AddressResolver) Resolve(ctx context.Context, lat, lng float64) string {
	if r == nil || r.geo == nil {
		log.Warn().Float64("lat", lat).Float64("lng", lng).Msg("no geocoder configured")
		observability.ObserveResolution("address", "miss")
		return domain.UnknownAddress
	}
	if err := validateCoords(lat, lng); err != nil {
		log.Warn().Err(err).Msg("reverse geocode skipped")
		observability.ObserveResolution("address", "miss")
		return domain.UnknownAddress
	}

	addr, err := r.geo.ReverseGeocode(ctx, lat, lng)
	if err != nil || strings.TrimSpace(addr) == "" {
		log.Warn().Err(err).Float64("lat", lat).Float64("lng", lng).Msg("reverse geocode failed")
		observability.ObserveResolution("address", "miss")
		return domain.UnknownAddress
	}
	observability.ObserveResolution("address", "ok")
	return addr
}

func validateCoords(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %f", domain.ErrInvalidCoordinates, lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude %f", domain.ErrInvalidCoordinates, lng)
	}
	return nil
}
