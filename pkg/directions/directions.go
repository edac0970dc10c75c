// Package directions builds map-provider URLs for navigating to a
// winning candidate. Pure string construction, no state and no network.
package directions

import (
	"fmt"
	"net/url"

	"consensus-be/internal/domain"
)

const baseURL = "https://www.google.com/maps/dir/"

// URL builds a Google Maps directions link. The destination is the
// coordinate when available, otherwise the display name. A nil origin is
// omitted so the maps client falls back to the device's own location.
func URL(origin *domain.Coordinates, destinationName string, destination *domain.Coordinates) string {
	params := url.Values{}
	params.Set("api", "1")

	switch {
	case destination != nil:
		params.Set("destination", formatCoordinates(destination))
	default:
		params.Set("destination", destinationName)
	}

	if origin != nil {
		params.Set("origin", formatCoordinates(origin))
	}

	return baseURL + "?" + params.Encode()
}

func formatCoordinates(c *domain.Coordinates) string {
	return fmt.Sprintf("%f,%f", c.Latitude, c.Longitude)
}
