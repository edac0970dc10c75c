package directions

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consensus-be/internal/domain"
)

func TestURLWithCoordinates(t *testing.T) {
	origin := &domain.Coordinates{Latitude: 37.7749, Longitude: -122.4194}
	dest := &domain.Coordinates{Latitude: 37.8, Longitude: -122.41}

	raw := URL(origin, "Taqueria X", dest)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.google.com", parsed.Host)
	assert.Equal(t, "/maps/dir/", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "1", q.Get("api"))
	assert.Equal(t, "37.800000,-122.410000", q.Get("destination"))
	assert.Equal(t, "37.774900,-122.419400", q.Get("origin"))
}

func TestURLFallsBackToName(t *testing.T) {
	raw := URL(nil, "Taqueria X", nil)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "Taqueria X", q.Get("destination"))
	assert.Empty(t, q.Get("origin"))
}
