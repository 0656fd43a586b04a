package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMeters(t *testing.T) {
	// Mumbai CST to Gateway of India, roughly 2.3 km.
	cst := Coordinates{Latitude: 18.9398, Longitude: 72.8355}
	gateway := Coordinates{Latitude: 18.9220, Longitude: 72.8347}

	d := HaversineMeters(cst, gateway)
	assert.InDelta(t, 1980, d, 100)

	// Symmetric and zero for identical points.
	assert.InDelta(t, HaversineMeters(gateway, cst), d, 0.001)
	assert.Zero(t, HaversineMeters(cst, cst))
}

func TestValidateProximity(t *testing.T) {
	ref := Coordinates{Latitude: 19.0760, Longitude: 72.8777}

	t.Run("inside radius", func(t *testing.T) {
		// ~55m north of the reference.
		user := Coordinates{Latitude: 19.0765, Longitude: 72.8777}
		res, err := ValidateProximity(user, ref, 100)
		require.NoError(t, err)
		assert.True(t, res.WithinRadius)
		assert.InDelta(t, 55, res.DistanceMeters, 2)
	})

	t.Run("outside radius reports distance", func(t *testing.T) {
		// ~166m north of the reference.
		user := Coordinates{Latitude: 19.0775, Longitude: 72.8777}
		res, err := ValidateProximity(user, ref, 100)
		require.NoError(t, err)
		assert.False(t, res.WithinRadius)
		assert.InDelta(t, 166, res.DistanceMeters, 3)
	})

	t.Run("boundary distance is inclusive", func(t *testing.T) {
		user := Coordinates{Latitude: 19.0765, Longitude: 72.8777}
		d := HaversineMeters(user, ref)
		res, err := ValidateProximity(user, ref, d)
		require.NoError(t, err)
		assert.True(t, res.WithinRadius)
	})

	t.Run("non-finite coordinates rejected", func(t *testing.T) {
		for _, user := range []Coordinates{
			{Latitude: math.NaN(), Longitude: 72.8},
			{Latitude: 19.0, Longitude: math.Inf(1)},
			{Latitude: 91, Longitude: 72.8},
			{Latitude: 19.0, Longitude: -181},
		} {
			_, err := ValidateProximity(user, ref, 100)
			require.Error(t, err)
			var geoErr *Error
			require.ErrorAs(t, err, &geoErr)
			assert.Equal(t, CodeLocationUnavailable, geoErr.Code)
		}
	})

	t.Run("invalid reference rejected", func(t *testing.T) {
		_, err := ValidateProximity(ref, Coordinates{Latitude: math.NaN()}, 100)
		require.Error(t, err)
	})

	t.Run("non-positive radius rejected", func(t *testing.T) {
		_, err := ValidateProximity(ref, ref, 0)
		require.Error(t, err)
	})
}
