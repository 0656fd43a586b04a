package geo

import (
	"fmt"
	"math"
)

// ErrorCode discriminates location failures so the check-in flow can show
// the user differentiated guidance.
type ErrorCode string

const (
	CodeLocationUnavailable ErrorCode = "LOCATION_UNAVAILABLE"
	CodeLocationDenied      ErrorCode = "LOCATION_DENIED"
	CodeLocationTimeout     ErrorCode = "LOCATION_TIMEOUT"
)

// Error is a location failure with a machine-readable code.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a location error for the given code.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Coordinates is a point in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinates are finite and within range.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) ||
		math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// ProximityResult reports the geofence decision and the measured distance
// for display.
type ProximityResult struct {
	WithinRadius   bool    `json:"withinRadius"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// ValidateProximity computes the great-circle distance between the user's
// reported position and a reference point and checks it against the radius.
// A distance exactly equal to the radius counts as inside. Pure function,
// no side effects.
func ValidateProximity(user, reference Coordinates, radiusMeters float64) (ProximityResult, error) {
	if !user.Valid() {
		return ProximityResult{}, NewError(CodeLocationUnavailable, "user coordinates are missing or invalid")
	}
	if !reference.Valid() {
		return ProximityResult{}, NewError(CodeLocationUnavailable, "reference coordinates are missing or invalid")
	}
	if radiusMeters <= 0 {
		return ProximityResult{}, NewError(CodeLocationUnavailable, "radius must be positive")
	}

	distance := HaversineMeters(user, reference)
	return ProximityResult{
		WithinRadius:   distance <= radiusMeters,
		DistanceMeters: distance,
	}, nil
}

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(a, b Coordinates) float64 {
	const earthRadiusM = 6371000.0

	lat1Rad := toRadians(a.Latitude)
	lat2Rad := toRadians(b.Latitude)
	deltaLat := toRadians(b.Latitude - a.Latitude)
	deltaLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusM * c
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
