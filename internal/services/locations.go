package services

import (
	"encoding/json"
	"strings"

	"ashram-app-server/internal/config"
	"ashram-app-server/internal/geo"
)

// Location is a check-in point devotees may scan or type a code for.
type Location struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Coordinates geo.Coordinates `json:"coordinates"`
}

// LocationRegistry maps code aliases (case-insensitive) to locations.
// Adding a location is a registry entry; the check-in algorithm never
// changes.
type LocationRegistry struct {
	byAlias map[string]*Location
}

// NewLocationRegistry creates an empty registry.
func NewLocationRegistry() *LocationRegistry {
	return &LocationRegistry{byAlias: map[string]*Location{}}
}

// Register adds a location reachable under its own code plus any aliases.
func (r *LocationRegistry) Register(loc Location, aliases ...string) {
	l := loc
	r.byAlias[normalizeAlias(loc.Code)] = &l
	for _, alias := range aliases {
		r.byAlias[normalizeAlias(alias)] = &l
	}
}

// Resolve looks up a location by code or alias.
func (r *LocationRegistry) Resolve(code string) (*Location, bool) {
	loc, ok := r.byAlias[normalizeAlias(code)]
	return loc, ok
}

func normalizeAlias(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DefaultLocationRegistry builds the registry with the configured ashram
// reference point under its known aliases.
func DefaultLocationRegistry(cfg *config.Config) *LocationRegistry {
	r := NewLocationRegistry()
	r.Register(Location{
		Code: "ASHRAM_MAIN",
		Name: cfg.Ashram.Name,
		Coordinates: geo.Coordinates{
			Latitude:  cfg.Ashram.Latitude,
			Longitude: cfg.Ashram.Longitude,
		},
	}, "MAIN", "ASHRAM")
	return r
}

// qrPayload is the structured form a QR code may carry instead of a bare
// alias string.
type qrPayload struct {
	LocationID string `json:"locationId"`
	Location   string `json:"location"`
}

// ParseCheckInCode extracts the location identifier from a scanned code.
// JSON payloads carry an explicit locationId field; anything else is
// treated as a bare alias.
func ParseCheckInCode(code string) string {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, "{") {
		var payload qrPayload
		if err := json.Unmarshal([]byte(trimmed), &payload); err == nil {
			if payload.LocationID != "" {
				return payload.LocationID
			}
			if payload.Location != "" {
				return payload.Location
			}
		}
	}
	return trimmed
}
