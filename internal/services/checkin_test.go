package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashram-app-server/internal/models"
)

func TestCheckInWindow(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	w := WindowFor(start, 20, 15)

	assert.Equal(t, start.Add(-20*time.Minute), w.Start)
	assert.Equal(t, start.Add(15*time.Minute), w.End)

	t.Run("boundaries are inclusive", func(t *testing.T) {
		assert.True(t, w.Contains(start.Add(-20*time.Minute)))
		assert.True(t, w.Contains(start.Add(15*time.Minute)))
	})

	t.Run("one minute outside fails", func(t *testing.T) {
		assert.False(t, w.Contains(start.Add(-21*time.Minute)))
		assert.False(t, w.Contains(start.Add(16*time.Minute)))
	})

	t.Run("inside passes", func(t *testing.T) {
		assert.True(t, w.Contains(start.Add(-15*time.Minute)))
		assert.True(t, w.Contains(start))
		assert.True(t, w.Contains(start.Add(10*time.Minute)))
	})
}

func appointmentAt(id string, start time.Time) models.Appointment {
	a := models.Appointment{StartTime: start, Status: models.StatusBooked}
	a.ID = id
	return a
}

func TestMatchWindow(t *testing.T) {
	morning := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	afternoon := time.Date(2025, 6, 1, 15, 0, 0, 0, time.Local)
	appointments := []models.Appointment{
		appointmentAt("morning", morning),
		appointmentAt("afternoon", afternoon),
	}

	t.Run("now inside a window matches it", func(t *testing.T) {
		matched, w := matchWindow(appointments, morning.Add(-15*time.Minute), 20, 15)
		require.NotNil(t, matched)
		assert.Equal(t, "morning", matched.ID)
		assert.True(t, w.Contains(morning))
	})

	t.Run("second appointment matched when first is past", func(t *testing.T) {
		matched, _ := matchWindow(appointments, afternoon.Add(10*time.Minute), 20, 15)
		require.NotNil(t, matched)
		assert.Equal(t, "afternoon", matched.ID)
	})

	t.Run("no window contains now", func(t *testing.T) {
		matched, _ := matchWindow(appointments, morning.Add(2*time.Hour), 20, 15)
		assert.Nil(t, matched)
	})
}

func TestNearestAppointment(t *testing.T) {
	morning := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	afternoon := time.Date(2025, 6, 1, 15, 0, 0, 0, time.Local)
	appointments := []models.Appointment{
		appointmentAt("morning", morning),
		appointmentAt("afternoon", afternoon),
	}

	nearest, w := nearestAppointment(appointments, morning.Add(90*time.Minute), 20, 15)
	assert.Equal(t, "morning", nearest.ID)
	assert.Equal(t, morning.Add(-20*time.Minute), w.Start)

	nearest, _ = nearestAppointment(appointments, afternoon.Add(-30*time.Minute), 20, 15)
	assert.Equal(t, "afternoon", nearest.ID)
}

func TestParseCheckInCode(t *testing.T) {
	t.Run("bare alias passes through trimmed", func(t *testing.T) {
		assert.Equal(t, "ASHRAM_MAIN", ParseCheckInCode("  ASHRAM_MAIN "))
	})

	t.Run("json payload with locationId", func(t *testing.T) {
		assert.Equal(t, "ASHRAM_MAIN", ParseCheckInCode(`{"locationId":"ASHRAM_MAIN"}`))
	})

	t.Run("json payload with location field", func(t *testing.T) {
		assert.Equal(t, "MAIN", ParseCheckInCode(`{"location":"MAIN"}`))
	})

	t.Run("malformed json treated as bare code", func(t *testing.T) {
		assert.Equal(t, `{"locationId":`, ParseCheckInCode(`{"locationId":`))
	})
}

func TestLocationRegistry(t *testing.T) {
	r := NewLocationRegistry()
	r.Register(Location{Code: "ASHRAM_MAIN", Name: "Main Ashram"}, "MAIN", "ASHRAM")

	for _, code := range []string{"ASHRAM_MAIN", "ashram_main", "main", " Ashram "} {
		loc, ok := r.Resolve(code)
		require.True(t, ok, "alias %q should resolve", code)
		assert.Equal(t, "ASHRAM_MAIN", loc.Code)
	}

	_, ok := r.Resolve("TEMPLE_EAST")
	assert.False(t, ok)
}
