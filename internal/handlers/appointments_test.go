package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ashram-app-server/internal/models"
)

func TestCancellationReleasesQueue(t *testing.T) {
	// Cancelling a checked-in appointment must also vacate its queue
	// position; every other status holds none.
	assert.True(t, cancellationReleasesQueue(models.StatusCheckedIn))

	for _, status := range []models.AppointmentStatus{
		models.StatusBooked,
		models.StatusConfirmed,
		models.StatusInProgress,
		models.StatusCompleted,
		models.StatusCancelled,
	} {
		assert.False(t, cancellationReleasesQueue(status), string(status))
	}
}
