package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashram-app-server/internal/models"
)

func entry(id string, priority models.Priority, checkedIn time.Time) models.QueueEntry {
	e := models.QueueEntry{
		Status:      models.QueueStatusWaiting,
		Priority:    priority,
		CheckedInAt: checkedIn,
	}
	e.ID = id
	return e
}

func TestSortQueueEntries(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)

	t.Run("priority before check-in time", func(t *testing.T) {
		entries := []models.QueueEntry{
			entry("a", models.PriorityLow, base),
			entry("b", models.PriorityHigh, base.Add(30*time.Minute)),
			entry("c", models.PriorityNormal, base.Add(10*time.Minute)),
			entry("d", models.PriorityHigh, base.Add(20*time.Minute)),
		}

		sortQueueEntries(entries)

		ids := []string{entries[0].ID, entries[1].ID, entries[2].ID, entries[3].ID}
		assert.Equal(t, []string{"d", "b", "c", "a"}, ids)
	})

	t.Run("check-in time breaks priority ties", func(t *testing.T) {
		entries := []models.QueueEntry{
			entry("late", models.PriorityNormal, base.Add(5*time.Minute)),
			entry("early", models.PriorityNormal, base),
		}

		sortQueueEntries(entries)

		assert.Equal(t, "early", entries[0].ID)
		assert.Equal(t, "late", entries[1].ID)
	})

	t.Run("id breaks equal timestamps", func(t *testing.T) {
		entries := []models.QueueEntry{
			entry("zzz", models.PriorityNormal, base),
			entry("aaa", models.PriorityNormal, base),
		}

		sortQueueEntries(entries)

		assert.Equal(t, "aaa", entries[0].ID)
		assert.Equal(t, "zzz", entries[1].ID)
	})

	t.Run("unknown priority sorts as normal", func(t *testing.T) {
		entries := []models.QueueEntry{
			entry("odd", models.Priority("urgent?"), base),
			entry("high", models.PriorityHigh, base.Add(time.Hour)),
		}

		sortQueueEntries(entries)

		assert.Equal(t, "high", entries[0].ID)
	})
}

func TestAssignPositions(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)
	entries := []models.QueueEntry{
		entry("a", models.PriorityHigh, base),
		entry("b", models.PriorityNormal, base),
		entry("c", models.PriorityNormal, base.Add(time.Minute)),
	}

	assignPositions(entries, 15)

	for i, e := range entries {
		assert.Equal(t, i+1, e.Position, "position is 1-based and strictly increasing")
	}
	assert.Equal(t, 0, entries[0].EstimatedWaitMinutes)
	assert.Equal(t, 15, entries[1].EstimatedWaitMinutes)
	assert.Equal(t, 30, entries[2].EstimatedWaitMinutes)
}

func TestCompletionGate(t *testing.T) {
	t.Run("no remedy and no skip fails", func(t *testing.T) {
		err := completionGate(0, false)
		require.Error(t, err)
		svcErr, ok := AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, CodeRemedyRequired, svcErr.Code)
		assert.Equal(t, "Remedy must be prescribed before completing consultation", svcErr.Message)
	})

	t.Run("one remedy passes", func(t *testing.T) {
		assert.NoError(t, completionGate(1, false))
	})

	t.Run("explicit skip passes", func(t *testing.T) {
		assert.NoError(t, completionGate(0, true))
	})
}

func TestQueueEntryStatusIsActive(t *testing.T) {
	// A second join for the same appointment reuses the entry in these
	// statuses instead of creating a duplicate.
	assert.True(t, models.QueueStatusWaiting.IsActive())
	assert.True(t, models.QueueStatusInProgress.IsActive())

	assert.False(t, models.QueueStatusCompleted.IsActive())
	assert.False(t, models.QueueEntryStatus("gone").IsActive())
}

func TestLeaveDecision(t *testing.T) {
	t.Run("waiting entry is removed", func(t *testing.T) {
		action, err := leaveDecision(models.QueueStatusWaiting)
		require.NoError(t, err)
		assert.Equal(t, leaveDelete, action)
	})

	t.Run("active consultation refuses", func(t *testing.T) {
		action, err := leaveDecision(models.QueueStatusInProgress)
		require.Error(t, err)
		svcErr, ok := AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, CodeInvalidState, svcErr.Code)
		assert.Equal(t, leaveNoop, action)
	})

	t.Run("completed entry stays as history", func(t *testing.T) {
		action, err := leaveDecision(models.QueueStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, leaveNoop, action)
	})
}

func TestStatusEntries(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)

	current := entry("current", models.PriorityLow, base)
	current.Status = models.QueueStatusInProgress
	waiting := []models.QueueEntry{
		entry("second", models.PriorityNormal, base.Add(10*time.Minute)),
		entry("first", models.PriorityHigh, base.Add(20*time.Minute)),
	}

	entries := statusEntries([]models.QueueEntry{current}, waiting)

	require.Len(t, entries, 3)
	assert.Equal(t, "current", entries[0].ID, "the consultation in progress leads the list")
	assert.Equal(t, "first", entries[1].ID)
	assert.Equal(t, "second", entries[2].ID)
}

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)

	// Rounded down to whole minutes.
	assert.Equal(t, 24, durationMinutes(start, start.Add(24*time.Minute+59*time.Second)))
	assert.Equal(t, 25, durationMinutes(start, start.Add(25*time.Minute)))
	assert.Equal(t, 0, durationMinutes(start, start.Add(30*time.Second)))
}
