package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ashram-app-server/internal/config"
	"ashram-app-server/internal/models"
)

// QueueService owns the live consultation queue. It is the only writer of
// queue positions, session end times and the appointment statuses derived
// from queue transitions. Mutations against the same guruji's queue are
// serialized with a per-guruji lock around a transaction; different
// gurujis' queues proceed in parallel.
type QueueService struct {
	db       *gorm.DB
	cfg      *config.Config
	notifier *Notifier
	logger   *zap.Logger

	mu          sync.Mutex
	gurujiLocks map[string]*sync.Mutex
}

// NewQueueService creates a QueueService.
func NewQueueService(db *gorm.DB, cfg *config.Config, notifier *Notifier, logger *zap.Logger) *QueueService {
	return &QueueService{
		db:          db,
		cfg:         cfg,
		notifier:    notifier,
		logger:      logger,
		gurujiLocks: map[string]*sync.Mutex{},
	}
}

// lockGuruji acquires the mutex for one guruji's queue and returns the
// unlock function.
func (s *QueueService) lockGuruji(gurujiID string) func() {
	s.mu.Lock()
	lock, ok := s.gurujiLocks[gurujiID]
	if !ok {
		lock = &sync.Mutex{}
		s.gurujiLocks[gurujiID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Join inserts a waiting entry for the appointment and recomputes the
// guruji's queue. Re-joining an appointment that already has an active
// entry is not an error: the existing entry is returned unchanged.
func (s *QueueService) Join(ctx context.Context, appointmentID string, priority models.Priority) (*models.QueueEntry, error) {
	var appointment models.Appointment
	if err := s.db.WithContext(ctx).First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewServiceError(CodeNotFound, "Appointment not found")
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appointment.Status.IsTerminal() {
		return nil, NewServiceError(CodeInvalidState,
			fmt.Sprintf("Appointment is %s and cannot join the queue", appointment.Status))
	}

	unlock := s.lockGuruji(appointment.GurujiID)
	defer unlock()

	// Idempotence: one non-terminal entry per appointment.
	var existing models.QueueEntry
	err := s.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at desc").
		First(&existing).Error
	if err == nil && existing.Status.IsActive() {
		return &existing, nil
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check existing queue entry: %w", err)
	}

	if priority == "" {
		priority = appointment.Priority
	}
	if priority == "" {
		priority = models.PriorityNormal
	}

	now := time.Now()
	entry := models.QueueEntry{
		AppointmentID: appointment.ID,
		UserID:        appointment.UserID,
		GurujiID:      appointment.GurujiID,
		Status:        models.QueueStatusWaiting,
		Priority:      priority,
		CheckedInAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("create queue entry: %w", err)
		}
		if appointment.Status == models.StatusBooked || appointment.Status == models.StatusConfirmed {
			appointment.Status = models.StatusCheckedIn
			appointment.CheckedInAt = &now
			if err := tx.Save(&appointment).Error; err != nil {
				return fmt.Errorf("update appointment: %w", err)
			}
		}
		return s.recomputeQueue(tx, appointment.GurujiID, &entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Queue entry created",
		zap.String("entry_id", entry.ID),
		zap.String("appointment_id", appointment.ID),
		zap.String("guruji_id", appointment.GurujiID),
		zap.Int("position", entry.Position))

	return &entry, nil
}

// Leave removes a waiting entry and recomputes the remaining positions.
// Leaving twice, leaving an id that never existed, or leaving a completed
// entry is a no-op success; the completed row stays as history.
func (s *QueueService) Leave(ctx context.Context, entryID string) error {
	var entry models.QueueEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return fmt.Errorf("load queue entry: %w", err)
	}

	unlock := s.lockGuruji(entry.GurujiID)
	defer unlock()

	// Re-read under the lock; a concurrent Leave may have won.
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return fmt.Errorf("load queue entry: %w", err)
	}
	action, err := leaveDecision(entry.Status)
	if err != nil {
		return err
	}
	if action == leaveNoop {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.QueueEntry{}, "id = ?", entry.ID).Error; err != nil {
			return fmt.Errorf("delete queue entry: %w", err)
		}
		// The devotee is no longer checked in; the appointment can be
		// checked in again within its window.
		if err := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", entry.AppointmentID, models.StatusCheckedIn).
			Updates(map[string]interface{}{"status": models.StatusConfirmed, "checked_in_at": nil}).Error; err != nil {
			return fmt.Errorf("revert appointment status: %w", err)
		}
		return s.recomputeQueue(tx, entry.GurujiID, nil)
	})
}

// ReleaseAppointment removes the appointment's waiting queue entry, if
// any, so the appointment can be cancelled without stranding a position.
// An in-progress entry refuses; no entry is a no-op.
func (s *QueueService) ReleaseAppointment(ctx context.Context, appointmentID string) error {
	var entry models.QueueEntry
	err := s.db.WithContext(ctx).
		Where("appointment_id = ? AND status IN ?", appointmentID, activeQueueStatuses).
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load queue entry: %w", err)
	}
	return s.Leave(ctx, entry.ID)
}

// StartConsultation moves a waiting entry to in-progress and opens its
// consultation session.
func (s *QueueService) StartConsultation(ctx context.Context, entryID string) (*models.ConsultationSession, error) {
	var entry models.QueueEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewServiceError(CodeNotFound, "Queue entry not found")
		}
		return nil, fmt.Errorf("load queue entry: %w", err)
	}

	unlock := s.lockGuruji(entry.GurujiID)
	defer unlock()

	if err := s.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error; err != nil {
		return nil, NewServiceError(CodeNotFound, "Queue entry not found")
	}
	if entry.Status == models.QueueStatusCompleted {
		return nil, NewServiceError(CodeAlreadyCompleted, "Consultation has already been completed")
	}
	if entry.Status != models.QueueStatusWaiting {
		return nil, NewServiceError(CodeInvalidState,
			fmt.Sprintf("Queue entry is %s; only waiting entries can start a consultation", entry.Status))
	}

	now := time.Now()
	session := models.ConsultationSession{
		AppointmentID: entry.AppointmentID,
		QueueEntryID:  entry.ID,
		UserID:        entry.UserID,
		GurujiID:      entry.GurujiID,
		StartTime:     now,
		Status:        models.SessionActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("create consultation session: %w", err)
		}
		entry.Status = models.QueueStatusInProgress
		entry.Position = 0
		entry.EstimatedWaitMinutes = 0
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("update queue entry: %w", err)
		}
		if err := tx.Model(&models.Appointment{}).
			Where("id = ?", entry.AppointmentID).
			Update("status", models.StatusInProgress).Error; err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		return s.recomputeQueue(tx, entry.GurujiID, nil)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Consultation started",
		zap.String("session_id", session.ID),
		zap.String("entry_id", entry.ID),
		zap.String("guruji_id", entry.GurujiID))
	s.notifier.Notify(ctx, entry.UserID, entry.AppointmentID,
		models.NotifyConsultationStarted, "Your consultation has started.")

	return &session, nil
}

// CompleteConsultation closes an in-progress consultation. Unless
// allowSkipRemedy is set, at least one remedy must have been prescribed.
func (s *QueueService) CompleteConsultation(ctx context.Context, entryID string, allowSkipRemedy bool) error {
	var entry models.QueueEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return NewServiceError(CodeNotFound, "Queue entry not found")
		}
		return fmt.Errorf("load queue entry: %w", err)
	}

	unlock := s.lockGuruji(entry.GurujiID)
	defer unlock()

	if err := s.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error; err != nil {
		return NewServiceError(CodeNotFound, "Queue entry not found")
	}
	if entry.Status == models.QueueStatusCompleted {
		return NewServiceError(CodeAlreadyCompleted, "Consultation has already been completed")
	}
	if entry.Status != models.QueueStatusInProgress {
		return NewServiceError(CodeInvalidState,
			fmt.Sprintf("Queue entry is %s; only in-progress consultations can be completed", entry.Status))
	}

	var session models.ConsultationSession
	if err := s.db.WithContext(ctx).
		Where("queue_entry_id = ? AND status = ?", entry.ID, models.SessionActive).
		First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return NewServiceError(CodeSessionNotActive, "No active consultation session for this queue entry")
		}
		return fmt.Errorf("load session: %w", err)
	}

	var remedyCount int64
	if err := s.db.WithContext(ctx).Model(&models.Remedy{}).
		Where("session_id = ?", session.ID).Count(&remedyCount).Error; err != nil {
		return fmt.Errorf("count remedies: %w", err)
	}
	if err := completionGate(remedyCount, allowSkipRemedy); err != nil {
		return err
	}

	now := time.Now()
	duration := durationMinutes(session.StartTime, now)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session.EndTime = &now
		session.DurationMinutes = &duration
		session.Status = models.SessionCompleted
		if err := tx.Save(&session).Error; err != nil {
			return fmt.Errorf("complete session: %w", err)
		}
		entry.Status = models.QueueStatusCompleted
		entry.Position = 0
		entry.EstimatedWaitMinutes = 0
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("update queue entry: %w", err)
		}
		if err := tx.Model(&models.Appointment{}).
			Where("id = ?", entry.AppointmentID).
			Update("status", models.StatusCompleted).Error; err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		return s.recomputeQueue(tx, entry.GurujiID, nil)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Consultation completed",
		zap.String("session_id", session.ID),
		zap.String("entry_id", entry.ID),
		zap.Int("duration_minutes", duration),
		zap.Int64("remedies", remedyCount))
	s.notifier.Notify(ctx, entry.UserID, entry.AppointmentID,
		models.NotifyConsultationComplete, "Your consultation has been completed.")

	return nil
}

// QueueStatus is the aggregate view of one guruji's queue, safe to poll.
type QueueStatus struct {
	GurujiID           string              `json:"gurujiId"`
	Waiting            int                 `json:"waiting"`
	InProgress         int                 `json:"inProgress"`
	CompletedToday     int                 `json:"completedToday"`
	AverageWaitMinutes int                 `json:"averageWaitMinutes"`
	Entries            []models.QueueEntry `json:"entries"`
}

// GetStatus aggregates the current queue for a guruji. Read-only and
// consistent with the latest committed state.
func (s *QueueService) GetStatus(ctx context.Context, gurujiID string) (*QueueStatus, error) {
	var entries []models.QueueEntry
	if err := s.db.WithContext(ctx).
		Where("guruji_id = ? AND status IN ?", gurujiID,
			[]models.QueueEntryStatus{models.QueueStatusWaiting, models.QueueStatusInProgress}).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load queue entries: %w", err)
	}

	startOfDay := time.Date(time.Now().Year(), time.Now().Month(), time.Now().Day(), 0, 0, 0, 0, time.Local)
	var completedToday int64
	if err := s.db.WithContext(ctx).Model(&models.ConsultationSession{}).
		Where("guruji_id = ? AND status = ? AND end_time >= ?", gurujiID, models.SessionCompleted, startOfDay).
		Count(&completedToday).Error; err != nil {
		return nil, fmt.Errorf("count completed sessions: %w", err)
	}

	status := &QueueStatus{
		GurujiID:       gurujiID,
		CompletedToday: int(completedToday),
	}

	var waiting, inProgress []models.QueueEntry
	var waitSum int
	for _, e := range entries {
		switch e.Status {
		case models.QueueStatusWaiting:
			waiting = append(waiting, e)
			waitSum += e.EstimatedWaitMinutes
		case models.QueueStatusInProgress:
			inProgress = append(inProgress, e)
		}
	}

	status.Waiting = len(waiting)
	status.InProgress = len(inProgress)
	status.Entries = statusEntries(inProgress, waiting)
	if len(waiting) > 0 {
		status.AverageWaitMinutes = waitSum / len(waiting)
	}

	return status, nil
}

// recomputeQueue reassigns 1-based positions and wait estimates over the
// waiting entries of one guruji. Must run inside the guruji's lock. When
// updated points at one of the rows, its in-memory copy receives the new
// position too.
func (s *QueueService) recomputeQueue(tx *gorm.DB, gurujiID string, updated *models.QueueEntry) error {
	var waiting []models.QueueEntry
	if err := tx.Where("guruji_id = ? AND status = ?", gurujiID, models.QueueStatusWaiting).
		Find(&waiting).Error; err != nil {
		return fmt.Errorf("load waiting entries: %w", err)
	}

	sortQueueEntries(waiting)
	assignPositions(waiting, s.cfg.Queue.AvgConsultationMinutes)

	for i := range waiting {
		if err := tx.Model(&models.QueueEntry{}).
			Where("id = ?", waiting[i].ID).
			Updates(map[string]interface{}{
				"position":               waiting[i].Position,
				"estimated_wait_minutes": waiting[i].EstimatedWaitMinutes,
			}).Error; err != nil {
			return fmt.Errorf("update position: %w", err)
		}
		if updated != nil && updated.ID == waiting[i].ID {
			updated.Position = waiting[i].Position
			updated.EstimatedWaitMinutes = waiting[i].EstimatedWaitMinutes
		}
	}
	return nil
}

// activeQueueStatuses are the statuses under which an appointment already
// holds a live position in the queue.
var activeQueueStatuses = []models.QueueEntryStatus{
	models.QueueStatusWaiting,
	models.QueueStatusInProgress,
}

// leaveAction is the outcome of a Leave call.
type leaveAction int

const (
	leaveNoop leaveAction = iota
	leaveDelete
)

// leaveDecision maps an entry's status to the Leave outcome. Only a
// waiting entry is removed; an active consultation refuses, and a
// completed entry stays untouched as the record of the visit.
func leaveDecision(status models.QueueEntryStatus) (leaveAction, error) {
	switch status {
	case models.QueueStatusWaiting:
		return leaveDelete, nil
	case models.QueueStatusInProgress:
		return leaveNoop, NewServiceError(CodeInvalidState, "Cannot leave the queue during an active consultation")
	default:
		return leaveNoop, nil
	}
}

// statusEntries builds the dashboard list: the consultation currently in
// progress first, then the waiting queue in serving order.
func statusEntries(inProgress, waiting []models.QueueEntry) []models.QueueEntry {
	sortQueueEntries(inProgress)
	sortQueueEntries(waiting)
	return append(inProgress, waiting...)
}

// sortQueueEntries orders entries by priority descending, then check-in
// time ascending, then id ascending. The id tie-break makes the order
// total even for equal timestamps.
func sortQueueEntries(entries []models.QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := models.PriorityRank(entries[i].Priority), models.PriorityRank(entries[j].Priority)
		if pi != pj {
			return pi > pj
		}
		if !entries[i].CheckedInAt.Equal(entries[j].CheckedInAt) {
			return entries[i].CheckedInAt.Before(entries[j].CheckedInAt)
		}
		return entries[i].ID < entries[j].ID
	})
}

// assignPositions writes 1-based positions and the derived wait estimate.
func assignPositions(entries []models.QueueEntry, avgConsultationMinutes int) {
	for i := range entries {
		entries[i].Position = i + 1
		entries[i].EstimatedWaitMinutes = i * avgConsultationMinutes
	}
}

// completionGate enforces the remedy-before-completion rule.
func completionGate(remedyCount int64, allowSkipRemedy bool) error {
	if remedyCount == 0 && !allowSkipRemedy {
		return NewServiceError(CodeRemedyRequired,
			"Remedy must be prescribed before completing consultation")
	}
	return nil
}

// durationMinutes returns the elapsed whole minutes between start and end.
func durationMinutes(start, end time.Time) int {
	return int(end.Sub(start).Minutes())
}
