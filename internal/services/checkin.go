package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ashram-app-server/internal/config"
	"ashram-app-server/internal/geo"
	"ashram-app-server/internal/models"
)

// CheckInService validates a scanned QR code (or typed location code)
// against the geofence and the appointment's time window, then hands the
// appointment to the queue.
type CheckInService struct {
	db        *gorm.DB
	cfg       *config.Config
	queue     *QueueService
	locations *LocationRegistry
	notifier  *Notifier
	logger    *zap.Logger
}

// NewCheckInService creates a CheckInService.
func NewCheckInService(db *gorm.DB, cfg *config.Config, queue *QueueService, locations *LocationRegistry, notifier *Notifier, logger *zap.Logger) *CheckInService {
	return &CheckInService{
		db:        db,
		cfg:       cfg,
		queue:     queue,
		locations: locations,
		notifier:  notifier,
		logger:    logger,
	}
}

// CheckInResult is returned to the scanning device on success.
type CheckInResult struct {
	AppointmentID        string  `json:"appointmentId"`
	QueueEntryID         string  `json:"queueEntryId"`
	QueuePosition        int     `json:"queuePosition"`
	EstimatedWaitMinutes int     `json:"estimatedWaitMinutes"`
	LocationName         string  `json:"locationName"`
	DistanceMeters       float64 `json:"distanceMeters"`
	Message              string  `json:"message"`
}

// ProcessCheckIn runs the full check-in gate for one scan attempt.
// Proximity is a hard gate: missing coordinates fail rather than fall
// back. Re-scanning an already checked-in appointment returns the
// existing position unchanged.
func (s *CheckInService) ProcessCheckIn(ctx context.Context, userID, code string, coords *geo.Coordinates, now time.Time) (*CheckInResult, error) {
	location, ok := s.locations.Resolve(ParseCheckInCode(code))
	if !ok {
		return nil, NewServiceError(CodeUnknownLocation, "Scanned code does not match a known check-in location")
	}

	if coords == nil {
		return nil, NewServiceError(CodeLocationRequired,
			"Location access is required to check in. Please enable location services and try again.")
	}

	proximity, err := geo.ValidateProximity(*coords, location.Coordinates, s.cfg.Ashram.CheckInRadiusM)
	if err != nil {
		var geoErr *geo.Error
		if errors.As(err, &geoErr) {
			return nil, NewServiceError(ErrorCode(geoErr.Code), geoErr.Message)
		}
		return nil, fmt.Errorf("validate proximity: %w", err)
	}
	if !proximity.WithinRadius {
		return nil, NewServiceError(CodeOutOfRange,
			fmt.Sprintf("You are %.0f meters from %s; check-in requires being within %.0f meters",
				proximity.DistanceMeters, location.Name, s.cfg.Ashram.CheckInRadiusM)).
			WithDetail("distanceMeters", proximity.DistanceMeters).
			WithDetail("radiusMeters", s.cfg.Ashram.CheckInRadiusM)
	}

	appointments, err := s.todaysAppointments(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if len(appointments) == 0 {
		return nil, NewServiceError(CodeNoAppointmentToday, "You have no appointment scheduled for today")
	}

	// Idempotent re-scan: an appointment already in the queue answers with
	// its current position, even if the window has since closed.
	if existing, err := s.activeEntry(ctx, appointments); err != nil {
		return nil, err
	} else if existing != nil {
		return &CheckInResult{
			AppointmentID:        existing.AppointmentID,
			QueueEntryID:         existing.ID,
			QueuePosition:        existing.Position,
			EstimatedWaitMinutes: existing.EstimatedWaitMinutes,
			LocationName:         location.Name,
			DistanceMeters:       proximity.DistanceMeters,
			Message:              fmt.Sprintf("Already checked in. Your queue position is %d.", existing.Position),
		}, nil
	}

	appointment, _ := matchWindow(appointments, now, s.cfg.Ashram.CheckInEarlyMin, s.cfg.Ashram.CheckInLateMin)
	if appointment == nil {
		nearest, nearestWindow := nearestAppointment(appointments, now, s.cfg.Ashram.CheckInEarlyMin, s.cfg.Ashram.CheckInLateMin)
		return nil, NewServiceError(CodeOutsideTimeWindow,
			fmt.Sprintf("Check-in for your %s appointment is open from %s to %s",
				nearest.StartTime.Format("15:04"),
				nearestWindow.Start.Format("15:04"),
				nearestWindow.End.Format("15:04"))).
			WithDetail("appointmentId", nearest.ID).
			WithDetail("windowStart", nearestWindow.Start).
			WithDetail("windowEnd", nearestWindow.End)
	}

	entry, err := s.queue.Join(ctx, appointment.ID, appointment.Priority)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Check-in accepted",
		zap.String("user_id", userID),
		zap.String("appointment_id", appointment.ID),
		zap.String("location", location.Code),
		zap.Float64("distance_m", proximity.DistanceMeters),
		zap.Int("position", entry.Position))
	s.notifier.Notify(ctx, userID, appointment.ID, models.NotifyCheckedIn,
		fmt.Sprintf("Checked in at %s. You are number %d in the queue.", location.Name, entry.Position))

	return &CheckInResult{
		AppointmentID:        appointment.ID,
		QueueEntryID:         entry.ID,
		QueuePosition:        entry.Position,
		EstimatedWaitMinutes: entry.EstimatedWaitMinutes,
		LocationName:         location.Name,
		DistanceMeters:       proximity.DistanceMeters,
		Message:              fmt.Sprintf("Checked in successfully. Your queue position is %d.", entry.Position),
	}, nil
}

// activeEntry finds a non-terminal queue entry for any of the given
// appointments, or nil when none exists.
func (s *CheckInService) activeEntry(ctx context.Context, appointments []models.Appointment) (*models.QueueEntry, error) {
	ids := make([]string, len(appointments))
	for i, a := range appointments {
		ids[i] = a.ID
	}

	var entry models.QueueEntry
	err := s.db.WithContext(ctx).
		Where("appointment_id IN ? AND status IN ?", ids, activeQueueStatuses).
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check active queue entry: %w", err)
	}
	return &entry, nil
}

// todaysAppointments loads the user's non-terminal appointments whose
// start time falls on the same calendar day as now.
func (s *CheckInService) todaysAppointments(ctx context.Context, userID string, now time.Time) ([]models.Appointment, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	var appointments []models.Appointment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND start_time >= ? AND start_time < ? AND status IN ?",
			userID, startOfDay, endOfDay,
			[]models.AppointmentStatus{models.StatusBooked, models.StatusConfirmed, models.StatusCheckedIn}).
		Order("start_time asc").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("load today's appointments: %w", err)
	}
	return appointments, nil
}

// CheckInWindow is the interval during which an appointment accepts
// check-in. Both ends are inclusive.
type CheckInWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the window, boundaries included.
func (w CheckInWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// WindowFor computes the check-in window around an appointment start time.
func WindowFor(start time.Time, earlyMinutes, lateMinutes int) CheckInWindow {
	return CheckInWindow{
		Start: start.Add(-time.Duration(earlyMinutes) * time.Minute),
		End:   start.Add(time.Duration(lateMinutes) * time.Minute),
	}
}

// matchWindow returns the first appointment whose check-in window contains
// now, or nil when none does.
func matchWindow(appointments []models.Appointment, now time.Time, earlyMin, lateMin int) (*models.Appointment, CheckInWindow) {
	for i := range appointments {
		w := WindowFor(appointments[i].StartTime, earlyMin, lateMin)
		if w.Contains(now) {
			return &appointments[i], w
		}
	}
	return nil, CheckInWindow{}
}

// nearestAppointment picks the appointment whose start time is closest to
// now, for the OUTSIDE_TIME_WINDOW message.
func nearestAppointment(appointments []models.Appointment, now time.Time, earlyMin, lateMin int) (*models.Appointment, CheckInWindow) {
	best := &appointments[0]
	bestDelta := absDuration(appointments[0].StartTime.Sub(now))
	for i := 1; i < len(appointments); i++ {
		delta := absDuration(appointments[i].StartTime.Sub(now))
		if delta < bestDelta {
			best = &appointments[i]
			bestDelta = delta
		}
	}
	return best, WindowFor(best.StartTime, earlyMin, lateMin)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
