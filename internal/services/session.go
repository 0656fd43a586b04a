package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ashram-app-server/internal/models"
)

// SessionService reads consultation sessions and lets the guruji record
// clinical details while a session is active. Lifecycle transitions
// (start/complete) belong to the QueueService; this service never touches
// EndTime or Status.
type SessionService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(db *gorm.DB, logger *zap.Logger) *SessionService {
	return &SessionService{db: db, logger: logger}
}

// GetByID loads a session with its remedies.
func (s *SessionService) GetByID(ctx context.Context, sessionID string) (*models.ConsultationSession, error) {
	var session models.ConsultationSession
	if err := s.db.WithContext(ctx).Preload("Remedies").First(&session, "id = ?", sessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewServiceError(CodeNotFound, "Consultation session not found")
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &session, nil
}

// ListForGuruji returns a guruji's sessions, newest first.
func (s *SessionService) ListForGuruji(ctx context.Context, gurujiID string, activeOnly bool) ([]models.ConsultationSession, error) {
	query := s.db.WithContext(ctx).Preload("Remedies").
		Where("guruji_id = ?", gurujiID).Order("start_time desc")
	if activeOnly {
		query = query.Where("status = ?", models.SessionActive)
	}
	var sessions []models.ConsultationSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// ListForUser returns a devotee's sessions, newest first.
func (s *SessionService) ListForUser(ctx context.Context, userID string) ([]models.ConsultationSession, error) {
	var sessions []models.ConsultationSession
	if err := s.db.WithContext(ctx).Preload("Remedies").
		Where("user_id = ?", userID).Order("start_time desc").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// SessionDetails carries the fields a guruji may update during a
// consultation. Empty fields are left untouched.
type SessionDetails struct {
	Symptoms   string
	Diagnosis  string
	Notes      string
	Recordings string
}

// UpdateDetails records symptoms/diagnosis/notes on an active session.
func (s *SessionService) UpdateDetails(ctx context.Context, sessionID string, details SessionDetails) (*models.ConsultationSession, error) {
	var session models.ConsultationSession
	if err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewServiceError(CodeNotFound, "Consultation session not found")
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !session.IsActive() {
		return nil, NewServiceError(CodeSessionNotActive, "Consultation session has already ended")
	}

	if details.Symptoms != "" {
		session.Symptoms = details.Symptoms
	}
	if details.Diagnosis != "" {
		session.Diagnosis = details.Diagnosis
	}
	if details.Notes != "" {
		session.Notes = details.Notes
	}
	if details.Recordings != "" {
		session.Recordings = details.Recordings
	}

	if err := s.db.WithContext(ctx).Save(&session).Error; err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.logger.Info("Session details updated", zap.String("session_id", session.ID))
	return &session, nil
}
