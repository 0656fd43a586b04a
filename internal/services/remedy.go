package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ashram-app-server/internal/models"
)

// RemedyService attaches remedies to active consultation sessions.
type RemedyService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRemedyService creates a RemedyService.
func NewRemedyService(db *gorm.DB, logger *zap.Logger) *RemedyService {
	return &RemedyService{db: db, logger: logger}
}

// PrescriptionOverrides are optional per-prescription customizations
// layered over the template defaults.
type PrescriptionOverrides struct {
	CustomInstructions string
	CustomDosage       string
	CustomDuration     string
}

// Prescribe creates a remedy for the session from a template. The
// template itself is never mutated; the remedy snapshots the merged
// values and is immutable afterwards. A session may carry any number of
// remedies.
func (s *RemedyService) Prescribe(ctx context.Context, sessionID, templateID string, overrides PrescriptionOverrides) (*models.Remedy, error) {
	var session models.ConsultationSession
	if err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewServiceError(CodeNotFound, "Consultation session not found")
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !session.IsActive() {
		return nil, NewServiceError(CodeSessionNotActive,
			"Remedies can only be prescribed during an active consultation")
	}

	var template models.RemedyTemplate
	if err := s.db.WithContext(ctx).First(&template, "id = ?", templateID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewServiceError(CodeTemplateNotFound, "Remedy template not found")
		}
		return nil, fmt.Errorf("load template: %w", err)
	}

	remedy := mergeTemplate(template, overrides)
	remedy.SessionID = session.ID

	if err := s.db.WithContext(ctx).Create(&remedy).Error; err != nil {
		return nil, fmt.Errorf("create remedy: %w", err)
	}

	s.logger.Info("Remedy prescribed",
		zap.String("remedy_id", remedy.ID),
		zap.String("session_id", session.ID),
		zap.String("template_id", template.ID))

	return &remedy, nil
}

// ListForSession returns the remedies attached to a session.
func (s *RemedyService) ListForSession(ctx context.Context, sessionID string) ([]models.Remedy, error) {
	var remedies []models.Remedy
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).Order("created_at asc").
		Find(&remedies).Error; err != nil {
		return nil, fmt.Errorf("list remedies: %w", err)
	}
	return remedies, nil
}

// mergeTemplate layers overrides over the template defaults without
// touching the template.
func mergeTemplate(template models.RemedyTemplate, overrides PrescriptionOverrides) models.Remedy {
	remedy := models.Remedy{
		TemplateID:   template.ID,
		Name:         template.Name,
		Type:         template.Type,
		Instructions: template.Instructions,
		Dosage:       template.DefaultDosage,
		Duration:     template.DefaultDuration,
	}
	if overrides.CustomInstructions != "" {
		remedy.Instructions = overrides.CustomInstructions
	}
	if overrides.CustomDosage != "" {
		remedy.Dosage = overrides.CustomDosage
	}
	if overrides.CustomDuration != "" {
		remedy.Duration = overrides.CustomDuration
	}
	return remedy
}
