package services

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ashram-app-server/internal/models"
)

// Notifier writes state-change signals after successful transitions.
// Failures are logged and swallowed; a missed notification must never
// roll back a check-in or consultation.
type Notifier struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(db *gorm.DB, logger *zap.Logger) *Notifier {
	return &Notifier{db: db, logger: logger}
}

// Notify records a notification for the user. Fire and forget.
func (n *Notifier) Notify(ctx context.Context, userID, appointmentID string, kind models.NotificationKind, message string) {
	notification := models.Notification{
		UserID:        userID,
		AppointmentID: appointmentID,
		Kind:          kind,
		Message:       message,
	}
	if err := n.db.WithContext(ctx).Create(&notification).Error; err != nil {
		n.logger.Warn("Failed to record notification",
			zap.String("user_id", userID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return
	}
	n.logger.Info("Notification recorded",
		zap.String("user_id", userID),
		zap.String("kind", string(kind)))
}
