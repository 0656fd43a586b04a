package models

import (
	"time"
)

// NotificationKind identifies which lifecycle transition produced the signal.
type NotificationKind string

const (
	NotifyCheckedIn            NotificationKind = "checked_in"
	NotifyConsultationStarted  NotificationKind = "consultation_started"
	NotifyConsultationComplete NotificationKind = "consultation_completed"
)

// Notification is a state-change signal written after a successful queue
// transition. Delivery (email/SMS/push) is someone else's problem; these
// rows back the in-app notification panel.
type Notification struct {
	BaseModel
	UserID        string           `gorm:"size:36;index" json:"userId"`
	AppointmentID string           `gorm:"size:36;index" json:"appointmentId,omitempty"`
	Kind          NotificationKind `gorm:"size:40" json:"kind"`
	Message       string           `gorm:"type:text" json:"message"`
	ReadAt        *time.Time       `json:"readAt,omitempty"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
