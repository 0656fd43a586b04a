package models

import (
	"time"
)

// QueueEntryStatus represents the live state of an entry in a guruji's queue
type QueueEntryStatus string

const (
	QueueStatusWaiting    QueueEntryStatus = "waiting"
	QueueStatusInProgress QueueEntryStatus = "in_progress"
	QueueStatusCompleted  QueueEntryStatus = "completed"
)

// QueueEntry represents an appointment's position in a guruji's live queue.
// Position is the 1-based rank among waiting entries and is recomputed on
// every mutation of the same guruji's queue. At most one non-terminal entry
// exists per appointment.
type QueueEntry struct {
	BaseModel
	AppointmentID        string           `gorm:"size:36;index" json:"appointmentId"`
	UserID               string           `gorm:"size:36;index" json:"userId"`
	GurujiID             string           `gorm:"size:36;index" json:"gurujiId"`
	Position             int              `gorm:"index" json:"position"`
	Status               QueueEntryStatus `gorm:"size:20;default:'waiting'" json:"status"`
	Priority             Priority         `gorm:"size:10;default:'normal'" json:"priority"`
	EstimatedWaitMinutes int              `json:"estimatedWaitMinutes"`
	CheckedInAt          time.Time        `json:"checkedInAt"`
	Notes                string           `gorm:"type:text" json:"notes,omitempty"`

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	User        User        `gorm:"foreignKey:UserID" json:"-"`
	Guruji      User        `gorm:"foreignKey:GurujiID" json:"-"`
}

// IsActive reports whether the entry still occupies the queue.
func (s QueueEntryStatus) IsActive() bool {
	return s == QueueStatusWaiting || s == QueueStatusInProgress
}

// PriorityRank orders priorities for queue sorting; higher comes first.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityLow:
		return 0
	default: // normal, or anything unrecognized
		return 1
	}
}
