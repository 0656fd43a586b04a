package models

import (
	"time"
)

// SessionStatus is stored explicitly rather than derived from EndTime so
// every reader agrees on whether a session is still open.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// ConsultationSession is the record of an in-progress or finished
// consultation. Created when a queue entry starts; EndTime and
// DurationMinutes are set exactly once, on completion, by the queue
// service and nothing else.
type ConsultationSession struct {
	BaseModel
	AppointmentID   string        `gorm:"size:36;index" json:"appointmentId"`
	QueueEntryID    string        `gorm:"size:36;index" json:"queueEntryId"`
	UserID          string        `gorm:"size:36;index" json:"userId"`
	GurujiID        string        `gorm:"size:36;index" json:"gurujiId"`
	StartTime       time.Time     `json:"startTime"`
	EndTime         *time.Time    `json:"endTime,omitempty"`
	DurationMinutes *int          `json:"durationMinutes,omitempty"`
	Status          SessionStatus `gorm:"size:20;default:'active'" json:"status"`
	Symptoms        string        `gorm:"type:text" json:"symptoms,omitempty"`
	Diagnosis       string        `gorm:"type:text" json:"diagnosis,omitempty"`
	Notes           string        `gorm:"type:text" json:"notes,omitempty"`
	Recordings      string        `gorm:"type:text" json:"recordings,omitempty"` // opaque JSON list

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	User        User        `gorm:"foreignKey:UserID" json:"-"`
	Guruji      User        `gorm:"foreignKey:GurujiID" json:"-"`
	Remedies    []Remedy    `gorm:"foreignKey:SessionID" json:"remedies,omitempty"`
}

// IsActive reports whether the session can still be modified.
func (s *ConsultationSession) IsActive() bool {
	return s.Status == SessionActive && s.EndTime == nil
}
