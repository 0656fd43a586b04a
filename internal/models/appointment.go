package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusBooked     AppointmentStatus = "booked"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusCheckedIn  AppointmentStatus = "checked_in"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
)

// Priority levels shared by appointments and queue entries.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Appointment represents a scheduled consultation slot between a devotee
// and a guruji.
type Appointment struct {
	BaseModel
	UserID      string            `gorm:"size:36;index" json:"userId"`
	GurujiID    string            `gorm:"size:36;index" json:"gurujiId"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     time.Time         `json:"endTime"`
	Status      AppointmentStatus `gorm:"size:20;default:'booked'" json:"status"`
	Priority    Priority          `gorm:"size:10;default:'normal'" json:"priority"`
	Reason      string            `gorm:"size:255" json:"reason"`
	Notes       string            `gorm:"type:text" json:"notes"`
	CheckedInAt *time.Time        `json:"checkedInAt,omitempty"`

	// Relations
	User   User `gorm:"foreignKey:UserID" json:"-"`
	Guruji User `gorm:"foreignKey:GurujiID" json:"-"`
}

// IsTerminal reports whether no further lifecycle transitions are possible.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}
