package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleGuruji      Role = "guruji"
	RoleCoordinator Role = "coordinator"
	RoleUser        Role = "user"
)

// User represents a user in the system. Devotees carry RoleUser;
// gurujis are the practitioners consulted at the ashram.
type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password     string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName    string     `gorm:"size:100" json:"firstName"`
	LastName     string     `gorm:"size:100" json:"lastName"`
	Role         Role       `gorm:"size:20;default:'user'" json:"role"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber  string     `json:"phoneNumber,omitempty"`
	Address      string     `json:"address,omitempty"`
	ProfileImage string     `json:"profileImage,omitempty"`

	// Relations (not always preloaded)
	RefreshTokens      []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	GurujiAppointments []Appointment  `gorm:"foreignKey:GurujiID" json:"-"`
	UserAppointments   []Appointment  `gorm:"foreignKey:UserID" json:"-"`
	QueueEntries       []QueueEntry   `gorm:"foreignKey:UserID" json:"-"`
	Notifications      []Notification `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Role         Role       `json:"role"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber  string     `json:"phoneNumber,omitempty"`
	Address      string     `json:"address,omitempty"`
	ProfileImage string     `json:"profileImage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		DateOfBirth:  u.DateOfBirth,
		PhoneNumber:  u.PhoneNumber,
		Address:      u.Address,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
