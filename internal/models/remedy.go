package models

// RemedyType classifies catalog entries.
type RemedyType string

const (
	RemedyTypeMantra     RemedyType = "mantra"
	RemedyTypeAyurvedic  RemedyType = "ayurvedic"
	RemedyTypeRitual     RemedyType = "ritual"
	RemedyTypeMeditation RemedyType = "meditation"
	RemedyTypeLifestyle  RemedyType = "lifestyle"
)

// RemedyTemplate is a reusable catalog entry. Read-only from the
// consultation flow's perspective; managed by admins and gurujis.
type RemedyTemplate struct {
	BaseModel
	Name            string     `gorm:"size:255;not null" json:"name"`
	Type            RemedyType `gorm:"size:30" json:"type"`
	Category        string     `gorm:"size:100" json:"category"`
	Instructions    string     `gorm:"type:text" json:"instructions"`
	DefaultDosage   string     `gorm:"size:255" json:"defaultDosage"`
	DefaultDuration string     `gorm:"size:255" json:"defaultDuration"`
	IsActive        bool       `gorm:"default:true" json:"isActive"`
}

// Remedy links a consultation session to a template, with the template
// defaults already merged with any per-prescription overrides. Rows are
// historical prescriptions and are never updated after creation.
type Remedy struct {
	BaseModel
	SessionID    string     `gorm:"size:36;index" json:"sessionId"`
	TemplateID   string     `gorm:"size:36;index" json:"templateId"`
	Name         string     `gorm:"size:255" json:"name"`
	Type         RemedyType `gorm:"size:30" json:"type"`
	Instructions string     `gorm:"type:text" json:"instructions"`
	Dosage       string     `gorm:"size:255" json:"dosage"`
	Duration     string     `gorm:"size:255" json:"duration"`

	// Relations
	Session  ConsultationSession `gorm:"foreignKey:SessionID" json:"-"`
	Template RemedyTemplate      `gorm:"foreignKey:TemplateID" json:"-"`
}
