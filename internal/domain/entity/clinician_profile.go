package entity

import (
	"time"

	"github.com/google/uuid"
)

// ClinicianProfile represents a clinician who reviews drafted answers.
// ExternalID is the subject issued by the external identity provider.
type ClinicianProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ExternalID  string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"external_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Email       string    `gorm:"type:varchar(255);not null" json:"email"`
	Specialty   Specialty `gorm:"type:varchar(64);not null;index" json:"specialty"`
	PhoneNumber string    `gorm:"type:varchar(64)" json:"phone_number,omitempty"`
	IsOnboarded bool      `gorm:"not null;default:false" json:"is_onboarded"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ClinicianProfile) TableName() string {
	return "clinician_profiles"
}

// VisibleSpecialties returns the categories of pending queries this clinician triages.
func (c *ClinicianProfile) VisibleSpecialties() []Specialty {
	return []Specialty{c.Specialty, SpecialtyUncategorized}
}
