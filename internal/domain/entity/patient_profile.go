package entity

import "time"

// OnboardingState tracks a patient's progress through the name/age intake.
type OnboardingState string

const (
	OnboardingStateNew          OnboardingState = "new"
	OnboardingStateAwaitingName OnboardingState = "awaiting_name"
	OnboardingStateAwaitingAge  OnboardingState = "awaiting_age"
	OnboardingStateCompleted    OnboardingState = "completed"
)

// PatientProfile is keyed by the chat address the patient writes from.
type PatientProfile struct {
	PhoneNumber     string          `gorm:"type:varchar(64);primaryKey" json:"phone_number"`
	DisplayName     string          `gorm:"type:varchar(255)" json:"display_name,omitempty"`
	Age             *int            `json:"age,omitempty"`
	OnboardingState OnboardingState `gorm:"type:varchar(32);not null;default:'new';index" json:"onboarding_state"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

// IsCompleted checks if onboarding has finished
func (p *PatientProfile) IsCompleted() bool {
	return p.OnboardingState == OnboardingStateCompleted
}

// IsMidFlow reports whether the patient is being asked for name or age.
func (p *PatientProfile) IsMidFlow() bool {
	return p.OnboardingState == OnboardingStateAwaitingName || p.OnboardingState == OnboardingStateAwaitingAge
}
