package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type OnboardClinicianRequest struct {
	ClerkID     string `json:"clerkId" validate:"required"`
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Email       string `json:"email" validate:"required,email"`
	Specialty   string `json:"specialty" validate:"required,specialty"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=64"`
}

// Response DTOs

type ClinicianResponse struct {
	ID          uuid.UUID `json:"id"`
	ClerkID     string    `json:"clerkId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Specialty   string    `json:"specialty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	IsOnboarded bool      `json:"isOnboarded"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type OnboardClinicianResponse struct {
	Message   string             `json:"message"`
	Clinician *ClinicianResponse `json:"clinician"`
}

type OnboardingStatusResponse struct {
	IsOnboarded bool               `json:"isOnboarded"`
	User        *ClinicianResponse `json:"user"`
}
