package repository

import (
	"context"

	"medverify/internal/domain/entity"
)

// PatientProfileRepository persists patient identity and onboarding progress.
// FindByPhoneNumber returns (nil, nil) when the address is unknown.
type PatientProfileRepository interface {
	Create(ctx context.Context, profile *entity.PatientProfile) error
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*entity.PatientProfile, error)
	Update(ctx context.Context, profile *entity.PatientProfile) error
}
