package repository

import (
	"context"

	"medverify/internal/domain/entity"
)

// ClinicianProfileRepository persists clinicians. FindByExternalID returns (nil, nil) when absent.
type ClinicianProfileRepository interface {
	Create(ctx context.Context, profile *entity.ClinicianProfile) error
	FindByExternalID(ctx context.Context, externalID string) (*entity.ClinicianProfile, error)
	Update(ctx context.Context, profile *entity.ClinicianProfile) error
}
