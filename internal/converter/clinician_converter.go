package converter

import (
	"medverify/internal/delivery/dto"
	"medverify/internal/domain/entity"
)

// ClinicianProfileToResponse converts a ClinicianProfile entity to ClinicianResponse DTO
func ClinicianProfileToResponse(profile *entity.ClinicianProfile) *dto.ClinicianResponse {
	if profile == nil {
		return nil
	}

	return &dto.ClinicianResponse{
		ID:          profile.ID,
		ClerkID:     profile.ExternalID,
		Name:        profile.Name,
		Email:       profile.Email,
		Specialty:   string(profile.Specialty),
		PhoneNumber: profile.PhoneNumber,
		IsOnboarded: profile.IsOnboarded,
		CreatedAt:   profile.CreatedAt,
		UpdatedAt:   profile.UpdatedAt,
	}
}
