package usecase

import (
	"context"
	"errors"

	"medverify/internal/converter"
	"medverify/internal/delivery/dto"
	"medverify/internal/domain/entity"
	"medverify/internal/domain/repository"
	"medverify/internal/service"

	"github.com/sirupsen/logrus"
)

var (
	ErrClinicianNotFound = errors.New("clinician not found")
	ErrClerkIDMismatch   = errors.New("clerkId does not match the authenticated user")
	ErrInvalidSpecialty  = errors.New("invalid specialty")
)

type ClinicianProfileUsecase interface {
	Onboard(ctx context.Context, subject string, req *dto.OnboardClinicianRequest) (*dto.OnboardClinicianResponse, error)
	GetOnboardingStatus(ctx context.Context, subject string, clerkID string) (*dto.OnboardingStatusResponse, error)
}

type clinicianProfileUsecase struct {
	log           *logrus.Logger
	clinicianRepo repository.ClinicianProfileRepository
	auditService  service.AuditService
}

func NewClinicianProfileUsecase(
	log *logrus.Logger,
	clinicianRepo repository.ClinicianProfileRepository,
	auditService service.AuditService,
) ClinicianProfileUsecase {
	return &clinicianProfileUsecase{
		log:           log,
		clinicianRepo: clinicianRepo,
		auditService:  auditService,
	}
}

// Onboard creates the caller's clinician profile or overwrites it on repeat submissions.
func (u *clinicianProfileUsecase) Onboard(ctx context.Context, subject string, req *dto.OnboardClinicianRequest) (*dto.OnboardClinicianResponse, error) {
	if req.ClerkID != subject {
		return nil, ErrClerkIDMismatch
	}

	specialty, ok := entity.ParseSpecialty(req.Specialty)
	if !ok {
		return nil, ErrInvalidSpecialty
	}

	existing, err := u.clinicianRepo.FindByExternalID(ctx, req.ClerkID)
	if err != nil {
		u.log.Warnf("Failed to find clinician: %+v", err)
		return nil, err
	}

	if existing == nil {
		profile := &entity.ClinicianProfile{
			ExternalID:  req.ClerkID,
			Name:        req.Name,
			Email:       req.Email,
			Specialty:   specialty,
			PhoneNumber: req.PhoneNumber,
			IsOnboarded: true,
		}
		err := u.clinicianRepo.Create(ctx, profile)
		if err == nil {
			if err := u.auditService.LogCreate(ctx, &profile.ID, entity.AuditActionClinicianOnboard, "clinician_profile", profile.ID.String(), converter.ClinicianProfileToResponse(profile)); err != nil {
				u.log.Warnf("Failed to create audit log: %+v", err)
			}
			return &dto.OnboardClinicianResponse{
				Message:   "Clinician onboarded successfully",
				Clinician: converter.ClinicianProfileToResponse(profile),
			}, nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			u.log.Warnf("Failed to create clinician: %+v", err)
			return nil, err
		}

		// Lost a race with a concurrent submission; fall through to update
		existing, err = u.clinicianRepo.FindByExternalID(ctx, req.ClerkID)
		if err != nil || existing == nil {
			u.log.Warnf("Failed to reload clinician: %+v", err)
			if err == nil {
				err = ErrClinicianNotFound
			}
			return nil, err
		}
	}

	old := converter.ClinicianProfileToResponse(existing)
	existing.Name = req.Name
	existing.Email = req.Email
	existing.Specialty = specialty
	existing.PhoneNumber = req.PhoneNumber
	existing.IsOnboarded = true

	if err := u.clinicianRepo.Update(ctx, existing); err != nil {
		u.log.Warnf("Failed to update clinician: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, &existing.ID, entity.AuditActionClinicianOnboard, "clinician_profile", existing.ID.String(), old, converter.ClinicianProfileToResponse(existing)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return &dto.OnboardClinicianResponse{
		Message:   "Clinician updated successfully",
		Clinician: converter.ClinicianProfileToResponse(existing),
	}, nil
}

func (u *clinicianProfileUsecase) GetOnboardingStatus(ctx context.Context, subject string, clerkID string) (*dto.OnboardingStatusResponse, error) {
	if clerkID != subject {
		return nil, ErrClerkIDMismatch
	}

	profile, err := u.clinicianRepo.FindByExternalID(ctx, clerkID)
	if err != nil {
		u.log.Warnf("Failed to find clinician: %+v", err)
		return nil, err
	}
	if profile == nil {
		return &dto.OnboardingStatusResponse{IsOnboarded: false}, nil
	}

	return &dto.OnboardingStatusResponse{
		IsOnboarded: profile.IsOnboarded,
		User:        converter.ClinicianProfileToResponse(profile),
	}, nil
}

// findOnboardedClinician resolves the caller's profile or fails with ErrClinicianNotFound.
func findOnboardedClinician(ctx context.Context, log *logrus.Logger, repo repository.ClinicianProfileRepository, clerkID string) (*entity.ClinicianProfile, error) {
	clinician, err := repo.FindByExternalID(ctx, clerkID)
	if err != nil {
		log.Warnf("Failed to find clinician: %+v", err)
		return nil, err
	}
	if clinician == nil || !clinician.IsOnboarded {
		return nil, ErrClinicianNotFound
	}
	return clinician, nil
}
