package repository

import (
	"context"
	"errors"

	"medverify/internal/domain/entity"
	domainRepo "medverify/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type clinicianProfileRepository struct {
	db *gorm.DB
}

func NewClinicianProfileRepository(db *gorm.DB) domainRepo.ClinicianProfileRepository {
	return &clinicianProfileRepository{db: db}
}

func (r *clinicianProfileRepository) Create(ctx context.Context, profile *entity.ClinicianProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Create(profile).Error
	if isDuplicateKeyError(err) {
		return domainRepo.ErrDuplicateKey
	}
	return err
}

func (r *clinicianProfileRepository) FindByExternalID(ctx context.Context, externalID string) (*entity.ClinicianProfile, error) {
	var profile entity.ClinicianProfile
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *clinicianProfileRepository) Update(ctx context.Context, profile *entity.ClinicianProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
