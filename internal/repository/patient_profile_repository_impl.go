package repository

import (
	"context"
	"errors"

	"medverify/internal/domain/entity"
	domainRepo "medverify/internal/domain/repository"

	"gorm.io/gorm"
)

type patientProfileRepository struct {
	db *gorm.DB
}

func NewPatientProfileRepository(db *gorm.DB) domainRepo.PatientProfileRepository {
	return &patientProfileRepository{db: db}
}

func (r *patientProfileRepository) Create(ctx context.Context, profile *entity.PatientProfile) error {
	err := r.db.WithContext(ctx).Create(profile).Error
	if isDuplicateKeyError(err) {
		return domainRepo.ErrDuplicateKey
	}
	return err
}

func (r *patientProfileRepository) FindByPhoneNumber(ctx context.Context, phoneNumber string) (*entity.PatientProfile, error) {
	var profile entity.PatientProfile
	err := r.db.WithContext(ctx).Where("phone_number = ?", phoneNumber).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Update writes every column so that clearing name and age on restart is persisted.
func (r *patientProfileRepository) Update(ctx context.Context, profile *entity.PatientProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
