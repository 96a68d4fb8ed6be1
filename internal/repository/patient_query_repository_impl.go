package repository

import (
	"context"
	"errors"
	"strings"

	"medverify/internal/domain/entity"
	domainRepo "medverify/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type patientQueryRepository struct {
	db *gorm.DB
}

func NewPatientQueryRepository(db *gorm.DB) domainRepo.PatientQueryRepository {
	return &patientQueryRepository{db: db}
}

func (r *patientQueryRepository) Create(ctx context.Context, query *entity.PatientQuery) error {
	if strings.TrimSpace(query.QuestionText) == "" {
		return domainRepo.ErrEmptyQuestion
	}
	if query.ID == uuid.Nil {
		query.ID = uuid.New()
	}
	if query.SpecialtyCategory == "" {
		query.SpecialtyCategory = entity.SpecialtyUncategorized
	}
	if query.VerificationStatus == "" {
		query.VerificationStatus = entity.VerificationStatusPending
	}
	return r.db.WithContext(ctx).Create(query).Error
}

func (r *patientQueryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PatientQuery, error) {
	var query entity.PatientQuery
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&query).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &query, nil
}

// FindByFilter returns one page of matching queries, newest first, plus the total match count.
// id breaks created_at ties so that pages never overlap.
func (r *patientQueryRepository) FindByFilter(ctx context.Context, filter entity.QueryFilter, page entity.Page) ([]entity.PatientQuery, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.PatientQuery{}).
		Scopes(queryFilterScope(filter)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	queries := []entity.PatientQuery{}
	if total == 0 {
		return queries, 0, nil
	}

	err = r.db.WithContext(ctx).
		Scopes(queryFilterScope(filter), pageScope(page)).
		Find(&queries).Error
	if err != nil {
		return nil, 0, err
	}
	return queries, total, nil
}

// FindHistory returns a patient's queries since filter.Since, oldest first.
func (r *patientQueryRepository) FindHistory(ctx context.Context, filter entity.HistoryFilter) ([]entity.PatientQuery, error) {
	var queries []entity.PatientQuery
	err := r.db.WithContext(ctx).
		Scopes(historyScope(filter)).
		Find(&queries).Error
	if err != nil {
		return nil, err
	}
	return queries, nil
}

func (r *patientQueryRepository) Update(ctx context.Context, id uuid.UUID, patch entity.QueryPatch) (*entity.PatientQuery, error) {
	if !patch.IsEmpty() {
		updates := map[string]interface{}{}
		if patch.DraftAnswer != nil {
			updates["draft_answer"] = *patch.DraftAnswer
		}
		if patch.SpecialtyCategory != nil {
			updates["specialty_category"] = *patch.SpecialtyCategory
		}

		err := r.db.WithContext(ctx).
			Model(&entity.PatientQuery{}).
			Where("id = ?", id).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}

	query, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if query == nil {
		return nil, domainRepo.ErrNotFound
	}
	return query, nil
}

// MarkVerified stamps the decision only while the query is still pending.
// A query that exists but was already decided is returned together with ErrNotPending.
func (r *patientQueryRepository) MarkVerified(ctx context.Context, id uuid.UUID, v entity.Verification) (*entity.PatientQuery, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.PatientQuery{}).
		Where("id = ? AND verification_status = ?", id, entity.VerificationStatusPending).
		Updates(map[string]interface{}{
			"verification_status":      v.Status,
			"clinician_comment":        v.Comment,
			"verified_by_clinician_id": v.ClinicianID,
			"verified_at":              v.VerifiedAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	query, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if query == nil {
		return nil, domainRepo.ErrNotFound
	}
	if result.RowsAffected == 0 {
		return query, domainRepo.ErrNotPending
	}
	return query, nil
}

func queryFilterScope(filter entity.QueryFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("verification_status = ?", filter.Status)
		if len(filter.Specialties) > 0 {
			db = db.Where("specialty_category IN ?", filter.Specialties)
		}
		return db
	}
}

func pageScope(page entity.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC").Order("id DESC").Offset(page.Offset()).Limit(page.Size)
	}
}

func historyScope(filter entity.HistoryFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("patient_address = ? AND created_at >= ?", filter.PatientAddress, filter.Since)
		if filter.ExcludeID != uuid.Nil {
			db = db.Where("id <> ?", filter.ExcludeID)
		}
		return db.Order("created_at ASC")
	}
}
