package repository

import (
	"context"

	"medverify/internal/domain/entity"
	domainRepo "medverify/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) domainRepo.AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *auditLogRepository) FindByActor(ctx context.Context, actorID uuid.UUID, page entity.Page) ([]entity.AuditLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.AuditLog{}).Scopes(actorScope(actorID)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []entity.AuditLog
	err := r.db.WithContext(ctx).
		Scopes(actorScope(actorID)).
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func actorScope(actorID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("actor_id = ?", actorID)
	}
}
