package repository

import (
	"context"

	"medverify/internal/domain/entity"

	"github.com/google/uuid"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	// FindByActor returns one page of the actor's entries, newest first, and the total count.
	FindByActor(ctx context.Context, actorID uuid.UUID, page entity.Page) ([]entity.AuditLog, int64, error)
}
