package repository

import (
	"context"

	"medverify/internal/domain/entity"

	"github.com/google/uuid"
)

// PatientQueryRepository is the query record store.
//
// Create rejects empty question text with ErrEmptyQuestion and assigns ID and CreatedAt.
// FindByID returns (nil, nil) when the id is unknown.
// FindByFilter sorts by created_at descending and returns the unpaginated total.
// Update and MarkVerified return ErrNotFound for unknown ids; MarkVerified returns
// ErrNotPending when the query was already decided.
type PatientQueryRepository interface {
	Create(ctx context.Context, query *entity.PatientQuery) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PatientQuery, error)
	FindByFilter(ctx context.Context, filter entity.QueryFilter, page entity.Page) ([]entity.PatientQuery, int64, error)
	FindHistory(ctx context.Context, filter entity.HistoryFilter) ([]entity.PatientQuery, error)
	Update(ctx context.Context, id uuid.UUID, patch entity.QueryPatch) (*entity.PatientQuery, error)
	MarkVerified(ctx context.Context, id uuid.UUID, v entity.Verification) (*entity.PatientQuery, error)
}
