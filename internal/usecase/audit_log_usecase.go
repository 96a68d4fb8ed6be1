package usecase

import (
	"context"

	"medverify/internal/converter"
	"medverify/internal/delivery/dto"
	"medverify/internal/domain/entity"
	"medverify/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// AuditLogUsecase exposes a clinician's own activity trail.
type AuditLogUsecase interface {
	ListOwnAuditLogs(ctx context.Context, clerkID string, req *dto.ListAuditLogsRequest) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	log           *logrus.Logger
	auditLogRepo  repository.AuditLogRepository
	clinicianRepo repository.ClinicianProfileRepository
}

func NewAuditLogUsecase(
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
	clinicianRepo repository.ClinicianProfileRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		log:           log,
		auditLogRepo:  auditLogRepo,
		clinicianRepo: clinicianRepo,
	}
}

func (u *auditLogUsecase) ListOwnAuditLogs(ctx context.Context, clerkID string, req *dto.ListAuditLogsRequest) (*dto.AuditLogListResponse, error) {
	clinician, err := u.clinicianRepo.FindByExternalID(ctx, clerkID)
	if err != nil {
		u.log.Warnf("Failed to find clinician: %+v", err)
		return nil, err
	}
	if clinician == nil {
		return nil, ErrClinicianNotFound
	}

	page := entity.NewPage(req.Page, req.Limit)
	logs, total, err := u.auditLogRepo.FindByActor(ctx, clinician.ID, page)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:       converter.AuditLogsToResponses(logs),
		Pagination: converter.PageToPagination(page, total),
	}, nil
}
