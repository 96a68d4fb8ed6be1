package usecase

import (
	"context"
	"errors"

	"medverify/internal/converter"
	"medverify/internal/delivery/dto"
	"medverify/internal/domain/entity"
	"medverify/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var ErrInvalidStatus = errors.New("status must be not_verified, verified or incorrect")

type ClinicianQueryUsecase interface {
	ListQueries(ctx context.Context, clerkID string, req *dto.ListQueriesRequest) (*dto.QueryListResponse, error)
	GetQuery(ctx context.Context, clerkID string, queryID uuid.UUID) (*dto.QueryResponse, error)
}

type clinicianQueryUsecase struct {
	log           *logrus.Logger
	queryRepo     repository.PatientQueryRepository
	clinicianRepo repository.ClinicianProfileRepository
}

func NewClinicianQueryUsecase(
	log *logrus.Logger,
	queryRepo repository.PatientQueryRepository,
	clinicianRepo repository.ClinicianProfileRepository,
) ClinicianQueryUsecase {
	return &clinicianQueryUsecase{
		log:           log,
		queryRepo:     queryRepo,
		clinicianRepo: clinicianRepo,
	}
}

// ListQueries routes pending queries by specialty; decided queries are visible to everyone.
func (u *clinicianQueryUsecase) ListQueries(ctx context.Context, clerkID string, req *dto.ListQueriesRequest) (*dto.QueryListResponse, error) {
	clinician, err := findOnboardedClinician(ctx, u.log, u.clinicianRepo, clerkID)
	if err != nil {
		return nil, err
	}

	status := entity.VerificationStatusPending
	if req.Status != "" {
		parsed, ok := entity.ParseVerificationStatus(req.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		status = parsed
	}

	filter := entity.QueryFilter{Status: status}
	if status == entity.VerificationStatusPending {
		filter.Specialties = clinician.VisibleSpecialties()
	}
	page := entity.NewPage(req.Page, req.Limit)

	queries, total, err := u.queryRepo.FindByFilter(ctx, filter, page)
	if err != nil {
		u.log.Warnf("Failed to list queries: %+v", err)
		return nil, err
	}

	return &dto.QueryListResponse{
		Queries:    converter.PatientQueriesToResponses(queries),
		Pagination: converter.PageToPagination(page, total),
	}, nil
}

func (u *clinicianQueryUsecase) GetQuery(ctx context.Context, clerkID string, queryID uuid.UUID) (*dto.QueryResponse, error) {
	clinician, err := findOnboardedClinician(ctx, u.log, u.clinicianRepo, clerkID)
	if err != nil {
		return nil, err
	}

	query, err := u.queryRepo.FindByID(ctx, queryID)
	if err != nil {
		u.log.Warnf("Failed to find query: %+v", err)
		return nil, err
	}
	if query == nil {
		return nil, ErrQueryNotFound
	}

	// Pending queries of other specialties are hidden the same way the listing hides them
	if query.IsPending() && !lo.Contains(clinician.VisibleSpecialties(), query.SpecialtyCategory) {
		return nil, ErrQueryNotFound
	}

	return converter.PatientQueryToResponse(query), nil
}
