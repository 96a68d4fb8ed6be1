package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"medverify/internal/converter"
	"medverify/internal/delivery/dto"
	"medverify/internal/domain/entity"
	"medverify/internal/domain/repository"
	"medverify/internal/infrastructure/messaging"
	"medverify/internal/infrastructure/metrics"
	"medverify/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrQueryNotFound        = errors.New("query not found")
	ErrQueryAlreadyVerified = errors.New("query has already been verified")
	ErrInvalidQueryID       = errors.New("invalid query id")
	ErrInvalidDecision      = errors.New("status must be verified or incorrect")
)

type VerificationUsecase interface {
	VerifyQuery(ctx context.Context, clerkID string, req *dto.VerifyQueryRequest) (*dto.VerifyQueryResponse, error)
}

type verificationUsecase struct {
	log           *logrus.Logger
	queryRepo     repository.PatientQueryRepository
	clinicianRepo repository.ClinicianProfileRepository
	auditService  service.AuditService
	gateway       MessageGateway
	now           func() time.Time
}

func NewVerificationUsecase(
	log *logrus.Logger,
	queryRepo repository.PatientQueryRepository,
	clinicianRepo repository.ClinicianProfileRepository,
	auditService service.AuditService,
	gateway MessageGateway,
) VerificationUsecase {
	return &verificationUsecase{
		log:           log,
		queryRepo:     queryRepo,
		clinicianRepo: clinicianRepo,
		auditService:  auditService,
		gateway:       gateway,
		now:           time.Now,
	}
}

func (u *verificationUsecase) VerifyQuery(ctx context.Context, clerkID string, req *dto.VerifyQueryRequest) (*dto.VerifyQueryResponse, error) {
	clinician, err := findOnboardedClinician(ctx, u.log, u.clinicianRepo, clerkID)
	if err != nil {
		return nil, err
	}

	queryID, err := uuid.Parse(req.QueryID)
	if err != nil {
		return nil, ErrInvalidQueryID
	}

	decision, ok := entity.ParseVerificationStatus(req.Status)
	if !ok || !decision.IsDecision() {
		return nil, ErrInvalidDecision
	}

	comment := strings.TrimSpace(req.DoctorComment)
	if comment == "" {
		comment = messaging.DefaultComment(decision)
	}

	before, err := u.queryRepo.FindByID(ctx, queryID)
	if err != nil {
		u.log.Warnf("Failed to find query: %+v", err)
		return nil, err
	}
	if before == nil {
		return nil, ErrQueryNotFound
	}
	if !before.IsPending() {
		return nil, ErrQueryAlreadyVerified
	}

	updated, err := u.queryRepo.MarkVerified(ctx, queryID, entity.Verification{
		Status:      decision,
		Comment:     comment,
		ClinicianID: clinician.ID,
		VerifiedAt:  u.now().UTC(),
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrQueryNotFound
	case errors.Is(err, repository.ErrNotPending):
		return nil, ErrQueryAlreadyVerified
	case err != nil:
		u.log.Warnf("Failed to verify query: %+v", err)
		return nil, err
	}
	metrics.RecordVerification(string(decision))

	// Audit log - verification is already committed, failures are only logged
	if err := u.auditService.LogUpdate(ctx, &clinician.ID, entity.AuditActionQueryVerify, "patient_query", queryID.String(),
		converter.PatientQueryToResponse(before), converter.PatientQueryToResponse(updated)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.notifyPatient(ctx, updated, clinician.Specialty)

	return &dto.VerifyQueryResponse{
		Success: true,
		Message: "Query updated successfully",
		Query:   converter.PatientQueryToResponse(updated),
	}, nil
}

func (u *verificationUsecase) notifyPatient(ctx context.Context, query *entity.PatientQuery, specialty entity.Specialty) {
	ctx, cancel := notifyContext(ctx)
	defer cancel()

	result := u.gateway.Send(ctx, query.PatientAddress, messaging.VerificationSummary(query, specialty))
	if result.Status != messaging.DeliverySent {
		u.log.WithFields(logrus.Fields{
			"query_id": query.ID,
			"status":   result.Status,
		}).Warnf("Failed to notify patient of verification: %v", result.Err)
	}
}
