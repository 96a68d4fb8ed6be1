package usecase

import (
	"context"
	"errors"

	"medverify/internal/delivery/dto"
	"medverify/internal/domain/entity"
	"medverify/internal/domain/repository"
	"medverify/internal/infrastructure/messaging"
	"medverify/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

var (
	ErrMessagingNotConfigured = errors.New("messaging channel is not configured")
	ErrMissingSender          = errors.New("sender address is required")
)

const (
	webhookStatusSuccess = "success"
	msgProcessed         = "Message processed"
	msgDuplicate         = "duplicate delivery ignored"
)

// MsgTryAgainLater answers an inbound message that could not be processed.
const MsgTryAgainLater = "Sorry, something went wrong on our side. Please send your message again in a moment."

type ChatWebhookUsecase interface {
	HandleInbound(ctx context.Context, req *dto.InboundMessageRequest) (*dto.WebhookResponse, error)
}

type chatWebhookUsecase struct {
	log         *logrus.Logger
	profileRepo repository.PatientProfileRepository
	drafting    QueryDraftingUsecase
	gateway     MessageGateway
	guard       WebhookGuard
}

func NewChatWebhookUsecase(
	log *logrus.Logger,
	profileRepo repository.PatientProfileRepository,
	drafting QueryDraftingUsecase,
	gateway MessageGateway,
	guard WebhookGuard,
) ChatWebhookUsecase {
	return &chatWebhookUsecase{
		log:         log,
		profileRepo: profileRepo,
		drafting:    drafting,
		gateway:     gateway,
		guard:       guard,
	}
}

func (u *chatWebhookUsecase) HandleInbound(ctx context.Context, req *dto.InboundMessageRequest) (*dto.WebhookResponse, error) {
	// Nothing is persisted unless a reply can be sent
	if !u.gateway.Configured() {
		metrics.RecordWebhookEvent("not_configured")
		return nil, ErrMessagingNotConfigured
	}

	address := messaging.NormalizeAddress(req.From)
	if address == "" {
		return nil, ErrMissingSender
	}

	claimed, err := u.guard.ClaimMessage(ctx, req.MessageSID)
	if err != nil {
		u.log.Warnf("Failed to deduplicate message %s, processing anyway: %+v", req.MessageSID, err)
	}
	if !claimed {
		metrics.RecordWebhookEvent("duplicate")
		return &dto.WebhookResponse{Status: webhookStatusSuccess, Message: msgDuplicate}, nil
	}

	release, err := u.guard.Lock(ctx, address)
	if err != nil {
		u.log.Warnf("Failed to lock %s, processing unserialized: %+v", address, err)
	}
	defer release()

	step, err := u.advance(ctx, address, req.Body)
	if err != nil {
		return nil, u.fail(ctx, req.MessageSID, address, err)
	}

	if step.HandOff {
		if err := u.drafting.DraftReply(ctx, step.Profile, req.Body); err != nil {
			return nil, u.fail(ctx, req.MessageSID, address, err)
		}
		metrics.RecordWebhookEvent("query")
		return &dto.WebhookResponse{Status: webhookStatusSuccess, Message: msgProcessed}, nil
	}

	u.reply(ctx, address, step.Reply)
	metrics.RecordWebhookEvent("onboarding")

	return &dto.WebhookResponse{Status: webhookStatusSuccess, Message: msgProcessed}, nil
}

// fail releases the delivery claim so a redelivery is processed again,
// and tells the patient the message was not handled.
func (u *chatWebhookUsecase) fail(ctx context.Context, messageSID, address string, err error) error {
	metrics.RecordWebhookEvent("error")
	if unclaimErr := u.guard.Unclaim(ctx, messageSID); unclaimErr != nil {
		u.log.Warnf("Failed to release claim on message %s: %+v", messageSID, unclaimErr)
	}
	u.reply(ctx, address, MsgTryAgainLater)
	return err
}

// advance runs the onboarding state machine and persists its outcome before any reply.
func (u *chatWebhookUsecase) advance(ctx context.Context, address, text string) (entity.OnboardingStep, error) {
	profile, err := u.profileRepo.FindByPhoneNumber(ctx, address)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return entity.OnboardingStep{}, err
	}

	step := entity.AdvanceOnboarding(profile, address, text)

	if step.Create {
		err := u.profileRepo.Create(ctx, step.Profile)
		if err == nil {
			u.recordTransition(nil, step.Profile)
			return step, nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			u.log.Warnf("Failed to create patient profile: %+v", err)
			return entity.OnboardingStep{}, err
		}

		// A concurrent delivery created the profile first; replay against it
		profile, err = u.profileRepo.FindByPhoneNumber(ctx, address)
		if err != nil || profile == nil {
			u.log.Warnf("Failed to reload patient profile: %+v", err)
			if err == nil {
				err = repository.ErrNotFound
			}
			return entity.OnboardingStep{}, err
		}
		step = entity.AdvanceOnboarding(profile, address, text)
	}

	if step.Persist {
		if err := u.profileRepo.Update(ctx, step.Profile); err != nil {
			u.log.Warnf("Failed to update patient profile: %+v", err)
			return entity.OnboardingStep{}, err
		}
		u.recordTransition(profile, step.Profile)
	}

	return step, nil
}

func (u *chatWebhookUsecase) recordTransition(from, to *entity.PatientProfile) {
	fromState := "absent"
	if from != nil {
		fromState = string(from.OnboardingState)
	}
	metrics.RecordOnboardingTransition(fromState, string(to.OnboardingState))
}

func (u *chatWebhookUsecase) reply(ctx context.Context, address, body string) {
	ctx, cancel := notifyContext(ctx)
	defer cancel()

	if result := u.gateway.Send(ctx, address, body); result.Status != messaging.DeliverySent {
		u.log.Warnf("Failed to deliver onboarding reply to %s: %s", address, result.Status)
	}
}
