package usecase

import (
	"context"
	"strings"
	"time"

	"medverify/internal/domain/entity"
	"medverify/internal/domain/repository"
	"medverify/internal/infrastructure/llm"
	"medverify/internal/infrastructure/messaging"
	"medverify/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// QueryDraftingUsecase turns a completed patient's message into a stored query and a drafted reply.
type QueryDraftingUsecase interface {
	DraftReply(ctx context.Context, patient *entity.PatientProfile, question string) error
}

type queryDraftingUsecase struct {
	log           *logrus.Logger
	queryRepo     repository.PatientQueryRepository
	drafter       llm.Drafter
	gateway       MessageGateway
	historyWindow time.Duration
	now           func() time.Time
}

func NewQueryDraftingUsecase(
	log *logrus.Logger,
	queryRepo repository.PatientQueryRepository,
	drafter llm.Drafter,
	gateway MessageGateway,
	historyWindow time.Duration,
) QueryDraftingUsecase {
	return &queryDraftingUsecase{
		log:           log,
		queryRepo:     queryRepo,
		drafter:       drafter,
		gateway:       gateway,
		historyWindow: historyWindow,
		now:           time.Now,
	}
}

// DraftReply stores the question first so it survives any drafting failure.
// Only storage errors on the initial insert are returned; drafting and delivery
// failures end with an apology to the patient.
func (u *queryDraftingUsecase) DraftReply(ctx context.Context, patient *entity.PatientProfile, question string) error {
	address := patient.PhoneNumber
	question = strings.TrimSpace(question)
	if question == "" {
		u.notify(ctx, address, MsgEmptyQuestion)
		return nil
	}

	query := &entity.PatientQuery{
		PatientAddress: address,
		QuestionText:   question,
	}
	if err := u.queryRepo.Create(ctx, query); err != nil {
		u.log.Warnf("Failed to create patient query: %+v", err)
		return err
	}

	history, err := u.queryRepo.FindHistory(ctx, entity.HistoryFilter{
		PatientAddress: address,
		Since:          u.now().Add(-u.historyWindow),
		ExcludeID:      query.ID,
	})
	if err != nil {
		u.log.Warnf("Failed to load query history for %s: %+v", address, err)
		history = nil
	}

	start := time.Now()
	draft, err := u.drafter.Draft(ctx, llm.DraftRequest{
		SystemPrompt: buildDraftSystemPrompt(patient),
		History:      historyToMessages(history),
		Question:     question,
	})
	if err != nil {
		u.log.WithFields(logrus.Fields{
			"query_id":    query.ID,
			"status_code": llm.StatusCode(err),
		}).Warnf("Failed to draft answer: %+v", err)
		metrics.RecordDraft("failed", string(entity.SpecialtyUncategorized), time.Since(start))
		u.notify(ctx, address, MsgDraftFailed)
		return nil
	}

	answer := messaging.WithDisclaimer(draft.Answer)
	specialty := entity.ClassifySpecialty(draft.Category)
	if specialty == entity.SpecialtyUncategorized && draft.Category != "" {
		u.log.Infof("Unrecognized specialty %q for query %s", draft.Category, query.ID)
	}

	if _, err := u.queryRepo.Update(ctx, query.ID, entity.QueryPatch{
		DraftAnswer:       &answer,
		SpecialtyCategory: &specialty,
	}); err != nil {
		u.log.Warnf("Failed to save draft for query %s: %+v", query.ID, err)
		metrics.RecordDraft("failed", string(specialty), time.Since(start))
		u.notify(ctx, address, MsgDraftFailed)
		return nil
	}

	metrics.RecordDraft("drafted", string(specialty), time.Since(start))
	u.notify(ctx, address, answer)
	return nil
}

func (u *queryDraftingUsecase) notify(ctx context.Context, address, body string) {
	ctx, cancel := notifyContext(ctx)
	defer cancel()

	if result := u.gateway.Send(ctx, address, body); result.Status != messaging.DeliverySent {
		u.log.Warnf("Failed to deliver reply to %s: %s", address, result.Status)
	}
}

// historyToMessages replays earlier questions and their drafts, disclaimers stripped.
func historyToMessages(history []entity.PatientQuery) []llm.Message {
	messages := make([]llm.Message, 0, len(history)*2)
	for _, h := range history {
		messages = append(messages, llm.Message{Role: "user", Content: h.QuestionText})
		if h.HasDraft() {
			messages = append(messages, llm.Message{Role: "assistant", Content: messaging.StripDisclaimer(h.DraftAnswer)})
		}
	}
	return messages
}
