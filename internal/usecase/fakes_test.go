package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"medverify/internal/domain/entity"
	"medverify/internal/domain/repository"
	"medverify/internal/infrastructure/llm"
	"medverify/internal/infrastructure/messaging"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// --- patient profiles ---

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]entity.PatientProfile
	findErr  error
	// raced is stored just before the next Create, simulating a concurrent insert.
	raced *entity.PatientProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]entity.PatientProfile{}}
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile *entity.PatientProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.raced != nil {
		r.profiles[r.raced.PhoneNumber] = *r.raced
		r.raced = nil
	}
	if _, ok := r.profiles[profile.PhoneNumber]; ok {
		return repository.ErrDuplicateKey
	}
	r.profiles[profile.PhoneNumber] = *profile
	return nil
}

func (r *fakeProfileRepo) FindByPhoneNumber(ctx context.Context, phoneNumber string) (*entity.PatientProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.profiles[phoneNumber]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, profile *entity.PatientProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.PhoneNumber] = *profile
	return nil
}

func (r *fakeProfileRepo) get(address string) *entity.PatientProfile {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[address]
	if !ok {
		return nil
	}
	return &p
}

// --- patient queries ---

type fakeQueryRepo struct {
	mu        sync.Mutex
	queries   map[uuid.UUID]entity.PatientQuery
	clock     time.Time
	createErr error
	updateErr error
}

func newFakeQueryRepo() *fakeQueryRepo {
	return &fakeQueryRepo{
		queries: map[uuid.UUID]entity.PatientQuery{},
		clock:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *fakeQueryRepo) Create(ctx context.Context, query *entity.PatientQuery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if strings.TrimSpace(query.QuestionText) == "" {
		return repository.ErrEmptyQuestion
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
	if query.CreatedAt.IsZero() {
		r.clock = r.clock.Add(time.Second)
		query.CreatedAt = r.clock
	}
	r.queries[query.ID] = *query
	return nil
}

func (r *fakeQueryRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.PatientQuery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queries[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *fakeQueryRepo) FindByFilter(ctx context.Context, filter entity.QueryFilter, page entity.Page) ([]entity.PatientQuery, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := lo.Filter(lo.Values(r.queries), func(q entity.PatientQuery, _ int) bool {
		if q.VerificationStatus != filter.Status {
			return false
		}
		return len(filter.Specialties) == 0 || lo.Contains(filter.Specialties, q.SpecialtyCategory)
	})
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() > matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := page.Offset()
	if start >= len(matched) {
		return []entity.PatientQuery{}, total, nil
	}
	end := start + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeQueryRepo) FindHistory(ctx context.Context, filter entity.HistoryFilter) ([]entity.PatientQuery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := lo.Filter(lo.Values(r.queries), func(q entity.PatientQuery, _ int) bool {
		return q.PatientAddress == filter.PatientAddress && !q.CreatedAt.Before(filter.Since) && q.ID != filter.ExcludeID
	})
	sort.Slice(history, func(i, j int) bool { return history[i].CreatedAt.Before(history[j].CreatedAt) })
	return history, nil
}

func (r *fakeQueryRepo) Update(ctx context.Context, id uuid.UUID, patch entity.QueryPatch) (*entity.PatientQuery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	q, ok := r.queries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.DraftAnswer != nil {
		q.DraftAnswer = *patch.DraftAnswer
	}
	if patch.SpecialtyCategory != nil {
		q.SpecialtyCategory = *patch.SpecialtyCategory
	}
	r.queries[id] = q
	return &q, nil
}

func (r *fakeQueryRepo) MarkVerified(ctx context.Context, id uuid.UUID, v entity.Verification) (*entity.PatientQuery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !q.IsPending() {
		return &q, repository.ErrNotPending
	}
	clinicianID := v.ClinicianID
	verifiedAt := v.VerifiedAt
	q.VerificationStatus = v.Status
	q.ClinicianComment = v.Comment
	q.VerifiedByClinicianID = &clinicianID
	q.VerifiedAt = &verifiedAt
	r.queries[id] = q
	return &q, nil
}

func (r *fakeQueryRepo) all() []entity.PatientQuery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Values(r.queries)
}

// --- clinicians ---

type fakeClinicianRepo struct {
	mu         sync.Mutex
	clinicians map[string]entity.ClinicianProfile
}

func newFakeClinicianRepo(profiles ...entity.ClinicianProfile) *fakeClinicianRepo {
	r := &fakeClinicianRepo{clinicians: map[string]entity.ClinicianProfile{}}
	for _, p := range profiles {
		r.clinicians[p.ExternalID] = p
	}
	return r
}

func (r *fakeClinicianRepo) Create(ctx context.Context, profile *entity.ClinicianProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clinicians[profile.ExternalID]; ok {
		return repository.ErrDuplicateKey
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	r.clinicians[profile.ExternalID] = *profile
	return nil
}

func (r *fakeClinicianRepo) FindByExternalID(ctx context.Context, externalID string) (*entity.ClinicianProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.clinicians[externalID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeClinicianRepo) Update(ctx context.Context, profile *entity.ClinicianProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clinicians[profile.ExternalID] = *profile
	return nil
}

// --- collaborators ---

type sentMessage struct {
	To   string
	Body string
}

type fakeGateway struct {
	mu           sync.Mutex
	unconfigured bool
	status       messaging.DeliveryStatus
	sent         []sentMessage
}

func (g *fakeGateway) Configured() bool { return !g.unconfigured }

func (g *fakeGateway) Send(ctx context.Context, destination, body string) messaging.DeliveryResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentMessage{To: destination, Body: body})
	if g.status != "" && g.status != messaging.DeliverySent {
		return messaging.DeliveryResult{Status: g.status, Err: errors.New("delivery failed")}
	}
	return messaging.DeliveryResult{Status: messaging.DeliverySent, SID: "SM" + uuid.NewString()[:8]}
}

func (g *fakeGateway) last() sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.sent) == 0 {
		return sentMessage{}
	}
	return g.sent[len(g.sent)-1]
}

type fakeDrafter struct {
	draft    *llm.Draft
	err      error
	requests []llm.DraftRequest
}

func (d *fakeDrafter) Draft(ctx context.Context, req llm.DraftRequest) (*llm.Draft, error) {
	d.requests = append(d.requests, req)
	if d.err != nil {
		return nil, d.err
	}
	return d.draft, nil
}

type fakeGuard struct {
	mu      sync.Mutex
	claimed map[string]bool
	locks   int
	lockErr error
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{claimed: map[string]bool{}}
}

func (g *fakeGuard) ClaimMessage(ctx context.Context, messageSID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if messageSID == "" {
		return true, nil
	}
	if g.claimed[messageSID] {
		return false, nil
	}
	g.claimed[messageSID] = true
	return true, nil
}

func (g *fakeGuard) Unclaim(ctx context.Context, messageSID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claimed, messageSID)
	return nil
}

func (g *fakeGuard) Lock(ctx context.Context, address string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locks++
	return func() {}, g.lockErr
}

type auditEntry struct {
	Action   string
	EntityID string
	Old, New interface{}
}

type fakeAuditService struct {
	entries []auditEntry
	err     error
}

func (s *fakeAuditService) LogCreate(ctx context.Context, actorID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	s.entries = append(s.entries, auditEntry{Action: action, EntityID: entityID, New: newValue})
	return s.err
}

func (s *fakeAuditService) LogUpdate(ctx context.Context, actorID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	s.entries = append(s.entries, auditEntry{Action: action, EntityID: entityID, Old: oldValue, New: newValue})
	return s.err
}

type fakeAuditLogRepo struct {
	logs []entity.AuditLog
}

func (r *fakeAuditLogRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	log.ID = int64(len(r.logs) + 1)
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeAuditLogRepo) FindByActor(ctx context.Context, actorID uuid.UUID, page entity.Page) ([]entity.AuditLog, int64, error) {
	own := lo.Filter(r.logs, func(l entity.AuditLog, _ int) bool {
		return l.ActorID != nil && *l.ActorID == actorID
	})
	own = lo.Reverse(own)
	total := int64(len(own))
	return lo.Subset(own, page.Offset(), uint(page.Size)), total, nil
}
