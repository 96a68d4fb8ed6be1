package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"medverify/internal/delivery/dto"
	"medverify/internal/delivery/http/middleware"
	"medverify/internal/usecase"
	"medverify/pkg/response"
	"medverify/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func authenticated(req *http.Request, subject string) *http.Request {
	return req.WithContext(middleware.WithSubject(req.Context(), subject))
}

// --- webhook ---

type fakeWebhookUsecase struct {
	got  *dto.InboundMessageRequest
	resp *dto.WebhookResponse
	err  error
}

func (f *fakeWebhookUsecase) HandleInbound(ctx context.Context, req *dto.InboundMessageRequest) (*dto.WebhookResponse, error) {
	f.got = req
	return f.resp, f.err
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestWebhookHandler_ReceiveWhatsApp(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		ucErr      error
		wantCode   int
		wantStatus string
	}{
		{"processed", url.Values{"From": {"whatsapp:+1555"}, "Body": {"hi"}, "MessageSid": {"SM1"}}, nil, http.StatusOK, "success"},
		{"missing sender", url.Values{"Body": {"hi"}}, nil, http.StatusBadRequest, "error"},
		{"not configured", url.Values{"From": {"whatsapp:+1555"}, "Body": {"hi"}}, usecase.ErrMessagingNotConfigured, http.StatusServiceUnavailable, "error"},
		{"store failure", url.Values{"From": {"whatsapp:+1555"}, "Body": {"hi"}}, errors.New("db down"), http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeWebhookUsecase{resp: &dto.WebhookResponse{Status: "success", Message: "Message processed"}, err: tt.ucErr}
			h := NewWebhookHandler(uc, validator.NewValidator(), newTestLogger())
			rec := httptest.NewRecorder()

			h.ReceiveWhatsApp(rec, postForm("/api/webhook/whatsapp", tt.form))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			var body response.StatusResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, body.Status)
			}
		})
	}

	t.Run("form fields reach the usecase", func(t *testing.T) {
		uc := &fakeWebhookUsecase{resp: &dto.WebhookResponse{Status: "success"}}
		h := NewWebhookHandler(uc, validator.NewValidator(), newTestLogger())

		h.ReceiveWhatsApp(httptest.NewRecorder(), postForm("/api/webhook/whatsapp", url.Values{
			"From": {"whatsapp:+1555"}, "Body": {"my head hurts"}, "MessageSid": {"SM9"},
		}))

		if uc.got == nil || uc.got.From != "whatsapp:+1555" || uc.got.Body != "my head hurts" || uc.got.MessageSID != "SM9" {
			t.Errorf("unexpected request %+v", uc.got)
		}
	})
}

// --- clinician queries ---

type fakeQueryUsecase struct {
	listReq *dto.ListQueriesRequest
	listErr error
	getErr  error
}

func (f *fakeQueryUsecase) ListQueries(ctx context.Context, clerkID string, req *dto.ListQueriesRequest) (*dto.QueryListResponse, error) {
	f.listReq = req
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &dto.QueryListResponse{Queries: []dto.QueryResponse{}, Pagination: dto.PaginationResponse{Page: 1, Limit: 10}}, nil
}

func (f *fakeQueryUsecase) GetQuery(ctx context.Context, clerkID string, queryID uuid.UUID) (*dto.QueryResponse, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dto.QueryResponse{ID: queryID}, nil
}

type fakeVerificationUsecase struct {
	err error
}

func (f *fakeVerificationUsecase) VerifyQuery(ctx context.Context, clerkID string, req *dto.VerifyQueryRequest) (*dto.VerifyQueryResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.VerifyQueryResponse{Success: true, Message: "Query updated successfully"}, nil
}

func TestClinicianQueryHandler_ListQueries(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		subject  string
		ucErr    error
		wantCode int
	}{
		{"defaults", "", "user_1", nil, http.StatusOK},
		{"explicit page", "?status=verified&page=2&limit=5", "user_1", nil, http.StatusOK},
		{"non numeric page", "?page=two", "user_1", nil, http.StatusBadRequest},
		{"limit too large", "?limit=500", "user_1", nil, http.StatusBadRequest},
		{"invalid status", "?status=archived", "user_1", usecase.ErrInvalidStatus, http.StatusBadRequest},
		{"unknown clinician", "", "user_1", usecase.ErrClinicianNotFound, http.StatusNotFound},
		{"unauthenticated", "", "", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeQueryUsecase{listErr: tt.ucErr}
			h := NewClinicianQueryHandler(uc, &fakeVerificationUsecase{}, validator.NewValidator())
			req := httptest.NewRequest(http.MethodGet, "/api/clinician/queries"+tt.query, nil)
			if tt.subject != "" {
				req = authenticated(req, tt.subject)
			}
			rec := httptest.NewRecorder()

			h.ListQueries(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("query params parsed", func(t *testing.T) {
		uc := &fakeQueryUsecase{}
		h := NewClinicianQueryHandler(uc, &fakeVerificationUsecase{}, validator.NewValidator())

		h.ListQueries(httptest.NewRecorder(), authenticated(httptest.NewRequest(http.MethodGet, "/api/clinician/queries?status=incorrect&page=3&limit=20", nil), "user_1"))

		if uc.listReq.Status != "incorrect" || uc.listReq.Page != 3 || uc.listReq.Limit != 20 {
			t.Errorf("unexpected request %+v", uc.listReq)
		}
	})
}

func TestClinicianQueryHandler_GetQuery(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name     string
		id       string
		ucErr    error
		wantCode int
	}{
		{"found", id.String(), nil, http.StatusOK},
		{"malformed id", "nope", nil, http.StatusBadRequest},
		{"not found", id.String(), usecase.ErrQueryNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewClinicianQueryHandler(&fakeQueryUsecase{getErr: tt.ucErr}, &fakeVerificationUsecase{}, validator.NewValidator())
			req := authenticated(httptest.NewRequest(http.MethodGet, "/api/clinician/queries/"+tt.id, nil), "user_1")
			req = mux.SetURLVars(req, map[string]string{"id": tt.id})
			rec := httptest.NewRecorder()

			h.GetQuery(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestClinicianQueryHandler_VerifyQuery(t *testing.T) {
	validID := uuid.NewString()
	tests := []struct {
		name     string
		body     string
		ucErr    error
		wantCode int
	}{
		{"verified", `{"queryId":"` + validID + `","status":"verified"}`, nil, http.StatusOK},
		{"missing fields", `{}`, nil, http.StatusBadRequest},
		{"bad json", `{"queryId":`, nil, http.StatusBadRequest},
		{"pending is not a decision", `{"queryId":"` + validID + `","status":"not_verified"}`, nil, http.StatusBadRequest},
		{"query missing", `{"queryId":"` + validID + `","status":"incorrect"}`, usecase.ErrQueryNotFound, http.StatusNotFound},
		{"clinician missing", `{"queryId":"` + validID + `","status":"incorrect"}`, usecase.ErrClinicianNotFound, http.StatusNotFound},
		{"already decided", `{"queryId":"` + validID + `","status":"incorrect"}`, usecase.ErrQueryAlreadyVerified, http.StatusConflict},
		{"store failure", `{"queryId":"` + validID + `","status":"verified"}`, errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewClinicianQueryHandler(&fakeQueryUsecase{}, &fakeVerificationUsecase{err: tt.ucErr}, validator.NewValidator())
			req := authenticated(httptest.NewRequest(http.MethodPost, "/api/clinician/queries/verify", strings.NewReader(tt.body)), "user_1")
			rec := httptest.NewRecorder()

			h.VerifyQuery(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}

// --- clinician onboarding ---

type fakeClinicianUsecase struct {
	onboardCalled bool
	statusErr     error
	statusCalls   int
}

func (f *fakeClinicianUsecase) Onboard(ctx context.Context, subject string, req *dto.OnboardClinicianRequest) (*dto.OnboardClinicianResponse, error) {
	f.onboardCalled = true
	return &dto.OnboardClinicianResponse{Message: "Clinician onboarded successfully"}, nil
}

func (f *fakeClinicianUsecase) GetOnboardingStatus(ctx context.Context, subject string, clerkID string) (*dto.OnboardingStatusResponse, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &dto.OnboardingStatusResponse{IsOnboarded: false}, nil
}

func TestClinicianHandler_Onboard(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCode   int
		wantCalled bool
	}{
		{"valid", `{"clerkId":"user_1","name":"Dr. Lin","email":"lin@example.com","specialty":"cardiology"}`, http.StatusOK, true},
		{"foreign clerk id", `{"clerkId":"user_2","name":"Dr. Lin","email":"lin@example.com","specialty":"Cardiology"}`, http.StatusUnauthorized, false},
		{"foreign clerk id with bad fields", `{"clerkId":"user_2"}`, http.StatusUnauthorized, false},
		{"unknown specialty", `{"clerkId":"user_1","name":"Dr. Lin","email":"lin@example.com","specialty":"Astrology"}`, http.StatusBadRequest, false},
		{"missing fields", `{"clerkId":"user_1"}`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeClinicianUsecase{}
			h := NewClinicianHandler(uc, validator.NewValidator())
			req := authenticated(httptest.NewRequest(http.MethodPost, "/api/clinician/onboard", strings.NewReader(tt.body)), "user_1")
			rec := httptest.NewRecorder()

			h.Onboard(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if uc.onboardCalled != tt.wantCalled {
				t.Errorf("expected usecase called=%v, got %v", tt.wantCalled, uc.onboardCalled)
			}
		})
	}
}

func TestClinicianHandler_GetOnboardingStatus(t *testing.T) {
	h := NewClinicianHandler(&fakeClinicianUsecase{}, validator.NewValidator())
	rec := httptest.NewRecorder()

	h.GetOnboardingStatus(rec, authenticated(httptest.NewRequest(http.MethodGet, "/api/clinician/onboard/status?clerkId=user_1", nil), "user_1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"isOnboarded":false`) || !strings.Contains(rec.Body.String(), `"user":null`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	h = NewClinicianHandler(&fakeClinicianUsecase{statusErr: usecase.ErrClerkIDMismatch}, validator.NewValidator())
	rec = httptest.NewRecorder()
	h.GetOnboardingStatus(rec, authenticated(httptest.NewRequest(http.MethodGet, "/api/clinician/onboard/status?clerkId=user_2", nil), "user_1"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 on clerkId mismatch, got %d", rec.Code)
	}

	uc := &fakeClinicianUsecase{}
	h = NewClinicianHandler(uc, validator.NewValidator())
	rec = httptest.NewRecorder()
	h.GetOnboardingStatus(rec, authenticated(httptest.NewRequest(http.MethodGet, "/api/clinician/onboard/status", nil), "user_1"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 when clerkId is absent, got %d", rec.Code)
	}
	if uc.statusCalls != 0 {
		t.Error("expected the usecase not to be called without a clerkId")
	}
}
