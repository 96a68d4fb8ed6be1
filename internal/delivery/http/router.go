package http

import (
	"net/http"

	"medverify/internal/delivery/http/handler"
	"medverify/internal/delivery/http/middleware"
	"medverify/internal/infrastructure/metrics"

	"github.com/gorilla/mux"
)

type Router struct {
	router                    *mux.Router
	webhookHandler            *handler.WebhookHandler
	clinicianHandler          *handler.ClinicianHandler
	clinicianQueryHandler     *handler.ClinicianQueryHandler
	auditLogHandler           *handler.AuditLogHandler
	authMiddleware            *middleware.AuthMiddleware
	corsMiddleware            *middleware.CORSMiddleware
	twilioSignatureMiddleware *middleware.TwilioSignatureMiddleware
}

func NewRouter(
	webhookHandler *handler.WebhookHandler,
	clinicianHandler *handler.ClinicianHandler,
	clinicianQueryHandler *handler.ClinicianQueryHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	twilioSignatureMiddleware *middleware.TwilioSignatureMiddleware,
) *Router {
	return &Router{
		router:                    mux.NewRouter(),
		webhookHandler:            webhookHandler,
		clinicianHandler:          clinicianHandler,
		clinicianQueryHandler:     clinicianQueryHandler,
		auditLogHandler:           auditLogHandler,
		authMiddleware:            authMiddleware,
		corsMiddleware:            corsMiddleware,
		twilioSignatureMiddleware: twilioSignatureMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// Preflight for every path; router middleware only runs on a matched route
	r.router.Methods(http.MethodOptions).HandlerFunc(r.preflight)

	r.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.router.PathPrefix("/api").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Chat channel webhook (public, optionally signed)
	webhook := api.PathPrefix("/webhook").Subrouter()
	webhook.Use(r.twilioSignatureMiddleware.Verify)
	webhook.HandleFunc("/whatsapp", r.webhookHandler.ReceiveWhatsApp).Methods(http.MethodPost)

	// Clinician dashboard (protected)
	clinician := api.PathPrefix("/clinician").Subrouter()
	clinician.Use(r.authMiddleware.Authenticate)
	clinician.HandleFunc("/onboard", r.clinicianHandler.Onboard).Methods(http.MethodPost)
	clinician.HandleFunc("/onboard/status", r.clinicianHandler.GetOnboardingStatus).Methods(http.MethodGet)
	clinician.HandleFunc("/queries", r.clinicianQueryHandler.ListQueries).Methods(http.MethodGet)
	clinician.HandleFunc("/queries/verify", r.clinicianQueryHandler.VerifyQuery).Methods(http.MethodPost)
	clinician.HandleFunc("/queries/{id}", r.clinicianQueryHandler.GetQuery).Methods(http.MethodGet)
	clinician.HandleFunc("/audit-logs", r.auditLogHandler.ListOwnAuditLogs).Methods(http.MethodGet)

	r.router.Use(metrics.Middleware)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) preflight(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
