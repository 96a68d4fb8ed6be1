package handler

import (
	"errors"
	"net/http"

	"medverify/internal/delivery/dto"
	"medverify/internal/usecase"
	"medverify/pkg/response"
	"medverify/pkg/validator"

	"github.com/sirupsen/logrus"
)

const webhookStatusError = "error"

type WebhookHandler struct {
	webhookUsecase usecase.ChatWebhookUsecase
	validator      *validator.CustomValidator
	log            *logrus.Logger
}

func NewWebhookHandler(webhookUsecase usecase.ChatWebhookUsecase, validator *validator.CustomValidator, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookUsecase: webhookUsecase,
		validator:      validator,
		log:            log,
	}
}

// ReceiveWhatsApp handles the form-encoded inbound message callback.
func (h *WebhookHandler) ReceiveWhatsApp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.Status(w, http.StatusBadRequest, webhookStatusError, "Invalid form body")
		return
	}

	req := dto.InboundMessageRequest{
		From:       r.PostForm.Get("From"),
		Body:       r.PostForm.Get("Body"),
		MessageSID: r.PostForm.Get("MessageSid"),
	}
	if err := h.validator.Validate(&req); err != nil {
		response.Status(w, http.StatusBadRequest, webhookStatusError, "Missing or invalid sender")
		return
	}

	resp, err := h.webhookUsecase.HandleInbound(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMessagingNotConfigured):
			response.Status(w, http.StatusServiceUnavailable, webhookStatusError, "Messaging channel is not configured")
		case errors.Is(err, usecase.ErrMissingSender):
			response.Status(w, http.StatusBadRequest, webhookStatusError, "Missing or invalid sender")
		default:
			h.log.Errorf("Failed to process inbound message: %+v", err)
			response.Status(w, http.StatusInternalServerError, webhookStatusError, "Failed to process message")
		}
		return
	}

	response.JSON(w, http.StatusOK, resp)
}
