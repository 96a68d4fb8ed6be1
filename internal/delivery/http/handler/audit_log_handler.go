package handler

import (
	"errors"
	"net/http"
	"strconv"

	"medverify/internal/delivery/dto"
	"medverify/internal/delivery/http/middleware"
	"medverify/internal/usecase"
	"medverify/pkg/response"
	"medverify/pkg/validator"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
	validator       *validator.CustomValidator
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase, validator *validator.CustomValidator) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
		validator:       validator,
	}
}

func (h *AuditLogHandler) ListOwnAuditLogs(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubjectFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req dto.ListAuditLogsRequest
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			response.ValidationError(w, map[string]string{"page": "page must be a number"})
			return
		}
		req.Page = page
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			response.ValidationError(w, map[string]string{"limit": "limit must be a number"})
			return
		}
		req.Limit = limit
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	logs, err := h.auditLogUsecase.ListOwnAuditLogs(r.Context(), subject, &req)
	if err != nil {
		if errors.Is(err, usecase.ErrClinicianNotFound) {
			response.NotFound(w, "Clinician not found")
			return
		}
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.JSON(w, http.StatusOK, logs)
}
