package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"medverify/internal/delivery/dto"
	"medverify/internal/delivery/http/middleware"
	"medverify/internal/usecase"
	"medverify/pkg/response"
	"medverify/pkg/validator"
)

type ClinicianHandler struct {
	clinicianUsecase usecase.ClinicianProfileUsecase
	validator        *validator.CustomValidator
}

func NewClinicianHandler(clinicianUsecase usecase.ClinicianProfileUsecase, validator *validator.CustomValidator) *ClinicianHandler {
	return &ClinicianHandler{
		clinicianUsecase: clinicianUsecase,
		validator:        validator,
	}
}

func (h *ClinicianHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubjectFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req dto.OnboardClinicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	// A foreign clerkId is a 401 even when other fields are invalid
	if req.ClerkID != "" && req.ClerkID != subject {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	resp, err := h.clinicianUsecase.Onboard(r.Context(), subject, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrClerkIDMismatch):
			response.Unauthorized(w, "Unauthorized")
		case errors.Is(err, usecase.ErrInvalidSpecialty):
			response.ValidationError(w, map[string]string{"specialty": err.Error()})
		default:
			response.InternalServerError(w, "Internal Server Error")
		}
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

func (h *ClinicianHandler) GetOnboardingStatus(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubjectFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	// Callers must name themselves; an absent clerkId is treated like a foreign one
	clerkID := r.URL.Query().Get("clerkId")
	if clerkID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	resp, err := h.clinicianUsecase.GetOnboardingStatus(r.Context(), subject, clerkID)
	if err != nil {
		if errors.Is(err, usecase.ErrClerkIDMismatch) {
			response.Unauthorized(w, "Unauthorized")
			return
		}
		response.InternalServerError(w, "Internal Server Error")
		return
	}

	response.JSON(w, http.StatusOK, resp)
}
