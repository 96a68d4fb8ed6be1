package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"medverify/internal/delivery/dto"
	"medverify/internal/delivery/http/middleware"
	"medverify/internal/usecase"
	"medverify/pkg/response"
	"medverify/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ClinicianQueryHandler struct {
	queryUsecase        usecase.ClinicianQueryUsecase
	verificationUsecase usecase.VerificationUsecase
	validator           *validator.CustomValidator
}

func NewClinicianQueryHandler(
	queryUsecase usecase.ClinicianQueryUsecase,
	verificationUsecase usecase.VerificationUsecase,
	validator *validator.CustomValidator,
) *ClinicianQueryHandler {
	return &ClinicianQueryHandler{
		queryUsecase:        queryUsecase,
		verificationUsecase: verificationUsecase,
		validator:           validator,
	}
}

func (h *ClinicianQueryHandler) ListQueries(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubjectFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	q := r.URL.Query()
	req := dto.ListQueriesRequest{Status: q.Get("status")}
	var err error
	if v := q.Get("page"); v != "" {
		if req.Page, err = strconv.Atoi(v); err != nil {
			response.ValidationError(w, map[string]string{"page": "page must be a number"})
			return
		}
	}
	if v := q.Get("limit"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil {
			response.ValidationError(w, map[string]string{"limit": "limit must be a number"})
			return
		}
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	resp, err := h.queryUsecase.ListQueries(r.Context(), subject, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidStatus):
			response.ValidationError(w, map[string]string{"status": err.Error()})
		case errors.Is(err, usecase.ErrClinicianNotFound):
			response.NotFound(w, "Clinician not found")
		default:
			response.InternalServerError(w, "Failed to fetch queries")
		}
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

func (h *ClinicianQueryHandler) GetQuery(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubjectFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	queryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid query ID")
		return
	}

	query, err := h.queryUsecase.GetQuery(r.Context(), subject, queryID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrQueryNotFound):
			response.NotFound(w, "Query not found")
		case errors.Is(err, usecase.ErrClinicianNotFound):
			response.NotFound(w, "Clinician not found")
		default:
			response.InternalServerError(w, "Failed to fetch query")
		}
		return
	}

	response.JSON(w, http.StatusOK, query)
}

func (h *ClinicianQueryHandler) VerifyQuery(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubjectFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req dto.VerifyQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	resp, err := h.verificationUsecase.VerifyQuery(r.Context(), subject, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidQueryID), errors.Is(err, usecase.ErrInvalidDecision):
			response.BadRequest(w, err.Error())
		case errors.Is(err, usecase.ErrClinicianNotFound):
			response.NotFound(w, "Clinician not found")
		case errors.Is(err, usecase.ErrQueryNotFound):
			response.NotFound(w, "Query not found")
		case errors.Is(err, usecase.ErrQueryAlreadyVerified):
			response.Conflict(w, "Query has already been verified")
		default:
			response.InternalServerError(w, "Failed to update query")
		}
		return
	}

	response.JSON(w, http.StatusOK, resp)
}
