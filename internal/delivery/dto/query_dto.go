package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type ListQueriesRequest struct {
	Status string `json:"status"`
	Page   int    `json:"page" validate:"omitempty,min=1"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

type VerifyQueryRequest struct {
	QueryID       string `json:"queryId" validate:"required,uuid"`
	Status        string `json:"status" validate:"required,decision"`
	DoctorComment string `json:"doctorComment" validate:"omitempty,max=2000"`
}

// Response DTOs

type QueryResponse struct {
	ID             uuid.UUID  `json:"id"`
	PhoneNumber    string     `json:"phoneNumber"`
	Query          string     `json:"query"`
	Response       string     `json:"response,omitempty"`
	DoctorCategory string     `json:"doctorCategory"`
	Status         string     `json:"status"`
	DoctorComment  string     `json:"doctorComment,omitempty"`
	VerifiedBy     *uuid.UUID `json:"verifiedBy,omitempty"`
	VerifiedAt     *time.Time `json:"verifiedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type PaginationResponse struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type QueryListResponse struct {
	Queries    []QueryResponse    `json:"queries"`
	Pagination PaginationResponse `json:"pagination"`
}

type VerifyQueryResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Query   *QueryResponse `json:"query"`
}
