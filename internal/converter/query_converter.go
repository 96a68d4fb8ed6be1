package converter

import (
	"medverify/internal/delivery/dto"
	"medverify/internal/domain/entity"

	"github.com/samber/lo"
)

// PatientQueryToResponse converts a PatientQuery entity to QueryResponse DTO
func PatientQueryToResponse(query *entity.PatientQuery) *dto.QueryResponse {
	if query == nil {
		return nil
	}

	return &dto.QueryResponse{
		ID:             query.ID,
		PhoneNumber:    query.PatientAddress,
		Query:          query.QuestionText,
		Response:       query.DraftAnswer,
		DoctorCategory: string(query.SpecialtyCategory),
		Status:         string(query.VerificationStatus),
		DoctorComment:  query.ClinicianComment,
		VerifiedBy:     query.VerifiedByClinicianID,
		VerifiedAt:     query.VerifiedAt,
		CreatedAt:      query.CreatedAt,
		UpdatedAt:      query.UpdatedAt,
	}
}

// PatientQueriesToResponses converts a slice of PatientQuery entities to QueryResponse DTOs
func PatientQueriesToResponses(queries []entity.PatientQuery) []dto.QueryResponse {
	return lo.Map(queries, func(q entity.PatientQuery, _ int) dto.QueryResponse {
		return *PatientQueryToResponse(&q)
	})
}

// PageToPagination builds the pagination block for a listing
func PageToPagination(page entity.Page, total int64) dto.PaginationResponse {
	return dto.PaginationResponse{
		Total: total,
		Page:  page.Number,
		Limit: page.Size,
		Pages: page.TotalPages(total),
	}
}
