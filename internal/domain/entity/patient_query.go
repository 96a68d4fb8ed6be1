package entity

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus represents the review state of a patient query
type VerificationStatus string

const (
	VerificationStatusPending   VerificationStatus = "not_verified"
	VerificationStatusVerified  VerificationStatus = "verified"
	VerificationStatusIncorrect VerificationStatus = "incorrect"
)

// ParseVerificationStatus accepts the wire values plus "pending" for not_verified.
func ParseVerificationStatus(s string) (VerificationStatus, bool) {
	switch VerificationStatus(s) {
	case VerificationStatusPending, "pending":
		return VerificationStatusPending, true
	case VerificationStatusVerified:
		return VerificationStatusVerified, true
	case VerificationStatusIncorrect:
		return VerificationStatusIncorrect, true
	}
	return "", false
}

// IsDecision reports whether s is a final clinician decision.
func (s VerificationStatus) IsDecision() bool {
	return s == VerificationStatusVerified || s == VerificationStatusIncorrect
}

// PatientQuery is a free-text health question and its review lifecycle.
type PatientQuery struct {
	ID                    uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientAddress        string             `gorm:"type:varchar(64);not null;index:idx_patient_queries_address_created" json:"patient_address"`
	QuestionText          string             `gorm:"type:text;not null" json:"question_text"`
	DraftAnswer           string             `gorm:"type:text" json:"draft_answer,omitempty"`
	SpecialtyCategory     Specialty          `gorm:"type:varchar(64);not null;default:'Uncategorized';index:idx_patient_queries_status_specialty" json:"specialty_category"`
	VerificationStatus    VerificationStatus `gorm:"type:varchar(32);not null;default:'not_verified';index:idx_patient_queries_status_specialty" json:"verification_status"`
	ClinicianComment      string             `gorm:"type:text" json:"clinician_comment,omitempty"`
	VerifiedByClinicianID *uuid.UUID         `gorm:"type:uuid" json:"verified_by_clinician_id,omitempty"`
	VerifiedAt            *time.Time         `json:"verified_at,omitempty"`
	CreatedAt             time.Time          `gorm:"autoCreateTime;index:idx_patient_queries_address_created" json:"created_at"`
	UpdatedAt             time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PatientQuery) TableName() string {
	return "patient_queries"
}

// IsPending checks if the query still awaits a clinician decision
func (q *PatientQuery) IsPending() bool {
	return q.VerificationStatus == VerificationStatusPending
}

// HasDraft checks if the drafting pipeline produced an answer
func (q *PatientQuery) HasDraft() bool {
	return q.DraftAnswer != ""
}

// QueryPatch lists the mutable draft fields of a PatientQuery. Nil fields are left unchanged.
type QueryPatch struct {
	DraftAnswer       *string
	SpecialtyCategory *Specialty
}

// IsEmpty reports whether the patch changes nothing.
func (p QueryPatch) IsEmpty() bool {
	return p.DraftAnswer == nil && p.SpecialtyCategory == nil
}

// Verification is the all-or-nothing set of fields stamped by a clinician decision.
type Verification struct {
	Status      VerificationStatus
	Comment     string
	ClinicianID uuid.UUID
	VerifiedAt  time.Time
}
