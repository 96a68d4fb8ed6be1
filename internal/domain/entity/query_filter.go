package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// QueryFilter is a domain-level filter for listing patient queries.
// Used by repository layer to avoid coupling with delivery DTOs.
type QueryFilter struct {
	Status VerificationStatus
	// Specialties restricts SpecialtyCategory when non-empty.
	Specialties []Specialty
}

// HistoryFilter selects one patient's queries created within a window, oldest first.
type HistoryFilter struct {
	PatientAddress string
	Since          time.Time
	// ExcludeID skips the query currently being drafted.
	ExcludeID uuid.UUID
}

// Page is an offset-based page request. Page numbers start at 1.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps page number and size to sane bounds.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset returns how many rows precede this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages is ceil(total / size).
func (p Page) TotalPages(total int64) int {
	if p.Size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}
