package entity

import "strings"

// Specialty is the medical specialty used to route queries to clinicians.
type Specialty string

const (
	SpecialtyCardiology           Specialty = "Cardiology"
	SpecialtyDermatology          Specialty = "Dermatology"
	SpecialtyEndocrinology        Specialty = "Endocrinology"
	SpecialtyFamilyMedicine       Specialty = "Family Medicine"
	SpecialtyGastroenterology     Specialty = "Gastroenterology"
	SpecialtyInternalMedicine     Specialty = "Internal Medicine"
	SpecialtyNeurology            Specialty = "Neurology"
	SpecialtyObstetricsGynecology Specialty = "Obstetrics & Gynecology"
	SpecialtyOncology             Specialty = "Oncology"
	SpecialtyOphthalmology        Specialty = "Ophthalmology"
	SpecialtyOrthopedics          Specialty = "Orthopedics"
	SpecialtyPediatrics           Specialty = "Pediatrics"
	SpecialtyPsychiatry           Specialty = "Psychiatry"
	SpecialtyRadiology            Specialty = "Radiology"
	SpecialtySurgery              Specialty = "Surgery"
	SpecialtyUrology              Specialty = "Urology"

	// SpecialtyUncategorized holds queries the drafting pipeline could not classify.
	// It is visible to every clinician and never assigned to one.
	SpecialtyUncategorized Specialty = "Uncategorized"
)

// ClinicianSpecialties lists the specialties a clinician may register with.
var ClinicianSpecialties = []Specialty{
	SpecialtyCardiology,
	SpecialtyDermatology,
	SpecialtyEndocrinology,
	SpecialtyFamilyMedicine,
	SpecialtyGastroenterology,
	SpecialtyInternalMedicine,
	SpecialtyNeurology,
	SpecialtyObstetricsGynecology,
	SpecialtyOncology,
	SpecialtyOphthalmology,
	SpecialtyOrthopedics,
	SpecialtyPediatrics,
	SpecialtyPsychiatry,
	SpecialtyRadiology,
	SpecialtySurgery,
	SpecialtyUrology,
}

// ParseSpecialty matches s case-insensitively against the clinician specialties.
func ParseSpecialty(s string) (Specialty, bool) {
	s = strings.TrimSpace(s)
	for _, sp := range ClinicianSpecialties {
		if strings.EqualFold(string(sp), s) {
			return sp, true
		}
	}
	return "", false
}

// ClassifySpecialty is ParseSpecialty with the uncategorized bucket as fallback.
func ClassifySpecialty(s string) Specialty {
	if sp, ok := ParseSpecialty(s); ok {
		return sp
	}
	return SpecialtyUncategorized
}

// IsSelectable reports whether a clinician may register with this specialty.
func (s Specialty) IsSelectable() bool {
	_, ok := ParseSpecialty(string(s))
	return ok && s != SpecialtyUncategorized
}

// SpecialtyNames returns the display names of ClinicianSpecialties.
func SpecialtyNames() []string {
	names := make([]string, len(ClinicianSpecialties))
	for i, sp := range ClinicianSpecialties {
		names[i] = string(sp)
	}
	return names
}
