package messaging

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"medverify/internal/domain/entity"
)

const (
	// MaxBodyLength is the WhatsApp channel ceiling, in characters.
	MaxBodyLength = 1600

	maxQuestionExcerpt = 100
	maxAnswerExcerpt   = 400
	maxCommentExcerpt  = 300

	ellipsis = "..."
)

// Disclaimer is appended to every drafted answer sent before clinician review.
const Disclaimer = "\n\n*This response is not yet verified by the doctor.*"

// Canned comments used when the clinician leaves the comment empty.
const (
	DefaultVerifiedComment  = "The information provided is medically accurate."
	DefaultIncorrectComment = "Please consult with a healthcare provider for accurate guidance on this matter."
)

// Truncate shortens s to at most max characters, ending with an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= len(ellipsis) {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:max-len(ellipsis)]) + ellipsis
}

// ClampBody enforces MaxBodyLength on an assembled message body.
func ClampBody(body string) string {
	return Truncate(body, MaxBodyLength)
}

// StripDisclaimer removes a trailing Disclaimer from a stored draft answer.
func StripDisclaimer(answer string) string {
	return strings.TrimSuffix(answer, Disclaimer)
}

// WithDisclaimer appends Disclaimer to a freshly drafted answer, shortening the
// answer first so the whole text fits in one message with the disclaimer intact.
func WithDisclaimer(answer string) string {
	return Truncate(answer, MaxBodyLength-utf8.RuneCountInString(Disclaimer)) + Disclaimer
}

// DefaultComment returns the canned comment for a decision.
func DefaultComment(status entity.VerificationStatus) string {
	if status == entity.VerificationStatusIncorrect {
		return DefaultIncorrectComment
	}
	return DefaultVerifiedComment
}

// VerificationSummary renders the patient-facing outcome of a clinician decision.
// Each section is excerpted before assembly and the result never exceeds MaxBodyLength.
func VerificationSummary(query *entity.PatientQuery, specialty entity.Specialty) string {
	comment := query.ClinicianComment
	if strings.TrimSpace(comment) == "" {
		comment = DefaultComment(query.VerificationStatus)
	}

	answer := StripDisclaimer(query.DraftAnswer)
	if strings.TrimSpace(answer) == "" {
		answer = "(no AI response was drafted)"
	}

	var b strings.Builder
	b.WriteString("*Healthcare Query Verification*\n\n")
	fmt.Fprintf(&b, "Your question: \"%s\"\n\n", Truncate(query.QuestionText, maxQuestionExcerpt))

	commentHeading := "*Doctor's Comment*"
	if query.VerificationStatus == entity.VerificationStatusIncorrect {
		b.WriteString("*Status*: ⚠️ The AI response requires clarification\n\n")
		commentHeading = "*Doctor's Correction*"
	} else {
		fmt.Fprintf(&b, "*Status*: ✅ Verified by a %s specialist\n\n", specialty)
	}

	fmt.Fprintf(&b, "*AI Response*:\n%s\n\n", Truncate(answer, maxAnswerExcerpt))
	fmt.Fprintf(&b, "%s:\n%s\n\n", commentHeading, Truncate(comment, maxCommentExcerpt))
	b.WriteString("Thank you for using our service. For medical emergencies, always consult a healthcare provider immediately.")

	return ClampBody(b.String())
}
