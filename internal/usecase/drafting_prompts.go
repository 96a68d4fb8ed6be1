package usecase

import (
	"fmt"
	"strings"

	"medverify/internal/domain/entity"
)

const (
	// MsgDraftFailed is sent when no draft answer could be produced or stored.
	MsgDraftFailed = "I'm sorry, I couldn't process your health query at the moment. Please try again later."

	// MsgEmptyQuestion is sent for inbound messages without text, such as media-only messages.
	MsgEmptyQuestion = "Please type your health question as a text message."
)

const draftSystemPromptFmt = "You are a helpful AI assistant that provides medical information. " +
	"You are talking with %s. " +
	"Always be professional and compassionate. " +
	"Remember you're not a doctor, so always include a disclaimer. " +
	"Keep responses under 250 words.\n\n" +
	"Also classify the patient's latest question into exactly one medical specialty from this list: %s.\n\n" +
	`Respond only with a JSON object of the form {"answer": "<your response to the patient>", "category": "<one specialty from the list>"}.`

// buildDraftSystemPrompt embeds the patient's name, age and the specialty list.
func buildDraftSystemPrompt(patient *entity.PatientProfile) string {
	who := "a patient"
	if patient != nil {
		name := strings.TrimSpace(patient.DisplayName)
		switch {
		case name != "" && patient.Age != nil:
			who = fmt.Sprintf("%s, aged %d", name, *patient.Age)
		case name != "":
			who = name
		case patient.Age != nil:
			who = fmt.Sprintf("a patient aged %d", *patient.Age)
		}
	}

	return fmt.Sprintf(draftSystemPromptFmt, who, strings.Join(entity.SpecialtyNames(), ", "))
}
