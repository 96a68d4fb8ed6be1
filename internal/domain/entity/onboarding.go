package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Trigger word that starts or restarts onboarding.
const OnboardingTrigger = "hi"

// maxAge bounds the accepted age reply.
const maxAge = 150

const (
	MsgAskName        = "Hello! What is your name?"
	MsgRestartName    = "Let's finish your onboarding. What is your name?"
	MsgSendHiToBegin  = `Hello! To get started, please send "hi" to begin the registration process.`
	MsgInvalidAge     = "Please provide a valid number for your age."
	msgWelcomeBackFmt = "Welcome back, %s! How can I help you today?"
	msgAskAgeFmt      = "Thanks, %s! Now, what is your age?"
	msgCompletedFmt   = "Great! Your profile is complete. We've saved your name (%s) and age (%d). You can now use our service."
)

// OnboardingStep is the outcome of feeding one inbound message to the onboarding flow.
type OnboardingStep struct {
	// Profile is the state after the message, nil when no profile exists.
	Profile *PatientProfile
	// Reply is the outbound text. Empty when HandOff is set.
	Reply string
	// Create is set when Profile must be inserted.
	Create bool
	// Persist is set when an existing Profile changed and must be saved.
	Persist bool
	// HandOff is set when the message is a health query for the drafting pipeline.
	HandOff bool
}

// IsOnboardingTrigger reports whether text is the trigger word, ignoring case and surrounding space.
func IsOnboardingTrigger(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), OnboardingTrigger)
}

// ParseAge reads the leading whole number of a reply, so "30 years" and "30.5" are 30.
// The result must fall in 1..maxAge.
func ParseAge(text string) (int, bool) {
	text = strings.TrimSpace(text)
	end := 0
	if end < len(text) && (text[end] == '+' || text[end] == '-') {
		end++
	}
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}

	age, err := strconv.Atoi(text[:end])
	if err != nil || age <= 0 || age > maxAge {
		return 0, false
	}
	return age, true
}

// AdvanceOnboarding computes the next onboarding step without side effects.
// current may be nil for an unknown address. The returned profile is a copy.
func AdvanceOnboarding(current *PatientProfile, address, text string) OnboardingStep {
	trigger := IsOnboardingTrigger(text)

	if current == nil {
		if !trigger {
			return OnboardingStep{Reply: MsgSendHiToBegin}
		}
		return OnboardingStep{
			Profile: &PatientProfile{
				PhoneNumber:     address,
				OnboardingState: OnboardingStateAwaitingName,
			},
			Reply:  MsgAskName,
			Create: true,
		}
	}

	next := *current
	if current.Age != nil {
		age := *current.Age
		next.Age = &age
	}

	if trigger {
		switch next.OnboardingState {
		case OnboardingStateCompleted:
			return OnboardingStep{Profile: &next, Reply: fmt.Sprintf(msgWelcomeBackFmt, next.DisplayName)}
		case OnboardingStateNew:
			next.OnboardingState = OnboardingStateAwaitingName
			return OnboardingStep{Profile: &next, Reply: MsgAskName, Persist: true}
		default:
			next.OnboardingState = OnboardingStateAwaitingName
			next.DisplayName = ""
			next.Age = nil
			return OnboardingStep{Profile: &next, Reply: MsgRestartName, Persist: true}
		}
	}

	switch next.OnboardingState {
	case OnboardingStateAwaitingName:
		name := strings.TrimSpace(text)
		if name == "" {
			return OnboardingStep{Profile: &next, Reply: MsgAskName}
		}
		next.DisplayName = name
		next.OnboardingState = OnboardingStateAwaitingAge
		return OnboardingStep{Profile: &next, Reply: fmt.Sprintf(msgAskAgeFmt, name), Persist: true}

	case OnboardingStateAwaitingAge:
		age, ok := ParseAge(text)
		if !ok {
			return OnboardingStep{Profile: &next, Reply: MsgInvalidAge}
		}
		next.Age = &age
		next.OnboardingState = OnboardingStateCompleted
		return OnboardingStep{Profile: &next, Reply: fmt.Sprintf(msgCompletedFmt, next.DisplayName, age), Persist: true}

	case OnboardingStateCompleted:
		return OnboardingStep{Profile: &next, HandOff: true}

	default:
		return OnboardingStep{Profile: &next, Reply: MsgSendHiToBegin}
	}
}
