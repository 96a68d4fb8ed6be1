package messaging

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"medverify/config"

	"github.com/sirupsen/logrus"
	twilioClient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeSender struct {
	params []*twilioApi.CreateMessageParams
	sid    string
	err    error
}

func (f *fakeSender) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := f.sid
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TwilioConfig
		want error
	}{
		{"valid", config.TwilioConfig{AccountSID: "AC123", AuthToken: "tok", WhatsAppNumber: "+1555"}, nil},
		{"missing sid", config.TwilioConfig{AuthToken: "tok", WhatsAppNumber: "+1555"}, ErrInvalidAccountSID},
		{"wrong sid prefix", config.TwilioConfig{AccountSID: "SK123", AuthToken: "tok", WhatsAppNumber: "+1555"}, ErrInvalidAccountSID},
		{"missing token", config.TwilioConfig{AccountSID: "AC123", WhatsAppNumber: "+1555"}, ErrMissingAuthToken},
		{"missing sender", config.TwilioConfig{AccountSID: "AC123", AuthToken: "tok"}, ErrMissingSender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateCredentials(tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := map[string]string{
		"+15550001111":          "whatsapp:+15550001111",
		"whatsapp:+15550001111": "whatsapp:+15550001111",
		"  +1555  ":             "whatsapp:+1555",
		"":                      "",
	}
	for input, want := range tests {
		if got := NormalizeAddress(input); got != want {
			t.Errorf("NormalizeAddress(%q): expected %q, got %q", input, want, got)
		}
		if got := NormalizeAddress(NormalizeAddress(input)); got != want {
			t.Errorf("expected NormalizeAddress to be idempotent for %q, got %q", input, got)
		}
	}
}

func TestGateway_NotConfigured(t *testing.T) {
	gw := NewTwilioGateway(config.TwilioConfig{AccountSID: "bad"}, newTestLogger())

	if gw.Configured() {
		t.Fatal("expected gateway to be unconfigured")
	}

	result := gw.Send(context.Background(), "+1555", "hello")
	if result.Status != DeliveryNotConfigured {
		t.Errorf("expected %s, got %s", DeliveryNotConfigured, result.Status)
	}
	if !errors.Is(result.Err, ErrInvalidAccountSID) {
		t.Errorf("expected ErrInvalidAccountSID, got %v", result.Err)
	}
}

func TestGateway_Send(t *testing.T) {
	sender := &fakeSender{sid: "SM123"}
	gw := NewGateway(sender, "+14155238886", 0, newTestLogger())

	result := gw.Send(context.Background(), "+15550001111", strings.Repeat("a", MaxBodyLength+10))

	if result.Status != DeliverySent {
		t.Fatalf("expected %s, got %s (%v)", DeliverySent, result.Status, result.Err)
	}
	if result.SID != "SM123" {
		t.Errorf("expected SID SM123, got %s", result.SID)
	}
	if len(sender.params) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.params))
	}

	p := sender.params[0]
	if *p.To != "whatsapp:+15550001111" {
		t.Errorf("expected prefixed destination, got %s", *p.To)
	}
	if *p.From != "whatsapp:+14155238886" {
		t.Errorf("expected prefixed sender, got %s", *p.From)
	}
	if n := utf8.RuneCountInString(*p.Body); n > MaxBodyLength {
		t.Errorf("expected body clamped to %d, got %d", MaxBodyLength, n)
	}
}

func TestGateway_SendFailureIsReported(t *testing.T) {
	sender := &fakeSender{err: &twilioClient.TwilioRestError{
		Code:     21211,
		Message:  "Invalid 'To' Phone Number",
		MoreInfo: "https://www.twilio.com/docs/errors/21211",
		Status:   400,
	}}
	gw := NewGateway(sender, "whatsapp:+14155238886", 5, newTestLogger())

	result := gw.Send(context.Background(), "not-a-number", "hello")

	if result.Status != DeliveryFailed {
		t.Errorf("expected %s, got %s", DeliveryFailed, result.Status)
	}
	var restErr *twilioClient.TwilioRestError
	if !errors.As(result.Err, &restErr) || restErr.Code != 21211 {
		t.Errorf("expected twilio error 21211, got %v", result.Err)
	}
}

func TestGateway_SendHonorsCancelledContext(t *testing.T) {
	sender := &fakeSender{sid: "SM1"}
	gw := NewGateway(sender, "+1", 1, newTestLogger())

	// drain the single burst token
	gw.Send(context.Background(), "+2", "first")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := gw.Send(ctx, "+2", "second")
	if result.Status != DeliveryFailed {
		t.Errorf("expected %s, got %s", DeliveryFailed, result.Status)
	}
	if len(sender.params) != 1 {
		t.Errorf("expected only the first message to reach the sender, got %d", len(sender.params))
	}
}

func TestSignatureValidator_RejectsEmptySignature(t *testing.T) {
	v := NewSignatureValidator("token")
	if v.Validate("https://example.com/api/webhook/whatsapp", map[string]string{"Body": "hi"}, "") {
		t.Error("expected empty signature to be rejected")
	}
	if v.Validate("https://example.com/api/webhook/whatsapp", map[string]string{"Body": "hi"}, "bogus") {
		t.Error("expected bogus signature to be rejected")
	}
}
