package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"medverify/config"
	"medverify/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioClient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/time/rate"
)

// AddressPrefix is the channel scheme every WhatsApp address carries.
const AddressPrefix = "whatsapp:"

const sendTimeout = 10 * time.Second

var (
	ErrInvalidAccountSID = errors.New(`twilio account SID must start with "AC"`)
	ErrMissingAuthToken  = errors.New("twilio auth token is required")
	ErrMissingSender     = errors.New("twilio WhatsApp sender number is required")
)

// DeliveryStatus is the outcome of one Send call.
type DeliveryStatus string

const (
	DeliverySent          DeliveryStatus = "sent"
	DeliveryFailed        DeliveryStatus = "failed"
	DeliveryNotConfigured DeliveryStatus = "not_configured"
)

type DeliveryResult struct {
	Status DeliveryStatus
	// SID is the provider message id, set when Status is DeliverySent.
	SID string
	Err error
}

// MessageSender is the subset of the Twilio messages API used by the gateway.
type MessageSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Gateway delivers WhatsApp messages and never returns an error to its caller.
// Failures are logged and reported through DeliveryResult.
type Gateway struct {
	sender    MessageSender
	from      string
	configErr error
	limiter   *rate.Limiter
	log       *logrus.Logger
}

// ValidateCredentials reports missing or malformed channel credentials.
func ValidateCredentials(cfg config.TwilioConfig) error {
	if !strings.HasPrefix(cfg.AccountSID, "AC") {
		return ErrInvalidAccountSID
	}
	if cfg.AuthToken == "" {
		return ErrMissingAuthToken
	}
	if cfg.WhatsAppNumber == "" {
		return ErrMissingSender
	}
	return nil
}

// NewTwilioGateway builds a gateway backed by the Twilio REST API.
// Invalid credentials produce a gateway whose sends report DeliveryNotConfigured.
func NewTwilioGateway(cfg config.TwilioConfig, log *logrus.Logger) *Gateway {
	if err := ValidateCredentials(cfg); err != nil {
		log.WithFields(logrus.Fields{
			"account_sid_present": cfg.AccountSID != "",
			"auth_token_present":  cfg.AuthToken != "",
			"sender_present":      cfg.WhatsAppNumber != "",
		}).Warnf("Twilio is not configured: %v", err)
		return &Gateway{configErr: err, log: log}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	client.SetTimeout(sendTimeout)

	return NewGateway(client.Api, cfg.WhatsAppNumber, cfg.SendRatePerSecond, log)
}

// NewGateway wires a gateway around any MessageSender. ratePerSecond <= 0 disables throttling.
func NewGateway(sender MessageSender, from string, ratePerSecond float64, log *logrus.Logger) *Gateway {
	limit := rate.Inf
	burst := 1
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
		burst = int(ratePerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	return &Gateway{
		sender:  sender,
		from:    NormalizeAddress(from),
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
	}
}

// Configured reports whether sends can be attempted at all.
func (g *Gateway) Configured() bool {
	return g.configErr == nil && g.sender != nil
}

// ConfigError returns the credential problem, or nil.
func (g *Gateway) ConfigError() error {
	return g.configErr
}

// NormalizeAddress adds AddressPrefix unless it is already present.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if address == "" || strings.HasPrefix(address, AddressPrefix) {
		return address
	}
	return AddressPrefix + address
}

// Send dispatches one message to destination.
func (g *Gateway) Send(ctx context.Context, destination, body string) DeliveryResult {
	if !g.Configured() {
		err := g.configErr
		if err == nil {
			err = ErrMissingSender
		}
		g.log.Warnf("Skipping message to %s: %v", destination, err)
		metrics.RecordNotification(string(DeliveryNotConfigured))
		return DeliveryResult{Status: DeliveryNotConfigured, Err: err}
	}

	to := NormalizeAddress(destination)

	if err := g.limiter.Wait(ctx); err != nil {
		g.log.Warnf("Failed to send message to %s: %+v", to, err)
		metrics.RecordNotification(string(DeliveryFailed))
		return DeliveryResult{Status: DeliveryFailed, Err: err}
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(g.from)
	params.SetBody(ClampBody(body))

	resp, err := g.sender.CreateMessage(params)
	if err != nil {
		entry := g.log.WithField("to", to)
		var restErr *twilioClient.TwilioRestError
		if errors.As(err, &restErr) {
			entry = entry.WithFields(logrus.Fields{
				"status":    restErr.Status,
				"code":      restErr.Code,
				"more_info": restErr.MoreInfo,
				"details":   restErr.Details,
			})
		}
		entry.Warnf("Failed to send message: %+v", err)
		metrics.RecordNotification(string(DeliveryFailed))
		return DeliveryResult{Status: DeliveryFailed, Err: err}
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	g.log.WithFields(logrus.Fields{"to": to, "sid": sid}).Info("Message sent")
	metrics.RecordNotification(string(DeliverySent))

	return DeliveryResult{Status: DeliverySent, SID: sid}
}

// SignatureValidator checks the X-Twilio-Signature header of inbound webhooks.
type SignatureValidator struct {
	validator twilioClient.RequestValidator
}

func NewSignatureValidator(authToken string) *SignatureValidator {
	return &SignatureValidator{validator: twilioClient.NewRequestValidator(authToken)}
}

// Validate reports whether signature matches url and the posted form params.
func (v *SignatureValidator) Validate(url string, params map[string]string, signature string) bool {
	if signature == "" {
		return false
	}
	return v.validator.Validate(url, params, signature)
}
