package dto

// InboundMessageRequest is the form-encoded Twilio WhatsApp webhook payload.
type InboundMessageRequest struct {
	From       string `json:"From" validate:"required,max=64"`
	Body       string `json:"Body" validate:"max=4096"`
	MessageSID string `json:"MessageSid" validate:"omitempty,max=64"`
}

type WebhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
