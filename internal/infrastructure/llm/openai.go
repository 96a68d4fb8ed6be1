package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"medverify/config"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrNotConfigured   = errors.New("openai api key is not configured")
	ErrEmptyCompletion = errors.New("openai returned no choices")
	ErrMalformedDraft  = errors.New("openai returned a malformed draft")
)

// Message is a minimal chat message.
// Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string
	Content string
}

// DraftRequest carries everything the model sees for one patient question.
type DraftRequest struct {
	SystemPrompt string
	// History holds prior turns, oldest first.
	History  []Message
	Question string
}

// Draft is the structured reply of the model.
type Draft struct {
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// Drafter produces a draft answer and a specialty label for a patient question.
type Drafter interface {
	Draft(ctx context.Context, req DraftRequest) (*Draft, error)
}

// OpenAIDrafter calls the chat completion API in JSON-object mode.
type OpenAIDrafter struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

func NewOpenAIDrafter(cfg config.OpenAIConfig) *OpenAIDrafter {
	return NewOpenAIDrafterWithClientConfig(openai.DefaultConfig(cfg.APIKey), cfg)
}

// NewOpenAIDrafterWithClientConfig allows a custom base URL or HTTP client.
func NewOpenAIDrafterWithClientConfig(clientCfg openai.ClientConfig, cfg config.OpenAIConfig) *OpenAIDrafter {
	d := &OpenAIDrafter{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
	}
	if cfg.APIKey != "" {
		d.client = openai.NewClientWithConfig(clientCfg)
	}
	return d
}

func (d *OpenAIDrafter) Draft(ctx context.Context, req DraftRequest) (*Draft, error) {
	if d.client == nil {
		return nil, ErrNotConfigured
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	for _, m := range req.History {
		role := m.Role
		if role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Question})

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       d.model,
		Messages:    messages,
		MaxTokens:   d.maxTokens,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	return ParseDraft(resp.Choices[0].Message.Content)
}

// ParseDraft decodes the model output. A missing answer is malformed; a missing category is not.
func ParseDraft(content string) (*Draft, error) {
	content = strings.TrimSpace(content)
	// tolerate a fenced block
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var draft Draft
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDraft, err)
	}

	draft.Answer = strings.TrimSpace(draft.Answer)
	draft.Category = strings.TrimSpace(draft.Category)
	if draft.Answer == "" {
		return nil, fmt.Errorf("%w: empty answer", ErrMalformedDraft)
	}
	return &draft, nil
}

// StatusCode extracts the HTTP status reported by the OpenAI API, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
