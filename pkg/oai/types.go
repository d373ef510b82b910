// Package oai declares the OpenAI-compatible wire types served by chatd.
package oai

// Message is a single chat turn.
type Message struct {
	// Role is one of "system", "user" or "assistant".
	Role string `json:"role"`
	// Content is the text of the turn.
	Content string `json:"content"`
}

// ChatRequest is the payload accepted by POST /v1/chat/completions.
type ChatRequest struct {
	// Informational model identifier. Echoed back; not validated against
	// the loaded model.
	Model string `json:"model,omitempty"`
	// Ordered conversation turns. Must be non-empty.
	Messages []Message `json:"messages"`
	// Maximum number of new tokens to generate. Defaulted when omitted.
	MaxTokens int `json:"max_tokens,omitempty"`
	// Sampling temperature (higher = more random). Defaulted when omitted.
	Temperature *float64 `json:"temperature,omitempty"`
	// Nucleus sampling probability. Defaulted when omitted.
	TopP *float64 `json:"top_p,omitempty"`
	// Streaming is not supported; a true value is rejected with 400.
	Stream bool `json:"stream,omitempty"`
}

// Choice is a single completion alternative. This server always returns
// exactly one.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage carries token accounting. Counts are best-effort and may be zero.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the envelope returned by POST /v1/chat/completions.
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// ModelObject describes one servable model in GET /v1/models.
type ModelObject struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created,omitempty"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is the envelope returned by GET /v1/models.
type ModelList struct {
	Object string        `json:"object"`
	Data   []ModelObject `json:"data"`
}

// ErrorDetail is the inner error object of the OpenAI error envelope.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ErrorResponse is the OpenAI-style error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	ModelRepo string `json:"model_repo"`
}

// Well-known object literals.
const (
	ObjectChatCompletion = "chat.completion"
	ObjectList           = "list"
	ObjectModel          = "model"
)

// Error type tags used in the envelope.
const (
	ErrTypeInvalidRequest = "invalid_request_error"
	ErrTypeServer         = "server_error"
	ErrTypeNotFound       = "not_found_error"
)
