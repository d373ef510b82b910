// Package chat maps OpenAI-style chat requests onto a single local model
// inference call and back.
package chat

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/runtime"
	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/pkg/oai"
)

// Generation parameter defaults applied when the request omits them.
const (
	DefaultMaxTokens   = 128
	MinMaxTokens       = 16
	DefaultTemperature = 0.7
	DefaultTopP        = 0.8
)

// Adapter is the request/response translator between the OpenAI chat
// surface and the Model Runtime. It holds the process-wide read-only model
// handle; construct once at startup and share.
type Adapter struct {
	gen     runtime.Generator
	repo    string
	counter *TokenCounter
	log     zerolog.Logger
	started time.Time
}

// New builds an Adapter around an initialized Generator. repo is the model
// identifier echoed by /v1/models.
func New(gen runtime.Generator, repo string, log zerolog.Logger) *Adapter {
	return &Adapter{
		gen:     gen,
		repo:    repo,
		counter: NewTokenCounter(),
		log:     log,
		started: time.Now(),
	}
}

// ModelRepo returns the configured model repository name.
func (a *Adapter) ModelRepo() string { return a.repo }

// Models lists the single servable model.
func (a *Adapter) Models() oai.ModelList {
	return oai.ModelList{
		Object: oai.ObjectList,
		Data: []oai.ModelObject{{
			ID:      a.repo,
			Object:  oai.ObjectModel,
			Created: a.started.Unix(),
			OwnedBy: "local",
		}},
	}
}

// Complete runs one chat completion. Invalid input yields a request error
// (400); any runtime failure, including a panic in the backend, is caught
// and surfaced as a server error (500) instead of crashing the process.
func (a *Adapter) Complete(ctx context.Context, req oai.ChatRequest) (resp oai.ChatResponse, err error) {
	if verr := validate(req); verr != nil {
		return oai.ChatResponse{}, verr
	}

	prompt := BuildPrompt(req.Messages)
	params := resolveParams(req)

	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Interface("panic", r).Msg("inference panicked")
			err = ErrServer("inference failed", fmt.Errorf("panic: %v", r))
		}
	}()

	start := time.Now()
	res, gerr := a.gen.Generate(ctx, prompt, params)
	if gerr != nil {
		if ctx.Err() != nil {
			return oai.ChatResponse{}, ctx.Err()
		}
		return oai.ChatResponse{}, ErrServer("inference failed", gerr)
	}

	content := strings.TrimSpace(res.Content)
	if content == "" {
		// Tiny models occasionally emit pure whitespace or nothing at all;
		// fall back to the raw text, then a single space, so the assistant
		// message is never empty.
		content = res.Content
		if content == "" {
			content = " "
		}
	}
	finish := res.FinishReason
	if finish == "" {
		finish = "stop"
	}

	a.log.Info().
		Str("model", a.repo).
		Int("max_tokens", params.MaxTokens).
		Dur("dur", time.Since(start)).
		Msg("completion")

	// The response always names the served repository. The request's model
	// field is informational: there is only one model behind this API.
	return oai.ChatResponse{
		ID:      newCompletionID(),
		Object:  oai.ObjectChatCompletion,
		Created: time.Now().Unix(),
		Model:   a.repo,
		Choices: []oai.Choice{{
			Index:        0,
			Message:      oai.Message{Role: "assistant", Content: content},
			FinishReason: finish,
		}},
		Usage: a.counter.Usage(prompt, content),
	}, nil
}

// validate enforces the documented request shape.
func validate(req oai.ChatRequest) error {
	if len(req.Messages) == 0 {
		return ErrRequest("messages must be a non-empty array")
	}
	for i, m := range req.Messages {
		if strings.TrimSpace(m.Role) == "" {
			return ErrRequest("messages[%d] is missing a role", i)
		}
		switch m.Role {
		case "system", "user", "assistant":
		default:
			return ErrRequest("messages[%d] has unknown role %q", i, m.Role)
		}
		if m.Content == "" {
			return ErrRequest("messages[%d] is missing content", i)
		}
	}
	if req.Stream {
		return ErrRequest("streaming responses are not supported")
	}
	return nil
}

// resolveParams applies defaults and floors to generation parameters.
func resolveParams(req oai.ChatRequest) runtime.Params {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	if maxTokens < MinMaxTokens {
		maxTokens = MinMaxTokens
	}
	temp := DefaultTemperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	topP := DefaultTopP
	if req.TopP != nil {
		topP = *req.TopP
	}
	return runtime.Params{MaxTokens: maxTokens, Temperature: temp, TopP: topP}
}

// newCompletionID returns a "chatcmpl-" id with 12 hex characters.
func newCompletionID() string {
	u := uuid.New()
	return "chatcmpl-" + hex.EncodeToString(u[:])[:12]
}
