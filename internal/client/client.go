// Package client exercises a running chatd instance: wait for health,
// list models, send one sample chat completion.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/pkg/oai"
)

// Client is a thin HTTP client for the chatd API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

// New builds a client for baseURL. token, when non-empty, is sent as a
// bearer credential on every request.
func New(baseURL, token string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		log: log,
	}
}

// WaitForHealth polls GET /health until it answers 200 or retries run out.
func (c *Client) WaitForHealth(ctx context.Context, retries int, delay time.Duration) error {
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err == nil {
			if resp.StatusCode == http.StatusOK {
				resp.Body.Close()
				return nil
			}
			err = fmt.Errorf("health: %s", resp.Status)
			resp.Body.Close()
		}
		lastErr = err
		c.log.Debug().Int("attempt", attempt).Int("retries", retries).Err(err).Msg("waiting for server")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("server at %s did not become ready: %w", c.baseURL, lastErr)
}

// ListModels fetches GET /v1/models.
func (c *Client) ListModels(ctx context.Context) (oai.ModelList, error) {
	var list oai.ModelList
	if err := c.doJSON(ctx, http.MethodGet, "/v1/models", nil, &list); err != nil {
		return oai.ModelList{}, err
	}
	return list, nil
}

// CreateChatCompletion posts req to /v1/chat/completions. Non-200 statuses
// surface the server's envelope message as an error.
func (c *Client) CreateChatCompletion(ctx context.Context, req oai.ChatRequest) (oai.ChatResponse, error) {
	var resp oai.ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/chat/completions", req, &resp); err != nil {
		return oai.ChatResponse{}, err
	}
	return resp, nil
}

// SampleRequest is the fixed request the demo sends.
func SampleRequest(model string) oai.ChatRequest {
	temp := 0.7
	topP := 0.8
	return oai.ChatRequest{
		Model: model,
		Messages: []oai.Message{
			{Role: "system", Content: "You are a helpful assistant."},
			{Role: "user", Content: "Say hello in 5 words."},
		},
		MaxTokens:   60,
		Temperature: &temp,
		TopP:        &topP,
	}
}

// Run performs the whole demo round trip and returns the assistant reply.
func (c *Client) Run(ctx context.Context) (string, error) {
	if err := c.WaitForHealth(ctx, 30, time.Second); err != nil {
		return "", err
	}
	list, err := c.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if len(list.Data) == 0 {
		return "", fmt.Errorf("no models reported by the API")
	}
	model := list.Data[0].ID
	c.log.Info().Str("model", model).Msg("using model")

	resp, err := c.CreateChatCompletion(ctx, SampleRequest(model))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// doJSON performs one JSON round trip and decodes into out.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var envelope oai.ErrorResponse
		if jerr := json.Unmarshal(respBody, &envelope); jerr == nil && envelope.Error.Message != "" {
			return fmt.Errorf("API error (%d, %s): %s", resp.StatusCode, envelope.Error.Type, envelope.Error.Message)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
