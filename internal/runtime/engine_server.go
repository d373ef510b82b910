package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// serverEngine implements Generator by delegating to an already-running
// OpenAI-compatible completion server (e.g. llama-server) over HTTP. Useful
// when the binary is built without the llama tag but a local runtime exists.
type serverEngine struct {
	baseURL    string
	apiKey     string
	model      string
	reqTimeout time.Duration
	httpClient *http.Client
}

// NewServerEngine constructs a server-backed engine. model is passed
// through as the completion model field and may be empty.
func NewServerEngine(baseURL, apiKey, model string, reqTimeout time.Duration) (Generator, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("server engine: base URL is empty")
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	// Timeout=0 on the client: deadlines ride on the request context so a
	// caller cancel is honored mid-transfer.
	return &serverEngine{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		reqTimeout: reqTimeout,
		httpClient: &http.Client{Transport: tr, Timeout: 0},
	}, nil
}

// completionRequest is the payload for POST {base}/v1/completions.
// Temperature and top_p are always sent: an explicit zero means greedy
// decoding and must not be dropped by omitempty.
type completionRequest struct {
	Model       string  `json:"model,omitempty"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	Stream      bool    `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (e *serverEngine) Generate(ctx context.Context, prompt string, p Params) (Result, error) {
	if e.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.reqTimeout)
		defer cancel()
	}
	payload := completionRequest{
		Model:       e.model,
		Prompt:      prompt,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		TopP:        p.TopP,
		Stream:      false,
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("completion server: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Result{}, fmt.Errorf("completion server: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("completion server: decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return Result{}, errors.New("completion server: empty choices")
	}
	fr := out.Choices[0].FinishReason
	if fr == "" {
		fr = "stop"
	}
	return Result{Content: out.Choices[0].Text, FinishReason: fr}, nil
}

func (e *serverEngine) Close() error { return nil }
