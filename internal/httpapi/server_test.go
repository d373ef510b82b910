package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/chat"
	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/pkg/oai"
)

type mockService struct {
	repo     string
	resp     oai.ChatResponse
	err      error
	lastReq  oai.ChatRequest
	complete func(req oai.ChatRequest) (oai.ChatResponse, error)
}

func (m *mockService) ModelRepo() string { return m.repo }

func (m *mockService) Models() oai.ModelList {
	return oai.ModelList{Object: oai.ObjectList, Data: []oai.ModelObject{{ID: m.repo, Object: oai.ObjectModel, OwnedBy: "local"}}}
}

func (m *mockService) Complete(ctx context.Context, req oai.ChatRequest) (oai.ChatResponse, error) {
	m.lastReq = req
	if m.complete != nil {
		return m.complete(req)
	}
	if m.err != nil {
		return oai.ChatResponse{}, m.err
	}
	return m.resp, nil
}

func okResponse() oai.ChatResponse {
	return oai.ChatResponse{
		ID:      "chatcmpl-abcdef123456",
		Object:  oai.ObjectChatCompletion,
		Created: 1700000000,
		Model:   "tiny",
		Choices: []oai.Choice{{Message: oai.Message{Role: "assistant", Content: "hello"}, FinishReason: "stop"}},
	}
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	r := NewMux(&mockService{repo: "org/tiny"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body oai.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Status != "ok" || body.ModelRepo != "org/tiny" {
		t.Fatalf("body: %+v", body)
	}
}

func TestModelsHandler(t *testing.T) {
	r := NewMux(&mockService{repo: "org/tiny"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/models", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body oai.ModelList
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Object != "list" || len(body.Data) != 1 || body.Data[0].ID != "org/tiny" {
		t.Fatalf("body: %+v", body)
	}
}

func TestChatCompletionOK(t *testing.T) {
	svc := &mockService{repo: "org/tiny", resp: okResponse()}
	r := NewMux(svc)
	w := postChat(t, r, `{"model":"tiny","messages":[{"role":"user","content":"Hello"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body oai.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Choices) != 1 || body.Choices[0].Message.Role != "assistant" || body.Choices[0].Message.Content == "" {
		t.Fatalf("choices: %+v", body.Choices)
	}
	if svc.lastReq.Messages[0].Content != "Hello" {
		t.Fatalf("request not passed through: %+v", svc.lastReq)
	}
}

func TestChatCompletionBadJSON(t *testing.T) {
	r := NewMux(&mockService{})
	w := postChat(t, r, "not-json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	var body oai.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Error.Type != oai.ErrTypeInvalidRequest || body.Error.Message == "" {
		t.Fatalf("envelope: %+v", body)
	}
}

func TestChatCompletionRequestErrorMaps400(t *testing.T) {
	svc := &mockService{err: chat.ErrRequest("messages must be a non-empty array")}
	r := NewMux(svc)
	w := postChat(t, r, `{"messages":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	var body oai.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Error.Type != oai.ErrTypeInvalidRequest {
		t.Fatalf("type=%q", body.Error.Type)
	}
}

func TestChatCompletionServerErrorMaps500(t *testing.T) {
	svc := &mockService{err: chat.ErrServer("inference failed", nil)}
	r := NewMux(svc)
	w := postChat(t, r, `{"messages":[{"role":"user","content":"hi"}]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var body oai.ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error.Type != oai.ErrTypeServer {
		t.Fatalf("type=%q", body.Error.Type)
	}
}

type mockStatusErr struct {
	msg  string
	code int
}

func (e mockStatusErr) Error() string   { return e.msg }
func (e mockStatusErr) StatusCode() int { return e.code }

func TestChatCompletionStatusCoder(t *testing.T) {
	svc := &mockService{err: mockStatusErr{msg: "too large", code: http.StatusRequestEntityTooLarge}}
	r := NewMux(svc)
	w := postChat(t, r, `{"messages":[{"role":"user","content":"hi"}]}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestUnknownRoute404Envelope(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	var body oai.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Error.Type != oai.ErrTypeNotFound {
		t.Fatalf("type=%q", body.Error.Type)
	}
}

func TestMethodNotAllowedEnvelope(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/models", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestBodySizeLimit(t *testing.T) {
	SetMaxBodyBytes(64)
	defer SetMaxBodyBytes(0)
	r := NewMux(&mockService{resp: okResponse()})
	big := `{"messages":[{"role":"user","content":"` + strings.Repeat("a", 200) + `"}]}`
	w := postChat(t, r, big)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}
