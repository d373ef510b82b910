package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/pkg/oai"
)

// StatusCoder allows services to provide an HTTP status code for an error.
type StatusCoder interface {
	error
	StatusCode() int
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the OpenAI-style error envelope.
func writeError(w http.ResponseWriter, status int, errType, msg string) {
	writeJSON(w, status, oai.ErrorResponse{Error: oai.ErrorDetail{Message: msg, Type: errType}})
}
