package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/chat"
	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/pkg/oai"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Models() oai.ModelList
	Complete(ctx context.Context, req oai.ChatRequest) (oai.ChatResponse, error)
	ModelRepo() string
}

// NewMux builds the router: /health, /v1/models, /v1/chat/completions and
// /metrics, plus OpenAI-style error envelopes on every failure path.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Open CORS, mirroring the permissive demo posture.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, oai.HealthResponse{Status: "ok", ModelRepo: svc.ModelRepo()})
	})

	r.Get("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Models())
	})

	r.Post("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req oai.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, oai.ErrTypeInvalidRequest, "invalid JSON body")
			return
		}

		lg := requestLogger(r)
		start := time.Now()
		// Join the server base context with the request context so a
		// shutdown cancels in-flight generation too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		resp, err := svc.Complete(ctx, req)
		if err != nil {
			// Client gone or shutting down; nothing useful to write.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status, errType := mapError(err)
			writeError(w, status, errType, err.Error())
			lg.Info().Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("chat completion")
			return
		}
		writeJSON(w, http.StatusOK, resp)
		lg.Info().Int("status", http.StatusOK).Dur("dur", time.Since(start)).Str("id", resp.ID).Msg("chat completion")
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, oai.ErrTypeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, oai.ErrTypeInvalidRequest, "method not allowed")
	})

	return r
}

// mapError converts adapter errors to an HTTP status and envelope type.
func mapError(err error) (int, string) {
	switch {
	case chat.IsRequestError(err):
		return http.StatusBadRequest, oai.ErrTypeInvalidRequest
	case chat.IsServerError(err):
		return http.StatusInternalServerError, oai.ErrTypeServer
	}
	if sc, ok := err.(StatusCoder); ok {
		status := sc.StatusCode()
		if status >= 400 && status < 500 {
			return status, oai.ErrTypeInvalidRequest
		}
		return status, oai.ErrTypeServer
	}
	return http.StatusInternalServerError, oai.ErrTypeServer
}
