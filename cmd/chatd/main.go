package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/chat"
	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/config"
	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/httpapi"
	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/hub"
	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/runtime"
	"github.com/TrinhQuangMinh123/mini-ai-openai-demo/internal/tunnel"
)

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Optional config file (.yaml/.json/.toml)")
	addr := flag.String("addr", "", "HTTP listen address, e.g. :8000")
	modelRepo := flag.String("model-repo", "", "Hugging Face repo to serve (default sshleifer/tiny-gpt2)")
	cacheDir := flag.String("cache-dir", "", "Local weight cache directory (default derived from repo)")
	engine := flag.String("engine", "", "Inference backend: llama|server")
	llamaServerURL := flag.String("llama-server-url", "", "Base URL of an external completion server (engine=server)")
	logLevel := flag.String("log-level", "", "Log level: debug|info|warn|error")
	ctxSize := flag.Int("ctx-size", 2048, "Model context size for the llama engine")
	threads := flag.Int("threads", 4, "CPU threads for the llama engine")
	useTunnel := flag.Bool("tunnel", false, "Expose the API through an ngrok tunnel (requires NGROK_AUTHTOKEN)")
	flag.Parse()

	// Precedence: flag > env > file > default.
	var cfg config.Config
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			lg := newLogger("info")
			lg.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	overrideString(&cfg.Addr, *addr)
	overrideString(&cfg.ModelRepo, *modelRepo)
	overrideString(&cfg.ModelCacheDir, *cacheDir)
	overrideString(&cfg.Engine, *engine)
	overrideString(&cfg.LlamaServerURL, *llamaServerURL)
	overrideString(&cfg.LogLevel, *logLevel)
	cfg.ApplyDefaults()

	logger := newLogger(cfg.LogLevel)
	httpapi.SetLogger(logger)

	// Base context canceled on shutdown so in-flight generation stops too.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	// Startup phase 1: ensure the model snapshot is cached locally.
	hubClient := hub.NewClient("", config.HFToken(), logger)
	if err := hubClient.Snapshot(baseCtx, cfg.ModelRepo, cfg.ModelCacheDir); err != nil {
		logger.Fatal().Err(err).Str("repo", cfg.ModelRepo).Msg("model download failed")
	}

	// Startup phase 2: initialize the model runtime. A failure here exits
	// non-zero; there is nothing to serve without a model.
	gen, err := buildEngine(cfg, *ctxSize, *threads)
	if err != nil {
		logger.Fatal().Err(err).Str("engine", cfg.Engine).Msg("model runtime failed to initialize")
	}
	guarded := runtime.NewGuard(gen)
	defer func() { _ = guarded.Close() }()

	adapter := chat.New(guarded, cfg.ModelRepo, logger)
	mux := httpapi.NewMux(adapter)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("repo", cfg.ModelRepo).Msg("chatd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Startup phase 3 (optional, skippable): public tunnel. A failure is
	// fatal for this step only; the local listener keeps serving.
	var tun *tunnel.Tunnel
	if *useTunnel {
		tun, err = tunnel.Open(baseCtx, config.NgrokAuthtoken(), logger)
		if err != nil {
			logger.Error().Err(err).Msg("tunnel step failed; continuing with local listener only")
		} else {
			logger.Info().Str("public_url", tun.URL()).Msg("tunnel ready")
			go func() {
				if serr := tun.Serve(mux); serr != nil && baseCtx.Err() == nil {
					logger.Error().Err(serr).Msg("tunnel serve ended")
				}
			}()
		}
	}

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	if tun != nil {
		_ = tun.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
}

// buildEngine selects and initializes the inference backend.
func buildEngine(cfg config.Config, ctxSize, threads int) (runtime.Generator, error) {
	switch cfg.Engine {
	case "server":
		return runtime.NewServerEngine(cfg.LlamaServerURL, "", cfg.ModelRepo, 120*time.Second)
	default:
		weights, err := runtime.FindWeights(cfg.ModelCacheDir)
		if err != nil {
			return nil, err
		}
		return runtime.NewLlamaEngine(weights, ctxSize, threads)
	}
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// newLogger builds the process logger. Console output keeps the demo
// readable; swap ConsoleWriter out for plain JSON in real deployments.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}
