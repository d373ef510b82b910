package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Default values applied when neither file, env nor flags specify a field.
const (
	DefaultAddr      = ":8000"
	DefaultModelRepo = "sshleifer/tiny-gpt2"
	DefaultEngine    = "llama"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr          string `json:"addr" yaml:"addr" toml:"addr"`
	ModelRepo     string `json:"model_repo" yaml:"model_repo" toml:"model_repo"`
	ModelCacheDir string `json:"model_cache_dir" yaml:"model_cache_dir" toml:"model_cache_dir"`
	// Engine selects the inference backend: "llama" (in-process) or
	// "server" (external OpenAI-compatible completion server).
	Engine         string `json:"engine" yaml:"engine" toml:"engine"`
	LlamaServerURL string `json:"llama_server_url" yaml:"llama_server_url" toml:"llama_server_url"`
	LogLevel       string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg. Env wins over file
// values; flags (handled in main) win over env.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CHATD_ADDR"); v != "" {
		c.Addr = v
	} else if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	if v := os.Getenv("MODEL_REPO"); v != "" {
		c.ModelRepo = v
	}
	if v := os.Getenv("MODEL_CACHE_DIR"); v != "" {
		c.ModelCacheDir = v
	}
	if v := os.Getenv("CHATD_ENGINE"); v != "" {
		c.Engine = v
	}
	if v := os.Getenv("CHATD_LLAMA_SERVER_URL"); v != "" {
		c.LlamaServerURL = v
	}
	if v := os.Getenv("CHATD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// ApplyDefaults fills remaining zero values.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ModelRepo == "" {
		c.ModelRepo = DefaultModelRepo
	}
	if c.ModelCacheDir == "" {
		c.ModelCacheDir = DefaultCacheDir(c.ModelRepo)
	}
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// DefaultCacheDir derives the weight cache path from the repo name,
// e.g. "sshleifer/tiny-gpt2" -> "models/sshleifer_tiny-gpt2".
func DefaultCacheDir(repo string) string {
	return filepath.Join("models", strings.ReplaceAll(repo, "/", "_"))
}

// HFToken returns the optional Hugging Face token for gated downloads.
// Secrets stay in the environment; they are never read from config files.
func HFToken() string { return os.Getenv("HF_TOKEN") }

// NgrokAuthtoken returns the tunnel credential, empty when unset.
func NgrokAuthtoken() string { return os.Getenv("NGROK_AUTHTOKEN") }
