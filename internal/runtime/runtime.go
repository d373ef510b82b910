// Package runtime abstracts the local text-generation backend. The handle
// is constructed once at startup and is read-only afterwards; concurrent
// Generate calls are serialized by Guard because the underlying runtimes
// are not reentrant.
package runtime

import "context"

// Params captures generation parameters for a single call.
type Params struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Result summarizes one completed generation.
type Result struct {
	Content      string
	FinishReason string
}

// Generator turns a prompt into a text continuation. Implementations block
// until generation finishes or ctx is canceled.
type Generator interface {
	Generate(ctx context.Context, prompt string, p Params) (Result, error)
	// Close releases model resources. Safe to call once at process exit.
	Close() error
}
