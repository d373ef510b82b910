//go:build !llama

package runtime

// This file provides a no-CGO stub for the llama engine. It is compiled
// when the 'llama' build tag is NOT set, keeping default builds and CI
// CGO-free. The real engine lives in engine_llama.go (tagged 'llama').

// NewLlamaEngine fails fast: in-process inference is not available in this
// build. This avoids any mocked behavior in binaries built without CGO.
func NewLlamaEngine(modelPath string, ctxSize, threads int) (Generator, error) {
	return nil, ErrUnavailable("llama support not built (missing 'llama' build tag)")
}
