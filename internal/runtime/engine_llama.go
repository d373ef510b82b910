//go:build llama

package runtime

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaEngine runs inference in-process through llama.cpp. The model is
// loaded once in NewLlamaEngine and freed in Close.
type llamaEngine struct {
	model   *llama.LLama
	threads int
}

// NewLlamaEngine loads the weights at modelPath. ctxSize and threads of 0
// pick conservative CPU defaults.
func NewLlamaEngine(modelPath string, ctxSize, threads int) (Generator, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	if ctxSize <= 0 {
		ctxSize = 2048
	}
	if threads <= 0 {
		threads = 4
	}
	m, err := llama.New(modelPath, llama.SetContext(ctxSize))
	if err != nil {
		return nil, err
	}
	return &llamaEngine{model: m, threads: threads}, nil
}

func (e *llamaEngine) Generate(ctx context.Context, prompt string, p Params) (Result, error) {
	if e.model == nil {
		return Result{}, errors.New("llama model not initialized")
	}
	// Abort prediction when the request context ends.
	e.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	// Params arrive fully resolved from the chat layer; a zero temperature
	// deliberately means greedy decoding, so no re-defaulting here.
	po := []llama.PredictOption{
		llama.SetTokens(maxInt(1, p.MaxTokens)),
		llama.SetThreads(e.threads),
		llama.SetTemperature(float32(p.Temperature)),
		llama.SetTopP(float32(p.TopP)),
	}
	text, err := e.model.Predict(prompt, po...)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, err
	}
	return Result{Content: text, FinishReason: "stop"}, nil
}

func (e *llamaEngine) Close() error {
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
