package runtime

import (
	"context"
	"sync"
)

// Guard serializes Generate calls to a non-reentrant Generator. This is the
// only shared-resource coordination in the process: the HTTP layer stays
// concurrent and requests queue on the mutex.
type Guard struct {
	mu    sync.Mutex
	inner Generator
}

// NewGuard wraps g with mutual exclusion.
func NewGuard(g Generator) *Guard { return &Guard{inner: g} }

func (g *Guard) Generate(ctx context.Context, prompt string, p Params) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	// A canceled caller should not burn CPU on a generation nobody reads.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return g.inner.Generate(ctx, prompt, p)
}

func (g *Guard) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Close()
}
