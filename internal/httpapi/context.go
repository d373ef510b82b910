package httpapi

import (
	"context"
)

// serverBaseCtx is canceled when chatd shuts down. Completion handlers
// derive from it so an in-flight generation stops with the process, not
// only when the client hangs up. Defaults to Background if never set.
var serverBaseCtx = context.Background()

// SetBaseContext installs the shutdown context the completion handler
// derives from. A nil ctx resets to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context done when either the shutdown context or
// the request context is done. Callers must invoke cancel when the handler
// returns to release the watcher goroutine.
func joinContexts(shutdown, req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-shutdown.Done():
			cancel()
		case <-req.Done():
			cancel()
		}
	}()
	return ctx, cancel
}
