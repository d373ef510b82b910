// Package tunnel exposes the local HTTP handler through a public ngrok
// endpoint. It is a strictly optional startup phase: a tunnel failure is
// fatal for the tunnel only and never touches the local listener.
package tunnel

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"golang.ngrok.com/ngrok"
	ngrokcfg "golang.ngrok.com/ngrok/config"
)

// ErrMissingToken is returned when no authtoken is configured.
var ErrMissingToken = errors.New("tunnel: NGROK_AUTHTOKEN is not set")

// Tunnel wraps an established ngrok forwarding endpoint.
type Tunnel struct {
	ln  ngrok.Tunnel
	log zerolog.Logger
}

// Open dials ngrok and returns the public endpoint. authtoken must be
// non-empty; an invalid token surfaces as the dial error.
func Open(ctx context.Context, authtoken string, log zerolog.Logger) (*Tunnel, error) {
	if authtoken == "" {
		return nil, ErrMissingToken
	}
	ln, err := ngrok.Listen(ctx,
		ngrokcfg.HTTPEndpoint(),
		ngrok.WithAuthtoken(authtoken),
	)
	if err != nil {
		return nil, err
	}
	log.Info().Str("url", ln.URL()).Msg("tunnel established")
	return &Tunnel{ln: ln, log: log}, nil
}

// URL returns the public forwarding URL.
func (t *Tunnel) URL() string { return t.ln.URL() }

// Serve handles tunnel connections with h. Blocks until the tunnel closes.
func (t *Tunnel) Serve(h http.Handler) error {
	return http.Serve(t.ln, h)
}

// Close tears the tunnel down.
func (t *Tunnel) Close() error { return t.ln.Close() }

// Forwarder is a tunnel that relays to an already-listening local server,
// the shape the client script uses against a running chatd.
type Forwarder struct {
	fwd ngrok.Forwarder
}

// OpenForward dials ngrok and forwards the public endpoint to backend,
// e.g. "http://127.0.0.1:8000".
func OpenForward(ctx context.Context, authtoken, backend string, log zerolog.Logger) (*Forwarder, error) {
	if authtoken == "" {
		return nil, ErrMissingToken
	}
	u, err := url.Parse(backend)
	if err != nil {
		return nil, err
	}
	fwd, err := ngrok.ListenAndForward(ctx,
		u,
		ngrokcfg.HTTPEndpoint(),
		ngrok.WithAuthtoken(authtoken),
	)
	if err != nil {
		return nil, err
	}
	log.Info().Str("url", fwd.URL()).Str("backend", backend).Msg("forwarding tunnel established")
	return &Forwarder{fwd: fwd}, nil
}

// URL returns the public forwarding URL.
func (f *Forwarder) URL() string { return f.fwd.URL() }

// Close tears the tunnel down.
func (f *Forwarder) Close() error { return f.fwd.Close() }
