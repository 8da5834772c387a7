package lookup

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// HTTPClient is the subset of *http.Client used for provider calls
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Provider describes one BIN data source. The coordinator owns the call
// itself; a provider only knows how to build its request and how to map its
// own response shape onto a Record.
type Provider struct {
	// Name tags successful results and log lines.
	Name string
	// Timeout bounds a single call, including reading the body.
	Timeout time.Duration
	// BuildRequest returns the GET request for bin, carrying ctx.
	BuildRequest func(ctx context.Context, bin BIN) (*http.Request, error)
	// Normalize maps a 2xx body onto a Record. It returns ErrNoMatch when the
	// body is well formed but says the BIN is unknown.
	Normalize func(body []byte) (*Record, error)
}

var (
	// ErrNoMatch marks an authoritative "unknown BIN" answer.
	ErrNoMatch = errors.New("provider has no data for this BIN")
	// ErrMalformedBody marks a 2xx response that could not be decoded.
	ErrMalformedBody = errors.New("malformed provider response")
)

const defaultProviderTimeout = 10 * time.Second
