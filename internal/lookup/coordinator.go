package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxBodySize caps how much of a provider response is read.
const maxBodySize = 1 << 20

var errNoProviders = errors.New("no BIN providers configured")

// Coordinator resolves a BIN by querying its providers strictly in order and
// returning the first well-formed answer.
type Coordinator struct {
	providers []Provider
	client    HTTPClient
	logger    *zap.Logger
}

// NewCoordinator creates a Coordinator over an ordered provider list
func NewCoordinator(providers []Provider, client HTTPClient, logger *zap.Logger) *Coordinator {
	if client == nil {
		client = http.DefaultClient
	}

	ordered := make([]Provider, len(providers))
	copy(ordered, providers)
	for i := range ordered {
		if ordered[i].Timeout <= 0 {
			ordered[i].Timeout = defaultProviderTimeout
		}
	}

	return &Coordinator{
		providers: ordered,
		client:    client,
		logger:    logger,
	}
}

// Providers returns the provider names in query order
func (c *Coordinator) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name
	}
	return names
}

// Lookup validates raw, then tries each provider once, in order. Provider
// failures are logged and swallowed; only the terminal outcome is returned.
func (c *Coordinator) Lookup(ctx context.Context, raw string) (*Result, error) {
	bin, err := ParseBIN(raw)
	if err != nil {
		return nil, err
	}

	if len(c.providers) == 0 {
		return nil, AllProvidersFailedError{BIN: bin, Errors: []error{errNoProviders}}
	}

	failures := make([]error, 0, len(c.providers))

	for i, p := range c.providers {
		record, err := c.query(ctx, p, bin)
		if err != nil {
			c.logger.Warn("BIN provider failed, falling back",
				zap.String("provider", p.Name),
				zap.String("bin", bin.String()),
				zap.Int("attempt", i+1),
				zap.Error(err))
			failures = append(failures, err)
			continue
		}

		c.logger.Info("BIN lookup succeeded",
			zap.String("provider", p.Name),
			zap.String("bin", bin.String()),
			zap.Int("attempt", i+1))

		return &Result{
			BIN:      bin,
			Record:   *record,
			Source:   p.Name,
			Attempts: i + 1,
		}, nil
	}

	var last ProviderError
	if errors.As(failures[len(failures)-1], &last) && last.NotFound {
		return nil, NotFoundError{BIN: bin, Provider: last.Provider}
	}

	return nil, AllProvidersFailedError{BIN: bin, Errors: failures}
}

// query performs exactly one call against p under p.Timeout
func (c *Coordinator) query(ctx context.Context, p Provider, bin BIN) (*Record, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := p.BuildRequest(callCtx, bin)
	if err != nil {
		return nil, NewProviderError(p.Name, "build_request", 0, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewProviderError(p.Name, "http_request", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, NewProviderError(p.Name, "read_response", resp.StatusCode, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewNotFoundProviderError(p.Name, resp.StatusCode, ErrNoMatch)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewProviderError(p.Name, "http_status", resp.StatusCode,
			fmt.Errorf("unexpected status %s", http.StatusText(resp.StatusCode)))
	}

	record, err := p.Normalize(body)
	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			return nil, NewNotFoundProviderError(p.Name, resp.StatusCode, err)
		}
		return nil, NewProviderError(p.Name, "decode_response", resp.StatusCode, err)
	}
	if record.IsEmpty() {
		return nil, NewNotFoundProviderError(p.Name, resp.StatusCode, ErrNoMatch)
	}

	return record, nil
}
