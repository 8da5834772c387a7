package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"binbot/internal/config"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Status describes what Subscribe actually did
type Status string

const (
	// StatusSubscribed means the endpoint accepted the POST
	StatusSubscribed Status = "subscribed"
	// StatusManual means no endpoint is configured; the user gets the link
	StatusManual Status = "manual"
	// StatusFailed means the POST was attempted and failed
	StatusFailed Status = "failed"
)

// HTTPClient is the subset of *http.Client used for subscription POSTs
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is the outcome of one subscription request. ManualURL is always
// set so the user can finish by hand.
type Result struct {
	Email      string
	Newsletter Newsletter
	Status     Status
	ManualURL  string
	Detail     string
}

// Helper validates addresses and, where an endpoint is known, forwards them
// to a newsletter provider with a single POST.
type Helper struct {
	catalog       Catalog
	defaultTarget string
	client        HTTPClient
	timeout       time.Duration
	logger        *zap.Logger
}

// NewHelper builds a Helper over DefaultCatalog. The configured endpoint, if
// any, is attached to the configured target newsletter. An unknown target
// falls back to the first catalog entry without automation.
func NewHelper(cfg config.SubscriptionConfig, client HTTPClient, logger *zap.Logger) *Helper {
	if client == nil {
		client = http.DefaultClient
	}

	catalog := DefaultCatalog.clone()
	target := strings.ToLower(strings.TrimSpace(cfg.Target))
	if target == "" {
		target = catalog[0].Key
	}
	if _, ok := catalog.Find(target); !ok {
		logger.Warn("Unknown subscription target, using first catalog entry",
			zap.String("target", cfg.Target),
			zap.String("fallback", catalog[0].Key),
			zap.Bool("endpoint_ignored", cfg.Endpoint != ""))
		target = catalog[0].Key
		cfg.Endpoint = ""
	}

	for i := range catalog {
		if catalog[i].Key != target || cfg.Endpoint == "" {
			continue
		}
		catalog[i].Endpoint = cfg.Endpoint
		catalog[i].Encoding = cfg.Encoding
		catalog[i].EmailField = cfg.EmailField
		catalog[i].ConsentField = cfg.ConsentField
		logger.Info("Subscription endpoint configured",
			zap.String("newsletter", catalog[i].Key),
			zap.String("encoding", catalog[i].Encoding))
	}

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &Helper{
		catalog:       catalog,
		defaultTarget: target,
		client:        client,
		timeout:       timeout,
		logger:        logger,
	}
}

// Catalog returns the newsletters offered to users
func (h *Helper) Catalog() Catalog {
	return h.catalog.clone()
}

// DefaultTarget returns the newsletter used by /subs
func (h *Helper) DefaultTarget() string {
	return h.defaultTarget
}

// Subscribe validates email and subscribes it to the newsletter under key.
// Only an invalid email or an unknown key produce an error; a failed POST is
// reported through Result.Status.
func (h *Helper) Subscribe(ctx context.Context, email, key string) (*Result, error) {
	email, err := ValidateEmail(email)
	if err != nil {
		return nil, err
	}

	newsletter, ok := h.catalog.Find(key)
	if !ok {
		return nil, UnknownNewsletterError{Key: key}
	}

	result := &Result{
		Email:      email,
		Newsletter: newsletter,
		ManualURL:  newsletter.URL,
	}

	if !newsletter.Automated() {
		result.Status = StatusManual
		result.Detail = "Visita " + newsletter.URL + " para completar la suscripción"
		return result, nil
	}

	if err := h.post(ctx, newsletter, email); err != nil {
		h.logger.Warn("Subscription request failed",
			zap.String("newsletter", newsletter.Key),
			zap.Error(err))
		result.Status = StatusFailed
		result.Detail = "No se pudo automatizar. Usa el link manual."
		return result, nil
	}

	h.logger.Info("Subscription request accepted", zap.String("newsletter", newsletter.Key))
	result.Status = StatusSubscribed
	return result, nil
}

// post performs exactly one request carrying the email and a consent flag
func (h *Helper) post(ctx context.Context, n Newsletter, email string) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	emailField := n.EmailField
	if emailField == "" {
		emailField = "email"
	}
	consentField := n.ConsentField
	if consentField == "" {
		consentField = "consent"
	}

	var (
		body        io.Reader
		contentType string
	)

	switch n.Encoding {
	case EncodingForm:
		form := url.Values{}
		form.Set(emailField, email)
		form.Set(consentField, "true")
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case EncodingJSON, "":
		payload, err := json.Marshal(map[string]interface{}{
			emailField:   email,
			consentField: true,
		})
		if err != nil {
			return errors.Wrap(err, "encode subscription payload")
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	default:
		return errors.Errorf("unsupported encoding %q", n.Encoding)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.Endpoint, body)
	if err != nil {
		return errors.Wrap(err, "build subscription request")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := h.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "post subscription to %s", n.Key)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("subscription endpoint for %s returned %d", n.Key, resp.StatusCode)
	}

	return nil
}
