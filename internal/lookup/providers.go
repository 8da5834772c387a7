package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"binbot/internal/config"

	"go.uber.org/zap"
)

// Built-in provider names
const (
	ProviderBinlist  = "binlist"
	ProviderHandyAPI = "handyapi"
	ProviderAPILayer = "apilayer"
)

// NewProvidersFromConfig builds the provider list in the configured order.
// Key-gated providers without an API key are skipped with a warning rather
// than failing startup.
func NewProvidersFromConfig(cfg config.LookupConfig, logger *zap.Logger) []Provider {
	providers := make([]Provider, 0, len(cfg.Order))

	for _, name := range cfg.Order {
		name = strings.ToLower(strings.TrimSpace(name))

		switch name {
		case ProviderBinlist:
			providers = append(providers, NewBinlistProvider(cfg.Binlist, cfg.UserAgent))
		case ProviderHandyAPI:
			if cfg.HandyAPI.APIKey == "" {
				logger.Warn("Skipping BIN provider without API key", zap.String("provider", name))
				continue
			}
			providers = append(providers, NewHandyAPIProvider(cfg.HandyAPI, cfg.UserAgent))
		case ProviderAPILayer:
			if cfg.APILayer.APIKey == "" {
				logger.Warn("Skipping BIN provider without API key", zap.String("provider", name))
				continue
			}
			providers = append(providers, NewAPILayerProvider(cfg.APILayer, cfg.UserAgent))
		default:
			logger.Warn("Ignoring unknown BIN provider", zap.String("provider", name))
		}
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
	}
	logger.Info("BIN providers configured", zap.Strings("providers", names))

	return providers
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return defaultProviderTimeout
	}
	return time.Duration(n) * time.Second
}

func newGetRequest(ctx context.Context, endpoint string, bin BIN, headers map[string]string) (*http.Request, error) {
	url := strings.TrimRight(endpoint, "/") + "/" + bin.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return req, nil
}

// binlist.net: key-free, nested bank/country objects.

type binlistResponse struct {
	Number *struct {
		Length int   `json:"length"`
		Luhn   *bool `json:"luhn"`
	} `json:"number"`
	Scheme  string `json:"scheme"`
	Type    string `json:"type"`
	Brand   string `json:"brand"`
	Prepaid *bool  `json:"prepaid"`
	Country *struct {
		Alpha2   string `json:"alpha2"`
		Name     string `json:"name"`
		Emoji    string `json:"emoji"`
		Currency string `json:"currency"`
	} `json:"country"`
	Bank *struct {
		Name  string `json:"name"`
		URL   string `json:"url"`
		Phone string `json:"phone"`
		City  string `json:"city"`
	} `json:"bank"`
}

// NewBinlistProvider creates the binlist.net provider
func NewBinlistProvider(cfg config.ProviderConfig, userAgent string) Provider {
	return Provider{
		Name:    ProviderBinlist,
		Timeout: seconds(cfg.Timeout),
		BuildRequest: func(ctx context.Context, bin BIN) (*http.Request, error) {
			return newGetRequest(ctx, cfg.Endpoint, bin, map[string]string{
				"Accept-Version": "3",
				"User-Agent":     userAgent,
			})
		},
		Normalize: normalizeBinlist,
	}
}

func normalizeBinlist(body []byte) (*Record, error) {
	var resp binlistResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	record := &Record{
		CardType: resp.Type,
		Scheme:   resp.Scheme,
		Category: resp.Brand,
		Prepaid:  resp.Prepaid,
	}
	if resp.Bank != nil {
		record.BankName = resp.Bank.Name
		record.BankURL = resp.Bank.URL
		record.BankPhone = resp.Bank.Phone
	}
	if resp.Country != nil {
		record.CountryName = resp.Country.Name
		record.CountryFlag = resp.Country.Emoji
		record.Currency = resp.Country.Currency
	}
	if resp.Number != nil {
		record.LuhnValid = resp.Number.Luhn
	}

	return record, nil
}

// HandyAPI: key-gated, flat fields with a Status discriminator.

type handyResponse struct {
	Status   string `json:"Status"`
	Scheme   string `json:"Scheme"`
	Type     string `json:"Type"`
	Issuer   string `json:"Issuer"`
	CardTier string `json:"CardTier"`
	Country  *struct {
		A2   string `json:"A2"`
		Name string `json:"Name"`
	} `json:"Country"`
	Luhn *bool `json:"Luhn"`
}

// NewHandyAPIProvider creates the HandyAPI provider
func NewHandyAPIProvider(cfg config.ProviderConfig, userAgent string) Provider {
	return Provider{
		Name:    ProviderHandyAPI,
		Timeout: seconds(cfg.Timeout),
		BuildRequest: func(ctx context.Context, bin BIN) (*http.Request, error) {
			return newGetRequest(ctx, cfg.Endpoint, bin, map[string]string{
				"x-api-key":  cfg.APIKey,
				"User-Agent": userAgent,
			})
		},
		Normalize: normalizeHandyAPI,
	}
}

func normalizeHandyAPI(body []byte) (*Record, error) {
	var resp handyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	switch strings.ToUpper(resp.Status) {
	case "SUCCESS":
	case "NOT FOUND", "NOT_FOUND":
		return nil, ErrNoMatch
	default:
		return nil, fmt.Errorf("%w: unexpected status %q", ErrMalformedBody, resp.Status)
	}

	record := &Record{
		BankName:  resp.Issuer,
		CardType:  resp.Type,
		Scheme:    resp.Scheme,
		Level:     resp.CardTier,
		LuhnValid: resp.Luhn,
	}
	if resp.Country != nil {
		record.CountryName = resp.Country.Name
	}

	return record, nil
}

// APILayer bincheck: key-gated, flat snake_case fields.

type apilayerResponse struct {
	BankName string `json:"bank_name"`
	Country  string `json:"country"`
	URL      string `json:"url"`
	Type     string `json:"type"`
	Scheme   string `json:"scheme"`
	BIN      string `json:"bin"`
}

// NewAPILayerProvider creates the APILayer bincheck provider
func NewAPILayerProvider(cfg config.ProviderConfig, userAgent string) Provider {
	return Provider{
		Name:    ProviderAPILayer,
		Timeout: seconds(cfg.Timeout),
		BuildRequest: func(ctx context.Context, bin BIN) (*http.Request, error) {
			return newGetRequest(ctx, cfg.Endpoint, bin, map[string]string{
				"apikey":     cfg.APIKey,
				"User-Agent": userAgent,
			})
		},
		Normalize: normalizeAPILayer,
	}
}

func normalizeAPILayer(body []byte) (*Record, error) {
	var resp apilayerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	return &Record{
		BankName:    resp.BankName,
		BankURL:     resp.URL,
		CountryName: resp.Country,
		CardType:    resp.Type,
		Scheme:      resp.Scheme,
	}, nil
}
