package lookup

import (
	"fmt"
	"strings"
)

// LookupError defines the interface for lookup-specific errors
type LookupError interface {
	error
	Code() string    // Error code for categorization
	Message() string // Human-readable error message
	Temporary() bool // Whether another attempt later may succeed
}

// Example inputs offered to users whose lookup failed.
var SuggestedBINs = []string{"424242", "555555", "378282"}

// InvalidIdentifierError is returned before any network call when the input
// is not a six digit BIN.
type InvalidIdentifierError struct {
	Input  string
	Reason string
}

func (e InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid BIN %q: %s", e.Input, e.Reason)
}

func (e InvalidIdentifierError) Code() string {
	return "INVALID_IDENTIFIER"
}

func (e InvalidIdentifierError) Message() string {
	return "El BIN debe tener exactamente 6 dígitos."
}

func (e InvalidIdentifierError) Temporary() bool {
	return false
}

// ProviderError describes the failure of a single provider call. It never
// reaches the user directly; the coordinator moves on to the next provider.
type ProviderError struct {
	Provider   string
	Operation  string
	StatusCode int
	NotFound   bool
	Cause      error
}

func (e ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s failed during %s (HTTP %d): %v", e.Provider, e.Operation, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("provider %s failed during %s: %v", e.Provider, e.Operation, e.Cause)
}

func (e ProviderError) Code() string {
	if e.NotFound {
		return "PROVIDER_NOT_FOUND"
	}
	return "PROVIDER_ERROR"
}

func (e ProviderError) Message() string {
	if e.Cause == nil {
		return e.Operation
	}
	return e.Cause.Error()
}

func (e ProviderError) Temporary() bool {
	return !e.NotFound
}

func (e ProviderError) Unwrap() error {
	return e.Cause
}

// NotFoundError is returned when the last provider tried authoritatively
// reported that it knows nothing about the BIN.
type NotFoundError struct {
	BIN      BIN
	Provider string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("BIN %s not found (last provider: %s)", e.BIN, e.Provider)
}

func (e NotFoundError) Code() string {
	return "NOT_FOUND"
}

func (e NotFoundError) Message() string {
	return fmt.Sprintf("No se encontró información para el BIN %s.", e.BIN)
}

func (e NotFoundError) Temporary() bool {
	return false
}

// AllProvidersFailedError is returned when every configured provider errored
// or timed out. Errors holds one entry per provider tried.
type AllProvidersFailedError struct {
	BIN    BIN
	Errors []error
}

func (e AllProvidersFailedError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("all providers failed for BIN %s: %s", e.BIN, strings.Join(msgs, "; "))
}

func (e AllProvidersFailedError) Code() string {
	return "ALL_PROVIDERS_FAILED"
}

func (e AllProvidersFailedError) Message() string {
	return fmt.Sprintf("No se pudo consultar el BIN %s en este momento.", e.BIN)
}

func (e AllProvidersFailedError) Temporary() bool {
	return true
}

func (e AllProvidersFailedError) Unwrap() []error {
	return e.Errors
}

// Error creation helpers

// NewProviderError creates a ProviderError for a failed provider operation
func NewProviderError(provider, operation string, statusCode int, cause error) ProviderError {
	return ProviderError{
		Provider:   provider,
		Operation:  operation,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// NewNotFoundProviderError creates a ProviderError flagged as an authoritative miss
func NewNotFoundProviderError(provider string, statusCode int, cause error) ProviderError {
	return ProviderError{
		Provider:   provider,
		Operation:  "lookup",
		StatusCode: statusCode,
		NotFound:   true,
		Cause:      cause,
	}
}

// Error classification helpers

// IsInvalidIdentifier reports whether err rejected the input format
func IsInvalidIdentifier(err error) bool {
	_, ok := err.(InvalidIdentifierError)
	return ok
}

// IsNotFound reports whether err is an authoritative not-found outcome
func IsNotFound(err error) bool {
	_, ok := err.(NotFoundError)
	return ok
}

// IsAllProvidersFailed reports whether every provider failed
func IsAllProvidersFailed(err error) bool {
	_, ok := err.(AllProvidersFailedError)
	return ok
}

// IsTemporary reports whether retrying the lookup later may help
func IsTemporary(err error) bool {
	if lookupErr, ok := err.(LookupError); ok {
		return lookupErr.Temporary()
	}
	return false
}
