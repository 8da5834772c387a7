package mocks

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// HTTPClientInterface defines the interface for HTTP clients used by the application
type HTTPClientInterface interface {
	Do(req *http.Request) (*http.Response, error)
}

// MockHTTPClient is a scripted HTTPClientInterface keyed by method, host and path
type MockHTTPClient struct {
	mu sync.RWMutex

	// Request tracking
	requests   []CapturedRequest
	callCounts map[string]int

	// Response configuration
	responses       map[string]cannedResponse
	errors          map[string]error
	defaultResponse *cannedResponse
	defaultError    error

	// Behavior simulation
	delays     map[string]time.Duration
	callbackFn func(*http.Request) (*http.Response, error)
}

// CapturedRequest represents a captured HTTP request for verification
type CapturedRequest struct {
	Method    string
	URL       *url.URL
	Headers   http.Header
	Body      []byte
	Timestamp time.Time
}

type cannedResponse struct {
	statusCode int
	body       string
}

func (c cannedResponse) build(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode: c.statusCode,
		Status:     fmt.Sprintf("%d %s", c.statusCode, http.StatusText(c.statusCode)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(c.body)),
		Request:    req,
	}
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		requests:   make([]CapturedRequest, 0),
		callCounts: make(map[string]int),
		responses:  make(map[string]cannedResponse),
		errors:     make(map[string]error),
		delays:     make(map[string]time.Duration),
	}
}

func requestKey(method, hostAndPath string) string {
	return fmt.Sprintf("%s:%s", method, hostAndPath)
}

// Do implements the HTTPClientInterface.Do method. Simulated delays honor
// the request context, so a delay longer than the caller's deadline fails
// the same way a slow server would.
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()

	// Capture the request
	body := []byte{}
	if req.Body != nil {
		bodyBytes, _ := io.ReadAll(req.Body)
		body = bodyBytes
		// Restore the body for potential reuse
		req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}

	m.requests = append(m.requests, CapturedRequest{
		Method:    req.Method,
		URL:       req.URL,
		Headers:   req.Header.Clone(),
		Body:      body,
		Timestamp: time.Now(),
	})

	key := requestKey(req.Method, req.URL.Host+req.URL.Path)
	m.callCounts[key]++
	m.callCounts["total"]++

	delay, hasDelay := m.delays[key]
	if !hasDelay {
		delay, hasDelay = m.delays["default"]
	}
	callback := m.callbackFn
	m.mu.Unlock()

	if hasDelay {
		select {
		case <-time.After(delay):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	if callback != nil {
		return callback(req)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, exists := m.errors[key]; exists {
		return nil, err
	}
	if m.defaultError != nil {
		return nil, m.defaultError
	}
	if resp, exists := m.responses[key]; exists {
		return resp.build(req), nil
	}
	if m.defaultResponse != nil {
		return m.defaultResponse.build(req), nil
	}

	return cannedResponse{statusCode: http.StatusOK, body: "{}"}.build(req), nil
}

// SetResponse configures the response for method and host+path, e.g.
// SetResponse("GET", "lookup.binlist.net/424242", 200, body)
func (m *MockHTTPClient) SetResponse(method, hostAndPath string, statusCode int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[requestKey(method, hostAndPath)] = cannedResponse{statusCode: statusCode, body: body}
}

// SetError configures a transport error for method and host+path
func (m *MockHTTPClient) SetError(method, hostAndPath string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[requestKey(method, hostAndPath)] = err
}

// SetDefaultResponse configures a default response for all requests
func (m *MockHTTPClient) SetDefaultResponse(statusCode int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResponse = &cannedResponse{statusCode: statusCode, body: body}
}

// SetDefaultError configures a default error for all requests
func (m *MockHTTPClient) SetDefaultError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultError = err
}

// SetCallback configures a callback function to handle requests dynamically
func (m *MockHTTPClient) SetCallback(fn func(*http.Request) (*http.Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbackFn = fn
}

// SimulateNetworkError makes method and host+path fail with a connection error
func (m *MockHTTPClient) SimulateNetworkError(method, hostAndPath string) {
	m.SetError(method, hostAndPath, fmt.Errorf("network error: connection refused"))
}

// SimulateDelay delays responses for method and host+path
func (m *MockHTTPClient) SimulateDelay(method, hostAndPath string, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[requestKey(method, hostAndPath)] = delay
}

// GetRequests returns all captured requests in call order
func (m *MockHTTPClient) GetRequests() []CapturedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	requests := make([]CapturedRequest, len(m.requests))
	copy(requests, m.requests)
	return requests
}

// GetRequestCount returns the total number of requests made
func (m *MockHTTPClient) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.callCounts["total"]
}

// GetRequestCountFor returns the number of requests made to method and host+path
func (m *MockHTTPClient) GetRequestCountFor(method, hostAndPath string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.callCounts[requestKey(method, hostAndPath)]
}

// GetLastRequest returns the last captured request
func (m *MockHTTPClient) GetLastRequest() *CapturedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.requests) == 0 {
		return nil
	}
	return &m.requests[len(m.requests)-1]
}

// Reset clears all request history and configurations
func (m *MockHTTPClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = make([]CapturedRequest, 0)
	m.callCounts = make(map[string]int)
	m.responses = make(map[string]cannedResponse)
	m.errors = make(map[string]error)
	m.delays = make(map[string]time.Duration)
	m.defaultResponse = nil
	m.defaultError = nil
	m.callbackFn = nil
}
