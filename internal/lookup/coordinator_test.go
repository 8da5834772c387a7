package lookup

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"binbot/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testBankBody = `{"bank":{"name":"Test Bank"},"country":{"name":"US"},"type":"debit","scheme":"visa"}`

func stubProvider(name string, timeout time.Duration) Provider {
	return Provider{
		Name:    name,
		Timeout: timeout,
		BuildRequest: func(ctx context.Context, bin BIN) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, "https://"+name+".test/bin/"+bin.String(), nil)
		},
		Normalize: normalizeBinlist,
	}
}

func stubPath(name, bin string) string {
	return name + ".test/bin/" + bin
}

func TestCoordinator_RejectsInvalidIdentifierWithoutNetwork(t *testing.T) {
	inputs := []string{"42424", "", "4242424", "abcdef", "42 424", "42424a", "４２４２４２", " 424242", "424242\n", "\t424242 "}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			client := mocks.NewMockHTTPClient()
			coordinator := NewCoordinator(
				[]Provider{stubProvider("a", time.Second), stubProvider("b", time.Second)},
				client, zaptest.NewLogger(t))

			result, err := coordinator.Lookup(context.Background(), input)

			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, IsInvalidIdentifier(err), "got %T", err)
			assert.Equal(t, 0, client.GetRequestCount())
		})
	}
}

func TestCoordinator_FallsBackInOrder(t *testing.T) {
	client := mocks.NewMockHTTPClient()
	client.SetResponse("GET", stubPath("a", "424242"), http.StatusInternalServerError, `{"error":"boom"}`)
	client.SetResponse("GET", stubPath("b", "424242"), http.StatusOK, testBankBody)

	coordinator := NewCoordinator(
		[]Provider{stubProvider("a", time.Second), stubProvider("b", time.Second)},
		client, zaptest.NewLogger(t))

	result, err := coordinator.Lookup(context.Background(), "424242")
	require.NoError(t, err)

	assert.Equal(t, "b", result.Source)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, "Test Bank", result.Record.BankName)

	requests := client.GetRequests()
	require.Len(t, requests, 2)
	assert.Equal(t, "a.test", requests[0].URL.Host)
	assert.Equal(t, "b.test", requests[1].URL.Host)
	assert.Equal(t, 1, client.GetRequestCountFor("GET", stubPath("a", "424242")))
	assert.Equal(t, 1, client.GetRequestCountFor("GET", stubPath("b", "424242")))
}

func TestCoordinator_StopsAtFirstSuccess(t *testing.T) {
	client := mocks.NewMockHTTPClient()
	client.SetResponse("GET", stubPath("a", "424242"), http.StatusOK, testBankBody)
	client.SetResponse("GET", stubPath("b", "424242"), http.StatusOK, testBankBody)

	coordinator := NewCoordinator(
		[]Provider{stubProvider("a", time.Second), stubProvider("b", time.Second)},
		client, zaptest.NewLogger(t))

	result, err := coordinator.Lookup(context.Background(), "424242")
	require.NoError(t, err)

	assert.Equal(t, "a", result.Source)
	assert.Equal(t, 1, client.GetRequestCount())
}

func TestCoordinator_AllProvidersFailed(t *testing.T) {
	client := mocks.NewMockHTTPClient()
	client.SimulateNetworkError("GET", stubPath("a", "424242"))
	client.SetResponse("GET", stubPath("b", "424242"), http.StatusBadGateway, "")

	coordinator := NewCoordinator(
		[]Provider{stubProvider("a", time.Second), stubProvider("b", time.Second)},
		client, zaptest.NewLogger(t))

	result, err := coordinator.Lookup(context.Background(), "424242")
	assert.Nil(t, result)
	require.Error(t, err)

	var failed AllProvidersFailedError
	require.True(t, errors.As(err, &failed))
	assert.Len(t, failed.Errors, 2)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "502")
	assert.True(t, IsTemporary(err))
}

func TestCoordinator_NotFoundFromLastProvider(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(c *mocks.MockHTTPClient)
		wantNotFound bool
	}{
		{
			name: "last provider answers 404",
			setup: func(c *mocks.MockHTTPClient) {
				c.SimulateNetworkError("GET", stubPath("a", "999999"))
				c.SetResponse("GET", stubPath("b", "999999"), http.StatusNotFound, "")
			},
			wantNotFound: true,
		},
		{
			name: "last provider answers empty object",
			setup: func(c *mocks.MockHTTPClient) {
				c.SetResponse("GET", stubPath("a", "999999"), http.StatusServiceUnavailable, "")
				c.SetResponse("GET", stubPath("b", "999999"), http.StatusOK, "{}")
			},
			wantNotFound: true,
		},
		{
			name: "earlier not found does not win over a later generic failure",
			setup: func(c *mocks.MockHTTPClient) {
				c.SetResponse("GET", stubPath("a", "999999"), http.StatusNotFound, "")
				c.SimulateNetworkError("GET", stubPath("b", "999999"))
			},
			wantNotFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewMockHTTPClient()
			tt.setup(client)

			coordinator := NewCoordinator(
				[]Provider{stubProvider("a", time.Second), stubProvider("b", time.Second)},
				client, zaptest.NewLogger(t))

			_, err := coordinator.Lookup(context.Background(), "999999")
			require.Error(t, err)

			assert.Equal(t, tt.wantNotFound, IsNotFound(err))
			assert.Equal(t, !tt.wantNotFound, IsAllProvidersFailed(err))
			assert.Equal(t, 2, client.GetRequestCount())
		})
	}
}

func TestCoordinator_TimeoutTreatsProviderAsFailed(t *testing.T) {
	client := mocks.NewMockHTTPClient()
	client.SimulateDelay("GET", stubPath("slow", "424242"), 2*time.Second)
	client.SetResponse("GET", stubPath("slow", "424242"), http.StatusOK, testBankBody)
	client.SetResponse("GET", stubPath("fast", "424242"), http.StatusOK, testBankBody)

	coordinator := NewCoordinator(
		[]Provider{stubProvider("slow", 20*time.Millisecond), stubProvider("fast", time.Second)},
		client, zaptest.NewLogger(t))

	start := time.Now()
	result, err := coordinator.Lookup(context.Background(), "424242")
	require.NoError(t, err)

	assert.Equal(t, "fast", result.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCoordinator_MalformedBodyFallsBack(t *testing.T) {
	client := mocks.NewMockHTTPClient()
	client.SetResponse("GET", stubPath("a", "424242"), http.StatusOK, "<html>not json</html>")
	client.SetResponse("GET", stubPath("b", "424242"), http.StatusOK, testBankBody)

	coordinator := NewCoordinator(
		[]Provider{stubProvider("a", time.Second), stubProvider("b", time.Second)},
		client, zaptest.NewLogger(t))

	result, err := coordinator.Lookup(context.Background(), "424242")
	require.NoError(t, err)
	assert.Equal(t, "b", result.Source)
}

func TestCoordinator_NoProviders(t *testing.T) {
	client := mocks.NewMockHTTPClient()
	coordinator := NewCoordinator(nil, client, zaptest.NewLogger(t))

	_, err := coordinator.Lookup(context.Background(), "424242")
	require.Error(t, err)
	assert.True(t, IsAllProvidersFailed(err))
	assert.Contains(t, err.Error(), "no BIN providers configured")
	assert.Equal(t, 0, client.GetRequestCount())
}

func TestCoordinator_ExampleRendering(t *testing.T) {
	client := mocks.NewMockHTTPClient()
	client.SetResponse("GET", stubPath("stub", "424242"), http.StatusOK, testBankBody)

	coordinator := NewCoordinator([]Provider{stubProvider("stub", time.Second)}, client, zaptest.NewLogger(t))

	result, err := coordinator.Lookup(context.Background(), "424242")
	require.NoError(t, err)

	text := FormatResult(result)
	assert.Contains(t, text, "Banco: Test Bank")
	assert.Contains(t, text, "País: US")
	assert.Contains(t, text, "Tipo: debit")
	assert.Contains(t, text, "Marca: visa")
	assert.Contains(t, text, "Fuente: stub")
}

func TestCoordinator_Providers(t *testing.T) {
	coordinator := NewCoordinator(
		[]Provider{stubProvider("a", 0), stubProvider("b", 0)},
		mocks.NewMockHTTPClient(), zaptest.NewLogger(t))

	assert.Equal(t, []string{"a", "b"}, coordinator.Providers())
	assert.Equal(t, defaultProviderTimeout, coordinator.providers[0].Timeout)
}
