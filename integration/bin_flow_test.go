//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const chatID int64 = 555

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func postUpdate(t *testing.T, app *TestApp, body string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/telegram/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBINFlow_FallsBackToSecondProvider(t *testing.T) {
	var binlistCalls, handyCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/binlist/", func(w http.ResponseWriter, r *http.Request) {
		binlistCalls.Add(1)
		assert.Equal(t, "3", r.Header.Get("Accept-Version"))
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/handy/", func(w http.ResponseWriter, r *http.Request) {
		handyCalls.Add(1)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(`{"Status":"SUCCESS","Scheme":"visa","Type":"debit","Issuer":"Test Bank","CardTier":"CLASSIC","Country":{"A2":"US","Name":"US"}}`))
	})

	app := SetupTestApp(t, mux)

	var reply string
	app.Telegram.EXPECT().SendMessage(chatID, gomock.Any()).
		DoAndReturn(func(_ int64, text string) (int, error) {
			reply = text
			return 1, nil
		})

	postUpdate(t, app, CommandUpdate(1, chatID, "/bin 424242"))

	assert.Equal(t, int32(1), binlistCalls.Load())
	assert.Equal(t, int32(1), handyCalls.Load())
	assert.Contains(t, reply, "Banco: Test Bank")
	assert.Contains(t, reply, "País: US")
	assert.Contains(t, reply, "Tipo: debit")
	assert.Contains(t, reply, "Marca: visa")
	assert.Contains(t, reply, "Fuente: handyapi")

	summary := app.Stats.Summary()
	assert.Equal(t, int64(1), summary.LookupsBySource["handyapi"])
	assert.Equal(t, int64(1), summary.Commands["bin"])
}

func TestBINFlow_InvalidBINNeverReachesProviders(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	app := SetupTestApp(t, mux)

	var reply string
	app.Telegram.EXPECT().SendMessage(chatID, gomock.Any()).
		DoAndReturn(func(_ int64, text string) (int, error) {
			reply = text
			return 1, nil
		})

	postUpdate(t, app, CommandUpdate(2, chatID, "/bin 42424"))

	assert.Contains(t, reply, "BIN inválido")
	assert.Zero(t, calls.Load())
}

func TestBINFlow_AllProvidersDown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	app := SetupTestApp(t, mux)

	var reply string
	app.Telegram.EXPECT().SendMessage(chatID, gomock.Any()).
		DoAndReturn(func(_ int64, text string) (int, error) {
			reply = text
			return 1, nil
		})

	postUpdate(t, app, CommandUpdate(3, chatID, "/bin 424242"))

	assert.Contains(t, reply, "No se pudo consultar el BIN 424242")
	assert.Contains(t, reply, "/bin 555555")

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, float64(1), stats["failed_lookups"])
}

func TestBINFlow_HTTPLookupUsesSameCoordinator(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/binlist/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"scheme":"visa","type":"debit","bank":{"name":"Test Bank"},"country":{"name":"United States","emoji":"🇺🇸"}}`))
	})

	app := SetupTestApp(t, mux)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bin/424242", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Source string            `json:"source"`
		Record map[string]string `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "binlist", body.Source)
	assert.Equal(t, "🇺🇸", body.Record["country_flag"])
}
