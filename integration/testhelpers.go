//go:build integration

package integration

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"binbot/api/routes"
	"binbot/internal/chatbot"
	"binbot/internal/common"
	"binbot/internal/config"
	"binbot/internal/events"
	"binbot/internal/lookup"
	"binbot/internal/mocks"
	"binbot/internal/stats"
	"binbot/internal/subscription"
	"binbot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
)

// TestApp is the whole bot wired like cmd/server, with fake BIN providers
// behind an httptest server and a mocked Telegram provider.
type TestApp struct {
	Router    *gin.Engine
	Telegram  *mocks.MockTelegramProvider
	EventBus  events.EventBus
	Stats     *stats.Collector
	Providers *httptest.Server
}

// SetupTestApp starts the fake providers with mux and wires the bot in
// webhook mode. Providers are tried in order: binlist, handyapi.
func SetupTestApp(t *testing.T, mux *http.ServeMux) *TestApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	zapLogger := zaptest.NewLogger(t)
	providers := httptest.NewServer(mux)
	t.Cleanup(providers.Close)

	cfg := config.LookupConfig{
		Order:     []string{"binlist", "handyapi"},
		UserAgent: "binbot-test",
		Binlist:   config.ProviderConfig{Endpoint: providers.URL + "/binlist", Timeout: 2},
		HandyAPI:  config.ProviderConfig{Endpoint: providers.URL + "/handy", APIKey: "test-key", Timeout: 2},
	}

	eventBus := events.NewEventBus(zapLogger)
	t.Cleanup(func() { _ = eventBus.Close() })

	clock := common.NewRealClock()
	collector := stats.NewCollector(clock)
	require.NoError(t, collector.Attach(eventBus))

	coordinator := lookup.NewCoordinator(lookup.NewProvidersFromConfig(cfg, zapLogger), providers.Client(), zapLogger)
	subscriptions := subscription.NewHelper(config.SubscriptionConfig{Target: "guardian"}, providers.Client(), zapLogger)

	ctrl := gomock.NewController(t)
	telegram := mocks.NewMockTelegramProvider(ctrl)

	handlers := chatbot.NewHandlers(chatbot.HandlerDeps{
		Lookup:        coordinator,
		Subscriptions: subscriptions,
		Stats:         collector,
		EventBus:      eventBus,
		Clock:         clock,
		Logger:        zapLogger,
	})
	commandRouter, err := handlers.Router()
	require.NoError(t, err)

	service := chatbot.NewService(telegram, commandRouter, eventBus, nil, zapLogger)

	router := gin.New()
	routes.SetupRoutes(router, routes.Deps{
		Lookup:  coordinator,
		Stats:   collector,
		Webhook: service,
		Logger:  logger.FromZap(zapLogger),
	})

	return &TestApp{
		Router:    router,
		Telegram:  telegram,
		EventBus:  eventBus,
		Stats:     collector,
		Providers: providers,
	}
}

// CommandUpdate is a webhook body for a private chat message
func CommandUpdate(updateID int, chatID int64, text string) string {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return `{"update_id":` + itoa(int64(updateID)) + `,"message":{"message_id":1,"date":0,` +
		`"chat":{"id":` + itoa(chatID) + `,"type":"private"},` +
		`"from":{"id":7,"is_bot":false,"first_name":"Ana"},` +
		`"text":"` + text + `","entities":[{"type":"bot_command","offset":0,"length":` + itoa(int64(length)) + `}]}}`
}
