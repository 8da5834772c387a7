package chatbot

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"

	"binbot/internal/common"
	"binbot/internal/events"
	"binbot/internal/lookup"
	"binbot/internal/ratelimit"
	"binbot/internal/stats"
	"binbot/internal/subscription"

	"go.uber.org/zap"
)

// BINLookup is the lookup capability used by /bin and /status
type BINLookup interface {
	Lookup(ctx context.Context, raw string) (*lookup.Result, error)
	Providers() []string
}

// Subscriber is the subscription capability used by /subs and /suscribir
type Subscriber interface {
	Subscribe(ctx context.Context, email, key string) (*subscription.Result, error)
	Catalog() subscription.Catalog
	DefaultTarget() string
}

// HandlerDeps are the collaborators of the command handlers. Limiter, Clock
// and Timezone have defaults.
type HandlerDeps struct {
	Lookup        BINLookup
	Subscriptions Subscriber
	Stats         *stats.Collector
	Limiter       ratelimit.Limiter
	EventBus      events.EventBus
	Clock         common.Clock
	Timezone      string
	Logger        *zap.Logger
}

// Handlers implements every chat command. Handlers share no mutable state.
type Handlers struct {
	HandlerDeps
}

// NewHandlers creates the command handlers
func NewHandlers(deps HandlerDeps) *Handlers {
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.Noop{}
	}
	if deps.Clock == nil {
		deps.Clock = common.NewRealClock()
	}
	if deps.Timezone == "" {
		deps.Timezone = "UTC"
	}
	return &Handlers{HandlerDeps: deps}
}

// Router builds the route table
func (h *Handlers) Router() (*Router, error) {
	var router *Router

	help := HandlerFunc(func(ctx context.Context, cmd Command) (Reply, error) {
		return Reply{Text: router.HelpText()}, nil
	})

	router, err := NewRouter(
		Route{Name: "start", Description: "Comprobar que el bot funciona", Handler: HandlerFunc(h.start)},
		Route{Name: "help", Description: "Esta ayuda", Handler: help},
		Route{Name: "time", Description: "Hora del servidor", Handler: HandlerFunc(h.serverTime)},
		Route{Name: "status", Description: "Estado y estadísticas del bot", Handler: HandlerFunc(h.status)},
		Route{Name: "bin", Usage: "[6 dígitos]", Description: "Consultar información de un BIN", Handler: HandlerFunc(h.bin)},
		Route{Name: "subs", Usage: "[email]", Description: "Suscripción automática (si está disponible)", Handler: HandlerFunc(h.subs), Progress: h.subsProgress},
		Route{Name: "suscribir", Usage: "[email]", Description: "Links directos para suscripción manual", Handler: HandlerFunc(h.suscribir)},
		Route{Name: "newsletters", Description: "Ayuda sobre suscripciones", Handler: HandlerFunc(h.newsletters)},
	)
	if err != nil {
		return nil, err
	}
	return router, nil
}

func (h *Handlers) start(ctx context.Context, cmd Command) (Reply, error) {
	greeting := "👋 ¡Hola!"
	if cmd.FirstName != "" {
		greeting = fmt.Sprintf("👋 ¡Hola, %s!", html.EscapeString(cmd.FirstName))
	}
	return Reply{Text: "🎉 ¡Bot funcionando!\n\n" + greeting +
		" Consulta un BIN con /bin 424242 o usa /help para ver todos los comandos."}, nil
}

func (h *Handlers) serverTime(ctx context.Context, cmd Command) (Reply, error) {
	now := common.FormatDateTime(h.Clock.Now(), h.Timezone)
	return Reply{Text: fmt.Sprintf("🕐 <b>Hora del servidor:</b> %s (%s)", now, html.EscapeString(h.Timezone))}, nil
}

func (h *Handlers) status(ctx context.Context, cmd Command) (Reply, error) {
	var b strings.Builder
	b.WriteString("📊 <b>Estado del bot</b>\n\n")

	if h.Stats != nil {
		summary := h.Stats.Summary()
		fmt.Fprintf(&b, "🚀 Activo desde: %s (%s)\n", h.Stats.StartedAt(h.Timezone), html.EscapeString(h.Timezone))
		fmt.Fprintf(&b, "⏱️ Uptime: %s\n", summary.Uptime)
		fmt.Fprintf(&b, "🔎 Consultas BIN: %d correctas, %d fallidas\n", summary.SuccessfulLookups, summary.FailedLookups)
		for _, source := range sortedKeys(summary.LookupsBySource) {
			fmt.Fprintf(&b, "   • %s: %d\n", html.EscapeString(source), summary.LookupsBySource[source])
		}
		var rejected int64
		for _, n := range summary.RejectedLookups {
			rejected += n
		}
		fmt.Fprintf(&b, "🚫 Consultas rechazadas: %d\n", rejected)
		var subs int64
		for _, n := range summary.Subscriptions {
			subs += n
		}
		fmt.Fprintf(&b, "📧 Suscripciones procesadas: %d\n", subs)
	}

	providers := "ninguno"
	if h.Lookup != nil && len(h.Lookup.Providers()) > 0 {
		providers = strings.Join(h.Lookup.Providers(), " → ")
	}
	fmt.Fprintf(&b, "🔌 Proveedores: %s", html.EscapeString(providers))

	return Reply{Text: b.String()}, nil
}

func (h *Handlers) bin(ctx context.Context, cmd Command) (Reply, error) {
	// malformed input never touches the limiter or the providers
	if _, err := lookup.ParseBIN(cmd.Args); err != nil {
		return h.binFailed(cmd, err), nil
	}

	if !h.Limiter.Allow(ctx, fmt.Sprintf("chat:%d", cmd.ChatID)) {
		h.publish(events.TopicLookupFailed, events.LookupFailed{
			Event:    events.WithCorrelation(cmd.CorrelationID),
			ChatID:   cmd.ChatID,
			Input:    cmd.Args,
			Reason:   "RATE_LIMITED",
			Rejected: true,
		})
		return Reply{Text: "⏳ Demasiadas consultas. Intenta de nuevo en un minuto."}, nil
	}

	started := h.Clock.Now()
	result, err := h.Lookup.Lookup(ctx, cmd.Args)
	if err != nil {
		return h.binFailed(cmd, err), nil
	}

	h.publish(events.TopicLookupCompleted, events.LookupCompleted{
		Event:    events.WithCorrelation(cmd.CorrelationID),
		ChatID:   cmd.ChatID,
		BIN:      result.BIN.String(),
		Source:   result.Source,
		Attempts: result.Attempts,
		Duration: h.Clock.Now().Sub(started),
	})
	return Reply{Text: lookup.FormatResult(result)}, nil
}

func (h *Handlers) binFailed(cmd Command, err error) Reply {
	reason := "UNEXPECTED"
	if lookupErr, ok := err.(lookup.LookupError); ok {
		reason = lookupErr.Code()
	}
	h.Logger.Info("BIN lookup did not succeed",
		zap.String("correlation_id", cmd.CorrelationID),
		zap.String("reason", reason),
		zap.Error(err))
	h.publish(events.TopicLookupFailed, events.LookupFailed{
		Event:    events.WithCorrelation(cmd.CorrelationID),
		ChatID:   cmd.ChatID,
		Input:    cmd.Args,
		Reason:   reason,
		Rejected: lookup.IsInvalidIdentifier(err),
	})
	return Reply{Text: lookup.FormatFailure(err)}
}

func (h *Handlers) subsProgress(cmd Command) (string, bool) {
	email, err := subscription.ValidateEmail(cmd.Args)
	if err != nil {
		return "", false
	}
	return subscription.FormatProgress(email), true
}

func (h *Handlers) subs(ctx context.Context, cmd Command) (Reply, error) {
	result, err := h.Subscriptions.Subscribe(ctx, cmd.Args, h.Subscriptions.DefaultTarget())
	if subscription.IsInvalidEmail(err) {
		return Reply{Text: subscription.FormatInvalidEmail("subs")}, nil
	}
	if err != nil {
		return Reply{}, err
	}

	h.publish(events.TopicSubscriptionProcessed, events.SubscriptionProcessed{
		Event:      events.WithCorrelation(cmd.CorrelationID),
		ChatID:     cmd.ChatID,
		Newsletter: result.Newsletter.Key,
		Status:     string(result.Status),
	})
	return Reply{Text: subscription.FormatResult(result)}, nil
}

func (h *Handlers) suscribir(ctx context.Context, cmd Command) (Reply, error) {
	email, err := subscription.ValidateEmail(cmd.Args)
	if err != nil {
		return Reply{Text: subscription.FormatInvalidEmail("suscribir")}, nil
	}

	catalog := h.Subscriptions.Catalog()
	buttons := make([]InlineButton, 0, len(catalog))
	for _, n := range catalog {
		buttons = append(buttons, InlineButton{Text: n.Button, URL: n.URL})
	}

	return Reply{
		Text:     subscription.FormatCatalog(email, catalog),
		Keyboard: NewLinkKeyboard(buttons...),
	}, nil
}

func (h *Handlers) newsletters(ctx context.Context, cmd Command) (Reply, error) {
	return Reply{Text: subscription.NewslettersHelp}, nil
}

func (h *Handlers) publish(topic string, event interface{}) {
	if h.EventBus == nil {
		return
	}
	if err := h.EventBus.Publish(topic, event); err != nil {
		h.Logger.Warn("Failed to publish event", zap.String("topic", topic), zap.Error(err))
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
