package chatbot

import (
	"fmt"
	"strings"
)

// FallbackText answers plain text and unknown commands
const FallbackText = "🤔 No entiendo ese mensaje. Usa /help para ver los comandos disponibles."

// Router resolves a command name against a fixed route table
type Router struct {
	routes []Route
	byName map[string]Route
}

// NewRouter builds a router over routes, keeping their order for /help
func NewRouter(routes ...Route) (*Router, error) {
	r := &Router{
		routes: make([]Route, 0, len(routes)),
		byName: make(map[string]Route, len(routes)),
	}

	for _, route := range routes {
		name := strings.ToLower(strings.TrimPrefix(route.Name, "/"))
		if name == "" || route.Handler == nil {
			return nil, fmt.Errorf("route %q has no name or handler", route.Name)
		}
		if _, exists := r.byName[name]; exists {
			return nil, DuplicateRouteError{Name: name}
		}
		route.Name = name
		r.routes = append(r.routes, route)
		r.byName[name] = route
	}

	return r, nil
}

// Match returns the route for cmd. Plain text never matches.
func (r *Router) Match(cmd Command) (Route, bool) {
	if cmd.IsText() {
		return Route{}, false
	}
	route, ok := r.byName[cmd.Name]
	return route, ok
}

// Routes returns the table in registration order
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// HelpText lists every route with its usage and description
func (r *Router) HelpText() string {
	var b strings.Builder
	b.WriteString("🤖 <b>Comandos disponibles:</b>\n")
	for _, route := range r.routes {
		b.WriteString("\n/")
		b.WriteString(route.Name)
		if route.Usage != "" {
			b.WriteString(" ")
			b.WriteString(route.Usage)
		}
		if route.Description != "" {
			b.WriteString(" - ")
			b.WriteString(route.Description)
		}
	}
	return b.String()
}
