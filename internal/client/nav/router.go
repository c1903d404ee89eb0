package nav

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
)

type Access int

const (
	Public Access = iota
	AuthOnly
	AnonymousOnly
	AdminOnly
)

type Screen func(ctx context.Context, w io.Writer) error

type Route struct {
	Path   string
	Title  string
	Access Access
	Screen Screen
}

// maxHops bounds guard redirects during one Render.
const maxHops = 8

var (
	ErrNoRoute      = errors.New("no such screen")
	ErrRedirectLoop = errors.New("too many redirects")
	ErrStillLoading = errors.New("session is still loading")
)

type Router struct {
	routes map[string]Route
	guards *Guards
	nav    *Navigator
}

func NewRouter(g *Guards, n *Navigator) *Router {
	return &Router{routes: make(map[string]Route), guards: g, nav: n}
}

func (r *Router) Handle(route Route) {
	r.routes[route.Path] = route
}

// Routes lists registered routes sorted by path.
func (r *Router) Routes() []Route {
	out := make([]Route, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Decide runs the guard of the route at the current location.
func (r *Router) Decide(ctx context.Context) (Route, Decision, error) {
	route, ok := r.routes[r.nav.Path()]
	if !ok {
		return Route{}, Decision{}, fmt.Errorf("%w: %s", ErrNoRoute, r.nav.Path())
	}

	var d Decision
	switch route.Access {
	case AuthOnly:
		d = r.guards.RequireAuth(ctx)
	case AnonymousOnly:
		d = r.guards.RequireAnonymous(ctx)
	case AdminOnly:
		d = r.guards.RequireRole(ctx, models.RoleAdmin)
	default:
		d = Decision{Action: Render}
	}
	return route, d, nil
}

// Render follows guard redirects and renders the screen it lands on. A
// Forbidden decision writes a notice instead of the screen. ErrStillLoading
// is returned while the session has not resolved.
func (r *Router) Render(ctx context.Context, w io.Writer) error {
	for range maxHops {
		route, d, err := r.Decide(ctx)
		if err != nil {
			return err
		}
		switch d.Action {
		case Render:
			return route.Screen(ctx, w)
		case Wait:
			return ErrStillLoading
		case Forbidden:
			_, err := fmt.Fprintf(w, "Forbidden: %s requires administrator access.\n", route.Path)
			return err
		case Redirect:
			continue
		}
	}
	return ErrRedirectLoop
}
