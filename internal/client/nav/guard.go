package nav

import (
	"context"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/client/session"
	"github.com/dmitrijs2005/bankfront/internal/common"
	"github.com/dmitrijs2005/bankfront/internal/logging"
)

type Action int

const (
	Render Action = iota
	// Wait means the session is still loading; show a waiting indicator
	// and evaluate again once it resolves.
	Wait
	// Redirect means the guard already navigated to Target.
	Redirect
	// Forbidden means the user is signed in but lacks the required role.
	Forbidden
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

type Decision struct {
	Action Action
	Target string
}

type SessionView interface {
	State() session.State
}

type Paths struct {
	Home     string
	Login    string
	Register string
}

type Guards struct {
	session SessionView
	nav     *Navigator
	pending *PendingRedirects
	paths   Paths
	logger  logging.Logger
}

func NewGuards(s SessionView, n *Navigator, p *PendingRedirects, paths Paths, logger logging.Logger) *Guards {
	return &Guards{session: s, nav: n, pending: p, paths: paths, logger: logger}
}

// RequireAuth guards a screen that needs a signed-in user. An anonymous
// visitor has the current location recorded and is sent to login with the
// history entry replaced.
func (g *Guards) RequireAuth(ctx context.Context) Decision {
	st := g.session.State()
	if st.Loading {
		return Decision{Action: Wait}
	}
	if st.IsAuthenticated() {
		return Decision{Action: Render}
	}

	from := g.nav.Current()
	if err := g.pending.Record(ctx, from); err != nil {
		g.logger.Warn(ctx, "failed to record pending redirect", "error", err)
	}
	g.nav.Navigate(g.paths.Login, WithReplace())
	return Decision{Action: Redirect, Target: g.paths.Login}
}

// RequireAnonymous guards login and register. A signed-in user on either
// screen is sent to the pending redirect, or home when there is none.
func (g *Guards) RequireAnonymous(ctx context.Context) Decision {
	st := g.session.State()
	if st.Loading {
		return Decision{Action: Wait}
	}
	path := g.nav.Path()
	if !st.IsAuthenticated() || (path != g.paths.Login && path != g.paths.Register) {
		return Decision{Action: Render}
	}

	target, ok := g.pending.Take(ctx)
	if !ok || PathOf(target) == g.paths.Login || PathOf(target) == g.paths.Register {
		target = g.paths.Home
	}
	g.nav.Navigate(target, WithReplace())
	return Decision{Action: Redirect, Target: target}
}

// RequireRole is RequireAuth plus a role check. Users without the role get
// Forbidden rather than a redirect.
func (g *Guards) RequireRole(ctx context.Context, role models.Role) Decision {
	d := g.RequireAuth(ctx)
	if d.Action != Render {
		return d
	}
	if u := g.session.State().User; u == nil || u.Role != role {
		return Decision{Action: Forbidden}
	}
	return d
}

// SessionExpiredHandler returns the hook the HTTP interceptor calls after a
// forced logout. It remembers the current location for the next login and
// sends the user to login with the session-expired flag, unless they are
// already there.
func SessionExpiredHandler(n *Navigator, pending *PendingRedirects, loginPath string) func(ctx context.Context) {
	return func(ctx context.Context) {
		if n.Path() == loginPath {
			return
		}
		if pending != nil {
			_ = pending.Record(context.WithoutCancel(ctx), n.Current())
		}
		n.Navigate(loginPath+"?"+common.SessionExpiredQuery, WithReplace())
	}
}
