package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
	"github.com/jobhub/jobboard/internal/metrics"
)

// RouteGuard decides whether a protected route may render for the
// persisted session. A dead session is cleared on the way out.
type RouteGuard struct {
	store     *SessionStore
	validator *SessionValidator
	log       zerolog.Logger
}

func NewRouteGuard(store *SessionStore, validator *SessionValidator, log zerolog.Logger) *RouteGuard {
	return &RouteGuard{store: store, validator: validator, log: log}
}

// Check resolves route against the stored session. It never returns
// GuardVerifying: the decision is made before it returns.
func (g *RouteGuard) Check(ctx context.Context, route domain.Route) domain.Decision {
	rec := g.load(ctx, route)
	loginPath := loginPathFor(route)

	if rec == nil {
		metrics.GuardDecisionsTotal.WithLabelValues("login").Inc()
		return domain.Decision{
			State:      domain.GuardRedirected,
			Path:       route.Path,
			RedirectTo: loginPath,
			Nav:        domain.NavState{From: route.Path, Message: domain.MessageLoginRequired},
		}
	}

	if _, err := g.validator.Check(rec.Token); err != nil {
		if cerr := g.store.Clear(ctx, rec.Namespace); cerr != nil {
			g.log.Warn().Err(cerr).Str("namespace", string(rec.Namespace)).Msg("clear dead session failed")
		}
		msg := domain.MessageLoginRequired
		if errors.Is(err, domain.ErrSessionExpired) {
			msg = domain.MessageSessionExpired
		}
		g.log.Debug().Err(err).Str("path", route.Path).Msg("session rejected by guard")
		metrics.GuardDecisionsTotal.WithLabelValues("login").Inc()
		return domain.Decision{
			State:      domain.GuardRedirected,
			Path:       route.Path,
			RedirectTo: loginPath,
			Nav:        domain.NavState{From: route.Path, Message: msg},
		}
	}

	if route.Require != "" && !domain.RoleMatches(string(rec.Identity.Role), string(route.Require)) {
		metrics.GuardDecisionsTotal.WithLabelValues("denied").Inc()
		return domain.Decision{
			State:      domain.GuardRedirected,
			Path:       route.Path,
			RedirectTo: domain.LandingPage(rec.Identity.Role),
			Nav:        domain.NavState{From: route.Path, Message: domain.MessageAccessDenied},
			Record:     rec,
		}
	}

	metrics.GuardDecisionsTotal.WithLabelValues("allowed").Inc()
	return domain.Decision{State: domain.GuardAllowed, Path: route.Path, Record: rec}
}

// Enforce runs Check and performs the redirect, if any. It reports whether
// the route may render.
func (g *RouteGuard) Enforce(ctx context.Context, route domain.Route, nav ports.Navigator) bool {
	d := g.Check(ctx, route)
	if !d.Allowed() && nav != nil {
		nav.Navigate(d.RedirectTo, d.Nav)
	}
	return d.Allowed()
}

func (g *RouteGuard) load(ctx context.Context, route domain.Route) *domain.SessionRecord {
	switch route.Scope {
	case domain.ScopeStandard:
		return g.store.Load(ctx, domain.NamespaceStandard)
	case domain.ScopeAdmin:
		return g.store.Load(ctx, domain.NamespaceAdmin)
	}
	if domain.CanonicalRole(string(route.Require)) == domain.RoleAdmin {
		return g.store.LoadPreferring(ctx, domain.NamespaceAdmin)
	}
	return g.store.LoadEither(ctx)
}

func loginPathFor(route domain.Route) string {
	if route.Scope == domain.ScopeAdmin || domain.CanonicalRole(string(route.Require)) == domain.RoleAdmin {
		return domain.PathAdminLogin
	}
	return domain.PathLogin
}
