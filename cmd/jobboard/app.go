package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
	"github.com/jobhub/jobboard/internal/core/service"
	redisdb "github.com/jobhub/jobboard/internal/infrastructure/db/redis"
	"github.com/jobhub/jobboard/internal/infrastructure/push"
	"github.com/jobhub/jobboard/internal/infrastructure/rest"
	"github.com/jobhub/jobboard/internal/infrastructure/storage"
	"github.com/jobhub/jobboard/internal/pkg/config"
	"github.com/jobhub/jobboard/pkg/logger"
)

// app is the wired client core for one CLI invocation.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	out       io.Writer
	creds     *rest.Credentials
	rest      *rest.Client
	validator *service.SessionValidator
	auth      *service.AuthService
	guard     *service.RouteGuard
	nav       *terminalNavigator
	closers   []func() error
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, log: logger.Component("client"), out: out}

	kv, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	policy := service.ClaimsStrict
	if !cfg.Session.StrictClaims {
		policy = service.ClaimsLenient
	}

	a.creds = &rest.Credentials{}
	a.rest = rest.New(cfg.APIURL, cfg.RequestTimeout, a.creds, logger.Component("rest"))
	a.validator = service.NewSessionValidator(policy)
	a.nav = &terminalNavigator{out: out}

	store := service.NewSessionStore(kv, logger.Component("session"))
	a.auth = service.NewAuthService(
		rest.NewAuthAPI(a.rest),
		store,
		a.validator,
		a.creds,
		a.nav,
		logger.Component("auth"),
		service.AuthOptions{DeactivateAdminOnLogout: cfg.Session.DeactivateAdminOnLogout},
	)
	a.guard = service.NewRouteGuard(store, a.validator, logger.Component("guard"))
	a.rest.OnUnauthorized(a.auth.HandleUnauthorized)
	a.auth.Subscribe(func(ev domain.SessionEvent) {
		a.log.Debug().Str("event", string(ev.Kind)).Msg("session event")
	})

	a.auth.Restore(ctx)
	return a, nil
}

func (a *app) openStorage(ctx context.Context) (ports.KeyValueStorage, error) {
	switch a.cfg.Session.Storage {
	case config.StorageMemory:
		return storage.NewMemory(), nil
	case config.StorageRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: a.cfg.Session.RedisAddr, DB: a.cfg.Session.RedisDB})
		if err != nil {
			return nil, fmt.Errorf("session storage: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return storage.NewRedis(client, a.cfg.Session.RedisPrefix), nil
	default:
		return storage.NewFile(a.cfg.Session.File, logger.Component("storage")), nil
	}
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn().Err(err).Msg("close failed")
		}
	}
}

// session returns the live session or an error telling the user to log in.
func (a *app) session(ctx context.Context) (*domain.SessionRecord, error) {
	rec := a.auth.Current(ctx)
	if rec == nil {
		return nil, fmt.Errorf("%s", domain.MessageLoginRequired)
	}
	return rec, nil
}

// feed builds a notification feed for the current session's principal.
func (a *app) feed(ctx context.Context) (*service.NotificationFeed, error) {
	rec, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	return service.NewNotificationFeed(
		rest.NewNotificationAPI(a.rest),
		newTerminalAlerter(a.out),
		rec.Identity.ID,
		a.cfg.Feed.PollInterval,
		logger.Component("feed"),
	), nil
}

func (a *app) pushChannel() *push.Channel {
	breaker := push.NewBreaker(a.cfg.Push.MaxAttempts, a.cfg.Push.Cooldown)
	return push.NewChannel(a.cfg.PushURL, a.creds, breaker, logger.Component("push"))
}
