package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/metrics"
)

// TokenSource supplies the bearer token sent on the upgrade request.
type TokenSource interface {
	Token() string
}

// Channel is the client side of the push connection. It implements
// ports.PushChannel.
type Channel struct {
	url     string
	tokens  TokenSource
	breaker *Breaker
	dialer  *websocket.Dialer
	log     zerolog.Logger

	// stableAfter is how long a connection must stay up, without delivering
	// anything, before it counts as healthy.
	stableAfter time.Duration
}

func NewChannel(rawURL string, tokens TokenSource, breaker *Breaker, log zerolog.Logger) *Channel {
	if breaker == nil {
		breaker = NewBreaker(DefaultMaxAttempts, DefaultCooldown)
	}
	return &Channel{
		url:     rawURL,
		tokens:  tokens,
		breaker: breaker,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		log:         log,
		stableAfter: DefaultStableAfter,
	}
}

// Listen connects for userID and hands every event to handle until ctx
// ends (nil) or the breaker opens (domain.ErrPushUnavailable).
func (c *Channel) Listen(ctx context.Context, userID string, handle func(domain.PushEvent)) error {
	endpoint, err := c.endpoint(userID)
	if err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		if !c.breaker.Allow() {
			return domain.ErrPushUnavailable
		}

		err := c.session(ctx, endpoint, handle)
		if ctx.Err() != nil {
			return nil
		}
		metrics.PushConnectFailuresTotal.Inc()
		open := c.breaker.Failure()
		c.log.Warn().Err(err).Int("failures", c.breaker.Failures()).Bool("gave_up", open).Msg("push connection lost")
		if open {
			return fmt.Errorf("%w: %v", domain.ErrPushUnavailable, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.breaker.Cooldown):
		}
	}
}

// session runs one connection until it drops. The breaker is reset only
// once the connection delivers an event or outlives stableAfter, so a
// server that accepts and immediately drops still trips it.
func (c *Channel) session(ctx context.Context, endpoint string, handle func(domain.PushEvent)) error {
	header := http.Header{}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			header.Set("Authorization", "Bearer "+tok)
		}
	}

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial push: %s: %w", resp.Status, err)
		}
		return fmt.Errorf("dial push: %w", err)
	}
	defer conn.Close()
	c.log.Debug().Str("url", endpoint).Msg("push connected")

	connectedAt := time.Now()
	healthy := false
	defer func() {
		if !healthy && time.Since(connectedAt) >= c.stableAfter {
			c.breaker.Success()
		}
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("server closed push connection")
			}
			return err
		}

		var ev domain.PushEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.log.Debug().Err(err).Msg("skipping malformed push message")
			continue
		}
		if ev.Type == "" {
			continue
		}
		if !healthy {
			healthy = true
			c.breaker.Success()
		}
		handle(ev)
	}
}

func (c *Channel) endpoint(userID string) (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", fmt.Errorf("push url: %w", err)
	}
	q := u.Query()
	q.Set("userId", userID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
