package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
)

// SessionStore keeps at most one session per namespace in durable storage.
// Each session is two keys: the token and the identity as JSON.
type SessionStore struct {
	storage ports.KeyValueStorage
	log     zerolog.Logger
}

func NewSessionStore(storage ports.KeyValueStorage, log zerolog.Logger) *SessionStore {
	return &SessionStore{storage: storage, log: log}
}

// Save writes the token and identity under ns, replacing any previous session.
func (s *SessionStore) Save(ctx context.Context, ns domain.Namespace, token string, identity domain.Identity) error {
	data, err := json.Marshal(identity.Normalize())
	if err != nil {
		return fmt.Errorf("save session: encode identity: %w", err)
	}
	if err := s.storage.Set(ctx, ns.TokenKey(), token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := s.storage.Set(ctx, ns.IdentityKey(), string(data)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the session under ns, or nil when either half is missing or
// unreadable. Storage failures are logged, not returned.
func (s *SessionStore) Load(ctx context.Context, ns domain.Namespace) *domain.SessionRecord {
	tok, ok, err := s.storage.Get(ctx, ns.TokenKey())
	if err != nil {
		s.log.Warn().Err(err).Str("namespace", string(ns)).Msg("read session token failed")
		return nil
	}
	if !ok || tok == "" {
		return nil
	}

	raw, ok, err := s.storage.Get(ctx, ns.IdentityKey())
	if err != nil {
		s.log.Warn().Err(err).Str("namespace", string(ns)).Msg("read session identity failed")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		s.log.Debug().Err(err).Str("namespace", string(ns)).Msg("stored identity unreadable")
		return nil
	}

	return &domain.SessionRecord{Namespace: ns, Token: tok, Identity: identity.Normalize()}
}

// LoadEither checks the standard namespace first and falls back to admin.
func (s *SessionStore) LoadEither(ctx context.Context) *domain.SessionRecord {
	return s.LoadPreferring(ctx, domain.NamespaceStandard)
}

// LoadPreferring checks ns first and falls back to the other namespace.
func (s *SessionStore) LoadPreferring(ctx context.Context, ns domain.Namespace) *domain.SessionRecord {
	if rec := s.Load(ctx, ns); rec != nil {
		return rec
	}
	other := domain.NamespaceAdmin
	if ns == domain.NamespaceAdmin {
		other = domain.NamespaceStandard
	}
	return s.Load(ctx, other)
}

// Clear removes both keys of ns.
func (s *SessionStore) Clear(ctx context.Context, ns domain.Namespace) error {
	if err := s.storage.Delete(ctx, ns.TokenKey(), ns.IdentityKey()); err != nil {
		return fmt.Errorf("clear session %s: %w", ns, err)
	}
	return nil
}

// ClearAll removes every namespace.
func (s *SessionStore) ClearAll(ctx context.Context) error {
	keys := make([]string, 0, 2*len(domain.Namespaces))
	for _, ns := range domain.Namespaces {
		keys = append(keys, ns.TokenKey(), ns.IdentityKey())
	}
	if err := s.storage.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return nil
}
