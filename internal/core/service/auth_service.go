package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
	"github.com/jobhub/jobboard/internal/core/token"
	"github.com/jobhub/jobboard/internal/metrics"
)

// AuthOptions tunes AuthService policy.
type AuthOptions struct {
	// DeactivateAdminOnLogout also clears the active flag of admin
	// identities on logout. Off by default: admins are never marked inactive.
	DeactivateAdminOnLogout bool
	// Now is the clock used when minting lightweight tokens.
	Now func() time.Time
}

// AuthService orchestrates login, registration, verification and logout.
// On success it commits the session to the store, hands the token to the
// REST client's credential sink and notifies subscribers.
type AuthService struct {
	api       ports.AuthAPI
	store     *SessionStore
	validator *SessionValidator
	creds     ports.CredentialSink
	nav       ports.Navigator
	log       zerolog.Logger
	opts      AuthOptions

	mu        sync.Mutex
	listeners map[int]func(domain.SessionEvent)
	nextID    int
}

func NewAuthService(
	api ports.AuthAPI,
	store *SessionStore,
	validator *SessionValidator,
	creds ports.CredentialSink,
	nav ports.Navigator,
	log zerolog.Logger,
	opts AuthOptions,
) *AuthService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AuthService{
		api:       api,
		store:     store,
		validator: validator,
		creds:     creds,
		nav:       nav,
		log:       log,
		opts:      opts,
		listeners: make(map[int]func(domain.SessionEvent)),
	}
}

// Subscribe registers fn for session events and returns its cancel func.
func (s *AuthService) Subscribe(fn func(domain.SessionEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *AuthService) emit(ev domain.SessionEvent) {
	s.mu.Lock()
	fns := make([]func(domain.SessionEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Login authenticates against the realm's endpoint and commits the session.
func (s *AuthService) Login(ctx context.Context, realm domain.Namespace, email, password string) (*domain.SessionRecord, error) {
	res, err := s.api.Login(ctx, realm, email, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(realm), "error").Inc()
		return nil, s.surface(err, "login failed")
	}
	if res == nil || res.Identity == nil {
		metrics.LoginsTotal.WithLabelValues(string(realm), "error").Inc()
		return nil, &domain.APIError{Message: domain.FallbackErrorMessage}
	}

	rec, err := s.commit(ctx, realm, res)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(realm), "error").Inc()
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues(string(realm), "ok").Inc()
	return rec, nil
}

// Register passes sign-up data through. The caller verifies the emailed code next.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	res, err := s.api.Register(ctx, in)
	if err != nil {
		return nil, s.surface(err, "register failed")
	}
	return res, nil
}

// VerifyOTP confirms a code. When the backend answers with an identity the
// session is committed exactly like a login; otherwise nil is returned.
func (s *AuthService) VerifyOTP(ctx context.Context, realm domain.Namespace, email, code string) (*domain.SessionRecord, error) {
	res, err := s.api.VerifyOTP(ctx, realm, email, code)
	if err != nil {
		return nil, s.surface(err, "verify otp failed")
	}
	if res == nil || res.Identity == nil {
		return nil, nil
	}
	return s.commit(ctx, realm, res)
}

// ResendOTP asks the backend for a new code.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	if err := s.api.ResendOTP(ctx, email); err != nil {
		return s.surface(err, "resend otp failed")
	}
	return nil
}

// Logout deactivates non-admin identities on a best-effort basis, then
// clears every namespace and the credentials and navigates to login.
func (s *AuthService) Logout(ctx context.Context) error {
	for _, ns := range domain.Namespaces {
		rec := s.store.Load(ctx, ns)
		if rec == nil || !s.shouldDeactivate(rec) {
			continue
		}
		if err := s.api.SetActive(ctx, rec.Identity.ID, false); err != nil {
			s.log.Warn().Err(err).Str("user_id", rec.Identity.ID).Msg("deactivate on logout failed")
		}
	}

	err := s.store.ClearAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("clear sessions on logout failed")
	}
	s.creds.Clear()
	s.emit(domain.SessionEvent{Kind: domain.SessionLoggedOut})
	s.navigate(domain.PathLogin, domain.NavState{Message: domain.MessageLoggedOut})

	s.log.Info().Msg("logged out")
	return err
}

// HandleUnauthorized is the target of the REST client's 401 interceptor.
func (s *AuthService) HandleUnauthorized(ctx context.Context, path string) {
	if err := s.store.ClearAll(ctx); err != nil {
		s.log.Error().Err(err).Msg("clear sessions after 401 failed")
	}
	s.creds.Clear()
	s.emit(domain.SessionEvent{Kind: domain.SessionExpired})
	s.navigate(domain.PathLogin, domain.NavState{From: path, Message: domain.MessageSessionExpired})
}

// Restore loads the persisted session at startup. A live session re-arms
// the credentials; a dead one is cleared.
func (s *AuthService) Restore(ctx context.Context) *domain.SessionRecord {
	for _, ns := range domain.Namespaces {
		rec := s.store.Load(ctx, ns)
		if rec == nil {
			continue
		}
		if _, err := s.validator.Check(rec.Token); err != nil {
			s.log.Debug().Err(err).Str("namespace", string(ns)).Msg("dropping stored session")
			if cerr := s.store.Clear(ctx, ns); cerr != nil {
				s.log.Warn().Err(cerr).Msg("clear stale session failed")
			}
			continue
		}
		s.creds.SetToken(rec.Token)
		return rec
	}
	return nil
}

// Current returns the live session with standard precedence, or nil.
func (s *AuthService) Current(ctx context.Context) *domain.SessionRecord {
	rec := s.store.LoadEither(ctx)
	if rec == nil || !s.validator.IsLive(rec.Token) {
		return nil
	}
	return rec
}

// UpdateProfile merges a profile update into the stored identity, keeping
// its id and role, and rewrites the session record wholesale.
func (s *AuthService) UpdateProfile(ctx context.Context, update domain.Identity) (*domain.SessionRecord, error) {
	rec := s.Current(ctx)
	if rec == nil {
		return nil, domain.ErrNoSession
	}
	merged := rec.Identity.Merge(update)
	if err := s.store.Save(ctx, rec.Namespace, rec.Token, merged); err != nil {
		return nil, err
	}
	updated := &domain.SessionRecord{Namespace: rec.Namespace, Token: rec.Token, Identity: merged}
	s.emit(domain.SessionEvent{Kind: domain.SessionUpdated, Record: updated})
	return updated, nil
}

func (s *AuthService) commit(ctx context.Context, realm domain.Namespace, res *ports.AuthResult) (*domain.SessionRecord, error) {
	identity := res.Identity.Normalize()

	raw := res.Token
	if raw == "" {
		var err error
		raw, err = token.Encode(token.Envelope{
			ID:       identity.ID,
			Role:     identity.Role,
			Username: identity.Username,
			Email:    identity.Email,
			IssuedAt: s.opts.Now(),
		})
		if err != nil {
			return nil, &domain.APIError{Message: domain.FallbackErrorMessage}
		}
	}

	if err := s.store.Save(ctx, realm, raw, identity); err != nil {
		s.log.Error().Err(err).Str("realm", string(realm)).Msg("persist session failed")
		return nil, &domain.APIError{Message: domain.FallbackErrorMessage}
	}
	// Credentials go in before any follow-up call so it is authenticated.
	s.creds.SetToken(raw)

	if realm == domain.NamespaceStandard && identity.Role != domain.RoleAdmin && !identity.Active {
		if err := s.api.SetActive(ctx, identity.ID, true); err != nil {
			s.log.Warn().Err(err).Str("user_id", identity.ID).Msg("mark active failed")
		} else {
			identity.Active = true
			if err := s.store.Save(ctx, realm, raw, identity); err != nil {
				s.log.Warn().Err(err).Msg("persist active flag failed")
			}
		}
	}

	rec := &domain.SessionRecord{Namespace: realm, Token: raw, Identity: identity}
	s.log.Info().
		Str("realm", string(realm)).
		Str("user_id", identity.ID).
		Str("role", string(identity.Role)).
		Msg("session started")
	s.emit(domain.SessionEvent{Kind: domain.SessionLoggedIn, Record: rec})
	return rec, nil
}

func (s *AuthService) shouldDeactivate(rec *domain.SessionRecord) bool {
	if rec.Identity.ID == "" {
		return false
	}
	if rec.Identity.Role == domain.RoleAdmin || rec.Namespace == domain.NamespaceAdmin {
		return s.opts.DeactivateAdminOnLogout
	}
	return true
}

func (s *AuthService) navigate(to string, state domain.NavState) {
	if s.nav != nil {
		s.nav.Navigate(to, state)
	}
}

// surface reduces err to the message a form displays. The cause is logged
// and dropped.
func (s *AuthService) surface(err error, msg string) error {
	s.log.Debug().Err(err).Msg(msg)
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			return &domain.APIError{Status: apiErr.Status, Message: domain.FallbackErrorMessage}
		}
		return apiErr
	}
	return &domain.APIError{Message: domain.FallbackErrorMessage}
}
