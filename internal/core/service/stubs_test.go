package service

import (
	"context"
	"sync"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type memStorage struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	setErr error
}

func newMemStorage() *memStorage {
	return &memStorage{values: make(map[string]string)}
}

func (m *memStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

type setActiveCall struct {
	userID string
	active bool
	token  string
}

type stubAuthAPI struct {
	creds *stubCreds

	loginResult  *ports.AuthResult
	loginErr     error
	verifyResult *ports.AuthResult
	verifyErr    error
	registerErr  error
	setActiveErr error

	loginRealms []domain.Namespace
	setActive   []setActiveCall
}

func (a *stubAuthAPI) Login(_ context.Context, realm domain.Namespace, _, _ string) (*ports.AuthResult, error) {
	a.loginRealms = append(a.loginRealms, realm)
	return a.loginResult, a.loginErr
}

func (a *stubAuthAPI) Register(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if a.registerErr != nil {
		return nil, a.registerErr
	}
	return &ports.AuthResult{Message: "otp sent to " + in.Email}, nil
}

func (a *stubAuthAPI) VerifyOTP(_ context.Context, _ domain.Namespace, _, _ string) (*ports.AuthResult, error) {
	return a.verifyResult, a.verifyErr
}

func (a *stubAuthAPI) ResendOTP(context.Context, string) error {
	return nil
}

func (a *stubAuthAPI) SetActive(_ context.Context, userID string, active bool) error {
	call := setActiveCall{userID: userID, active: active}
	if a.creds != nil {
		call.token = a.creds.token
	}
	a.setActive = append(a.setActive, call)
	return a.setActiveErr
}

type stubCreds struct {
	token   string
	cleared int
}

func (c *stubCreds) SetToken(token string) { c.token = token }

func (c *stubCreds) Clear() {
	c.token = ""
	c.cleared++
}

type navCall struct {
	to    string
	state domain.NavState
}

type stubNav struct {
	calls []navCall
}

func (n *stubNav) Navigate(to string, state domain.NavState) {
	n.calls = append(n.calls, navCall{to: to, state: state})
}

func (n *stubNav) last() navCall {
	if len(n.calls) == 0 {
		return navCall{}
	}
	return n.calls[len(n.calls)-1]
}
