package memory

import (
	"context"
	"sync"
	"time"
)

type otpEntry struct {
	code    string
	expires time.Time
}

// OTPStore keeps verification codes in process memory.
type OTPStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	codes map[string]otpEntry
	now   func() time.Time
}

func NewOTPStore(ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OTPStore{ttl: ttl, codes: make(map[string]otpEntry), now: time.Now}
}

func (s *OTPStore) Issue(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = otpEntry{code: code, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *OTPStore) Consume(_ context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.codes[email]
	if !ok || code == "" || e.code != code {
		return false, nil
	}
	if !s.now().Before(e.expires) {
		delete(s.codes, email)
		return false, nil
	}
	delete(s.codes, email)
	return true, nil
}

// Code returns the live code for email. The dev backend has no mail
// transport; tests read codes from here.
func (s *OTPStore) Code(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.codes[email]
	if !ok || !s.now().Before(e.expires) {
		return "", false
	}
	return e.code, true
}
