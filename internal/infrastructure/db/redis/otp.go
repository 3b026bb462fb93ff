package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultOTPTTL = 5 * time.Minute

// consumeScript deletes the code only when it matches, so a wrong guess
// does not burn a valid code.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OTPStore keeps verification codes in Redis with a TTL.
// Key format: otp:<email>
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore creates an OTPStore wrapping the given Redis client.
func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = defaultOTPTTL
	}
	return &OTPStore{client: client, ttl: ttl}
}

// Issue stores code for email, replacing any previous one.
func (s *OTPStore) Issue(ctx context.Context, email, code string) error {
	if err := s.client.Set(ctx, s.key(email), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("otp issue: %w", err)
	}
	return nil
}

// Consume reports whether code is the current one for email and deletes it
// when it is.
func (s *OTPStore) Consume(ctx context.Context, email, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	n, err := consumeScript.Run(ctx, s.client, []string{s.key(email)}, code).Int()
	if err != nil {
		return false, fmt.Errorf("otp consume: %w", err)
	}
	return n > 0, nil
}

func (s *OTPStore) key(email string) string {
	return "otp:" + email
}
