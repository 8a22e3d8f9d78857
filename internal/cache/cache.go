package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tam:"

// RegistrationStore keeps the hashed password of a registration until the OTP is verified.
type RegistrationStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRegistrationStore(rdb *redis.Client, ttl time.Duration) *RegistrationStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RegistrationStore{rdb: rdb, ttl: ttl}
}

func registrationKey(phone string) string {
	return keyPrefix + "registration:" + phone
}

func (s *RegistrationStore) Save(ctx context.Context, phone, passwordHash string) error {
	if err := s.rdb.Set(ctx, registrationKey(phone), passwordHash, s.ttl).Err(); err != nil {
		return fmt.Errorf("registration set: %w", err)
	}
	return nil
}

// Get returns the pending password hash, or "" if none is stored.
func (s *RegistrationStore) Get(ctx context.Context, phone string) (string, error) {
	hash, err := s.rdb.Get(ctx, registrationKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("registration get: %w", err)
	}
	return hash, nil
}

func (s *RegistrationStore) Delete(ctx context.Context, phone string) error {
	if err := s.rdb.Del(ctx, registrationKey(phone)).Err(); err != nil {
		return fmt.Errorf("registration del: %w", err)
	}
	return nil
}

// ResetTickets marks phone numbers that passed OTP verification for a password reset.
type ResetTickets struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewResetTickets(rdb *redis.Client, ttl time.Duration) *ResetTickets {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ResetTickets{rdb: rdb, ttl: ttl}
}

func resetKey(phone string) string {
	return keyPrefix + "reset:" + phone
}

func (t *ResetTickets) Issue(ctx context.Context, phone string) error {
	if err := t.rdb.Set(ctx, resetKey(phone), "1", t.ttl).Err(); err != nil {
		return fmt.Errorf("reset ticket set: %w", err)
	}
	return nil
}

// Consume removes the ticket and reports whether it existed.
func (t *ResetTickets) Consume(ctx context.Context, phone string) (bool, error) {
	_, err := t.rdb.GetDel(ctx, resetKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reset ticket getdel: %w", err)
	}
	return true, nil
}

// SendLimiter is a fixed-window counter of OTP sends per phone number.
type SendLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewSendLimiter(rdb *redis.Client, limit int, window time.Duration) *SendLimiter {
	if window <= 0 {
		window = time.Hour
	}
	return &SendLimiter{rdb: rdb, limit: limit, window: window}
}

func sendLimitKey(phone string) string {
	return keyPrefix + "otp:send:" + phone
}

// Allow counts one send. When the limit is exceeded it returns false and the time until the window resets.
func (l *SendLimiter) Allow(ctx context.Context, phone string) (bool, time.Duration, error) {
	if l == nil || l.limit <= 0 {
		return true, 0, nil
	}
	key := sendLimitKey(phone)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("send limit incr: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("send limit expire: %w", err)
		}
	}
	if count <= int64(l.limit) {
		return true, 0, nil
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("send limit ttl: %w", err)
	}
	if ttl < 0 {
		// key lost its expiry; start a new window
		_ = l.rdb.Expire(ctx, key, l.window).Err()
		ttl = l.window
	}
	return false, ttl, nil
}

// ViewDedup remembers which client IPs already viewed an article.
type ViewDedup struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewViewDedup(rdb *redis.Client, ttl time.Duration) *ViewDedup {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ViewDedup{rdb: rdb, ttl: ttl}
}

// FirstView reports whether this is the first view of the article by ip within the TTL.
func (d *ViewDedup) FirstView(ctx context.Context, articleID int64, ip string) (bool, error) {
	if d == nil || d.rdb == nil || ip == "" {
		return true, nil
	}
	key := fmt.Sprintf("%sview:%d:%s", keyPrefix, articleID, ip)
	ok, err := d.rdb.SetNX(ctx, key, "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("view dedup setnx: %w", err)
	}
	return ok, nil
}
