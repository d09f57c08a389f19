package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenRevoker invalidates tokens before they expire: single tokens on
// logout, every token of a user on suspension or anonymization
type TokenRevoker interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeUser rejects every token of the user issued up to now
	RevokeUser(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	IsUserRevoked(ctx context.Context, userID uuid.UUID, issuedAt time.Time) (bool, error)
}

// RedisTokenRevoker keeps revocations in Redis so every instance sees them
type RedisTokenRevoker struct {
	client    redis.UniversalClient
	keyPrefix string
}

func NewRedisTokenRevoker(client redis.UniversalClient) *RedisTokenRevoker {
	return &RedisTokenRevoker{client: client, keyPrefix: "mercato:revoked:"}
}

func (r *RedisTokenRevoker) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.keyPrefix+"jti:"+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisTokenRevoker) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.keyPrefix+"jti:"+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func (r *RedisTokenRevoker) RevokeUser(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	at := time.Now().Unix()
	if err := r.client.Set(ctx, r.keyPrefix+"user:"+userID.String(), at, ttl).Err(); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

func (r *RedisTokenRevoker) IsUserRevoked(ctx context.Context, userID uuid.UUID, issuedAt time.Time) (bool, error) {
	raw, err := r.client.Get(ctx, r.keyPrefix+"user:"+userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked user: %w", err)
	}
	at, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse revocation time: %w", err)
	}
	return issuedAt.Unix() <= at, nil
}

var _ TokenRevoker = (*RedisTokenRevoker)(nil)

// InMemoryTokenRevoker is the single-instance revoker used without Redis
type InMemoryTokenRevoker struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	users  map[uuid.UUID]time.Time
	now    func() time.Time
}

func NewInMemoryTokenRevoker() *InMemoryTokenRevoker {
	return &InMemoryTokenRevoker{
		tokens: make(map[string]time.Time),
		users:  make(map[uuid.UUID]time.Time),
		now:    time.Now,
	}
}

func (r *InMemoryTokenRevoker) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[jti] = r.now().Add(ttl)
	return nil
}

func (r *InMemoryTokenRevoker) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.tokens[jti]
	if !ok {
		return false, nil
	}
	if r.now().After(exp) {
		delete(r.tokens, jti)
		return false, nil
	}
	return true, nil
}

func (r *InMemoryTokenRevoker) RevokeUser(_ context.Context, userID uuid.UUID, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID] = r.now()
	return nil
}

func (r *InMemoryTokenRevoker) IsUserRevoked(_ context.Context, userID uuid.UUID, issuedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.users[userID]
	if !ok {
		return false, nil
	}
	// JWT iat has second precision
	return issuedAt.Unix() <= at.Unix(), nil
}

var _ TokenRevoker = (*InMemoryTokenRevoker)(nil)
