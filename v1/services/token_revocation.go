package services

import (
	"context"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/monitoring"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
)

const revokedTokenKeyPrefix = "bid-marketplace:revoked:"

// TokenRevocationStore remembers logged-out tokens until they expire
type TokenRevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// KeyValueStore is the subset of the Redis client the revocation store needs
type KeyValueStore interface {
	SetWithExpiry(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RedisTokenRevocationStore keeps revoked token ids as expiring Redis keys
type RedisTokenRevocationStore struct {
	kv  KeyValueStore
	now func() time.Time
}

// NewRedisTokenRevocationStore creates a revocation store on top of a key/value client
func NewRedisTokenRevocationStore(kv KeyValueStore) *RedisTokenRevocationStore {
	return &RedisTokenRevocationStore{kv: kv, now: time.Now}
}

// Revoke marks the token id revoked until expiresAt. Already-expired tokens are skipped.
func (s *RedisTokenRevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	start := time.Now()
	err := s.kv.SetWithExpiry(ctx, revokedTokenKeyPrefix+tokenID, "1", ttl)
	monitoring.RecordExternalCall("redis", "revoke_token", time.Since(start), err)
	return err
}

// IsRevoked reports whether the token id was revoked
func (s *RedisTokenRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	start := time.Now()
	revoked, err := s.kv.Exists(ctx, revokedTokenKeyPrefix+tokenID)
	monitoring.RecordExternalCall("redis", "check_revoked_token", time.Since(start), err)
	return revoked, err
}

// NoopTokenRevocationStore is used when Redis is not configured; tokens stay valid until expiry
type NoopTokenRevocationStore struct{}

func (NoopTokenRevocationStore) Revoke(context.Context, string, time.Time) error { return nil }

func (NoopTokenRevocationStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// revokeClaims is a helper for revoking a parsed token
func revokeClaims(ctx context.Context, store TokenRevocationStore, claims *models.TokenClaims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
