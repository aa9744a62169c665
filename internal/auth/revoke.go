package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokePrefix = "auth:revoked:"

// Revoker tracks revoked token IDs (jti) in Redis. Logout revokes the
// session's tokens; entries expire with the token itself so the denylist
// stays bounded.
type Revoker struct {
	rdb *redis.Client
}

func NewRevoker(rdb *redis.Client) *Revoker { return &Revoker{rdb: rdb} }

func (r *Revoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if r == nil || r.rdb == nil {
		return errors.New("auth: revoker not configured")
	}
	if jti == "" {
		return errors.New("auth: jti required")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired; nothing to deny.
		return nil
	}
	return r.rdb.Set(ctx, revokePrefix+jti, "1", ttl).Err()
}

func (r *Revoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r == nil || r.rdb == nil {
		return false, nil
	}
	if jti == "" {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, revokePrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
