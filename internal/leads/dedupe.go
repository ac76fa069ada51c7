package leads

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupeKeyPrefix = "lead:dedupe:"

// RedisDuplicateGuard remembers (type, email) pairs for a window so that
// double-clicked or replayed submissions are recorded once.
type RedisDuplicateGuard struct {
	client *redis.Client
	window time.Duration
}

// NewRedisDuplicateGuard returns nil when client is nil or window is not positive.
func NewRedisDuplicateGuard(client *redis.Client, window time.Duration) *RedisDuplicateGuard {
	if client == nil || window <= 0 {
		return nil
	}
	return &RedisDuplicateGuard{client: client, window: window}
}

func dedupeKey(sub *Submission) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(sub.Email()))))
	return dedupeKeyPrefix + sub.Type.MetricLabel() + ":" + hex.EncodeToString(sum[:])
}

func (g *RedisDuplicateGuard) Claim(ctx context.Context, sub *Submission) (bool, error) {
	ok, err := g.client.SetNX(ctx, dedupeKey(sub), sub.ID, g.window).Result()
	if err != nil {
		return false, fmt.Errorf("leads: dedupe claim: %w", err)
	}
	return ok, nil
}

func (g *RedisDuplicateGuard) Release(ctx context.Context, sub *Submission) error {
	if err := g.client.Del(ctx, dedupeKey(sub)).Err(); err != nil {
		return fmt.Errorf("leads: dedupe release: %w", err)
	}
	return nil
}

var _ DuplicateChecker = (*RedisDuplicateGuard)(nil)
