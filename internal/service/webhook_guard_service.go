package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrLockNotAcquired is returned when another request holds the address lock past the wait budget.
var ErrLockNotAcquired = errors.New("onboarding lock not acquired")

// releaseLockScript deletes the lock only if it still holds our token,
// so an expired lock re-acquired by another request is never released by us.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	// Redis key prefixes for webhook coordination
	RedisMessageKeyPrefix = "webhook:msg:"
	RedisLockKeyPrefix    = "onboarding:lock:"

	messageClaimTTL = 24 * time.Hour
	defaultLockTTL  = 15 * time.Second
	lockWait        = 3 * time.Second
	lockRetry       = 50 * time.Millisecond
	redisOpTimeout  = 2 * time.Second
)

// WebhookGuard deduplicates webhook deliveries and serializes processing per chat address.
// A nil Redis client disables both; every Redis failure degrades to unprotected processing.
type WebhookGuard struct {
	redisClient *redis.Client
	lockTTL     time.Duration
	lockWait    time.Duration
	lockRetry   time.Duration
	log         *logrus.Logger
}

// NewWebhookGuard builds a guard whose address lock expires after lockTTL.
// lockTTL should cover the longest request holding the lock; <= 0 uses a 15s default.
func NewWebhookGuard(redisClient *redis.Client, lockTTL time.Duration, log *logrus.Logger) *WebhookGuard {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &WebhookGuard{
		redisClient: redisClient,
		lockTTL:     lockTTL,
		lockWait:    lockWait,
		lockRetry:   lockRetry,
		log:         log,
	}
}

// ClaimMessage returns false when messageSID was already claimed by an earlier delivery.
// An empty SID is always claimable.
func (g *WebhookGuard) ClaimMessage(ctx context.Context, messageSID string) (bool, error) {
	if g.redisClient == nil || messageSID == "" {
		return true, nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	claimed, err := g.redisClient.SetNX(ctx, RedisMessageKeyPrefix+messageSID, time.Now().Unix(), messageClaimTTL).Result()
	if err != nil {
		g.log.Warnf("Failed to claim webhook message %s: %+v", messageSID, err)
		return true, fmt.Errorf("claim message %s: %w", messageSID, err)
	}

	return claimed, nil
}

// Unclaim forgets messageSID so a redelivery of a message that failed is processed again.
func (g *WebhookGuard) Unclaim(ctx context.Context, messageSID string) error {
	if g.redisClient == nil || messageSID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisOpTimeout)
	defer cancel()

	if err := g.redisClient.Del(ctx, RedisMessageKeyPrefix+messageSID).Err(); err != nil {
		g.log.Warnf("Failed to unclaim webhook message %s: %+v", messageSID, err)
		return fmt.Errorf("unclaim message %s: %w", messageSID, err)
	}
	return nil
}

// Lock acquires the per-address lock, polling until lockWait elapses.
// The returned release func is always non-nil and safe to call.
func (g *WebhookGuard) Lock(ctx context.Context, address string) (func(), error) {
	noop := func() {}
	if g.redisClient == nil {
		return noop, nil
	}

	key := RedisLockKeyPrefix + address
	token := uuid.New().String()
	deadline := time.Now().Add(g.lockWait)

	for {
		opCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		acquired, err := g.redisClient.SetNX(opCtx, key, token, g.lockTTL).Result()
		cancel()
		if err != nil {
			g.log.Warnf("Failed to acquire lock for %s: %+v", address, err)
			return noop, fmt.Errorf("acquire lock for %s: %w", address, err)
		}
		if acquired {
			return func() { g.release(key, token) }, nil
		}

		if time.Now().After(deadline) {
			return noop, ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return noop, ctx.Err()
		case <-time.After(g.lockRetry):
		}
	}
}

func (g *WebhookGuard) release(key, token string) {
	// Release must run even when the request context is already cancelled
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := releaseLockScript.Run(ctx, g.redisClient, []string{key}, token).Err(); err != nil {
		g.log.Warnf("Failed to release lock %s: %+v", key, err)
	}
}
