package usecase

import (
	"context"
	"time"

	"medverify/internal/infrastructure/messaging"
)

const (
	notifyTimeout = 10 * time.Second

	// lockOverhead covers the store round trips made while the address lock is held.
	lockOverhead = 5 * time.Second
)

// MessageGateway is the outbound chat channel.
type MessageGateway interface {
	Configured() bool
	Send(ctx context.Context, destination, body string) messaging.DeliveryResult
}

// WebhookGuard deduplicates deliveries and serializes work per chat address.
type WebhookGuard interface {
	ClaimMessage(ctx context.Context, messageSID string) (bool, error)
	Unclaim(ctx context.Context, messageSID string) error
	Lock(ctx context.Context, address string) (func(), error)
}

// WebhookLockTTL is how long one inbound message may hold its address lock:
// a full drafting call, one reply dispatch and the surrounding store work.
func WebhookLockTTL(draftTimeout time.Duration) time.Duration {
	return draftTimeout + notifyTimeout + lockOverhead
}

// notifyContext bounds a dispatch and detaches it from the caller's cancellation.
func notifyContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
}
