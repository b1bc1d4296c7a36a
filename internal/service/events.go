package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"incentix/rewardhub/internal/repository"
)

const (
	EventParticipantRegistered = "participant.registered"
	EventPointsEarned          = "points.earned"
	EventTierUpgraded          = "tier.upgraded"
	EventBadgeMinted           = "badge.minted"
	EventCouponCreated         = "coupon.created"
	EventCouponPurchased       = "coupon.purchased"
	EventCouponRedeemed        = "coupon.redeemed"
	EventInventoryAdjusted     = "inventory.adjusted"
)

// Event is a side-channel notification for external consumers (analytics,
// alerting). Delivery is best effort and not part of the correctness
// contract; failures are logged and swallowed.
type Event struct {
	Type       string            `json:"type"`
	At         time.Time         `json:"at"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type Notifier interface {
	Emit(ctx context.Context, evt Event)
}

const eventStreamKey = "events:stream"

type streamNotifier struct {
	store repository.StateStore
	log   *zap.Logger
}

// NewStreamNotifier emits events onto the state store's stream key. With the
// Redis backend this is a capped list external consumers can drain.
func NewStreamNotifier(store repository.StateStore, log *zap.Logger) Notifier {
	return &streamNotifier{store: store, log: log}
}

func (n *streamNotifier) Emit(ctx context.Context, evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		n.log.Warn("encode event", zap.String("type", evt.Type), zap.Error(err))
		return
	}
	if err := n.store.Push(ctx, eventStreamKey, raw); err != nil {
		n.log.Warn("emit event", zap.String("type", evt.Type), zap.Error(err))
	}
}

type nopNotifier struct{}

func NewNopNotifier() Notifier { return nopNotifier{} }

func (nopNotifier) Emit(context.Context, Event) {}
