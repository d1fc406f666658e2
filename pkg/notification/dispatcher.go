// Package notification forwards domain events from the in-process bus to an
// outbound channel. The core only publishes typed events; delivery concerns
// never leak back into the transfer path.
package notification

import (
	"context"
	"log/slog"

	"github.com/walletguard/walletd/pkg/domain/events"
	"github.com/walletguard/walletd/pkg/eventbus"
)

// Publisher delivers one event to an external channel. Implementations live
// in infra/notify (log, Redis Streams, Kafka).
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Register subscribes the publisher to every outbound event type. Delivery
// failures are logged; a committed transfer is never rolled back for them.
func Register(bus eventbus.Bus, pub Publisher, logger *slog.Logger) {
	log := logger.With("component", "notification-dispatcher")
	forward := func(ctx context.Context, e events.Event) {
		if err := pub.Publish(ctx, e); err != nil {
			log.Error("notification delivery failed", "event_type", e.Type(), "error", err)
		}
	}
	bus.Subscribe(events.TypeTransactionCreated, forward)
	bus.Subscribe(events.TypeTransferFailed, forward)
}
