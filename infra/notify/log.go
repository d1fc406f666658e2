// Package notify implements the outbound notification publishers: a
// log-only publisher for development, Redis Streams and Kafka for real
// delivery. The backend is selected by configuration.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/walletguard/walletd/pkg/domain/events"
)

// LogPublisher writes notifications to the log instead of delivering them.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a development publisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "log-notifier")}
}

func (p *LogPublisher) Publish(_ context.Context, e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	p.logger.Info("notification", "type", e.Type(), "payload", string(payload))
	return nil
}
