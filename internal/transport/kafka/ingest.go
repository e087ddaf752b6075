// Package kafkatransport bridges consumed invalidation records into the
// engine. Records are JSON-encoded invalidation events keyed however the
// producer likes; malformed records are logged and skipped so the consumer
// group never wedges on a poison message.
package kafkatransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"coursepulse/internal/analytics/invalidation"
	"coursepulse/internal/platform/kafka/consumer"
)

// Engine is the invalidation entry point consumed by the bridge.
type Engine interface {
	HandleBatch(ctx context.Context, events []invalidation.Event) error
}

// Ingest turns one poll's records into a HandleBatch call.
type Ingest struct {
	engine Engine
	logger *slog.Logger
}

// NewIngest constructs the bridge.
func NewIngest(engine Engine, logger *slog.Logger) (*Ingest, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Ingest{engine: engine, logger: logger}, nil
}

// Handle decodes the fetched records and hands the batch to the engine. It
// always returns nil so offsets commit: the engine is infallible and skipped
// records are observable in the logs.
func (i *Ingest) Handle(ctx context.Context, msgs []consumer.Message) error {
	events := make([]invalidation.Event, 0, len(msgs))
	for _, msg := range msgs {
		var ev invalidation.Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			i.logger.WarnContext(ctx, "skipping malformed invalidation record",
				"topic", msg.Topic,
				"key", string(msg.Key),
				"error", err,
			)
			continue
		}
		if ev.Type == "" {
			i.logger.WarnContext(ctx, "skipping invalidation record without type",
				"topic", msg.Topic,
				"key", string(msg.Key),
			)
			continue
		}
		events = append(events, ev)
	}

	if len(events) == 0 {
		return nil
	}
	return i.engine.HandleBatch(ctx, events)
}
