package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is the transport-agnostic view of a consumed record handed to
// handlers.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Timestamp time.Time
}

// Handler processes one poll's worth of messages. Returning an error aborts
// the consumer loop; handlers that want at-most-once semantics should swallow
// their own failures.
type Handler interface {
	Handle(ctx context.Context, msgs []Message) error
}

// Config captures consumer connection settings.
type Config struct {
	Brokers []string
	Topic   string
	Group   string
}

// Consumer wraps a franz-go client in a poll loop.
type Consumer struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// New connects to the brokers, ensures the topic exists, and returns a
// consumer ready to Run.
func New(cfg Config, logger *slog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("topic is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(client, cfg.Topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Consumer{client: client, topic: cfg.Topic, logger: logger}, nil
}

// ensureTopic creates the topic with broker defaults if it does not exist.
func ensureTopic(client *kgo.Client, topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adm := kadm.NewClient(client)
	topics, err := adm.ListTopics(ctx, topic)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	if topics.Has(topic) {
		return nil
	}
	if _, err := adm.CreateTopic(ctx, -1, -1, nil, topic); err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}

// Run polls until the context is cancelled, handing each fetch to the
// handler and committing after a successful handle.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "kafka fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		var msgs []Message
		fetches.EachRecord(func(rec *kgo.Record) {
			msgs = append(msgs, Message{
				Topic:     rec.Topic,
				Key:       rec.Key,
				Value:     rec.Value,
				Timestamp: rec.Timestamp,
			})
		})
		if len(msgs) == 0 {
			continue
		}

		if err := handler.Handle(ctx, msgs); err != nil {
			return fmt.Errorf("handle fetch: %w", err)
		}
		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			c.logger.ErrorContext(ctx, "kafka commit failed", "error", err)
		}
	}
}

// Close shuts down the underlying client.
func (c *Consumer) Close() {
	c.client.Close()
}
