//go:build integration

package kafkatransport

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"

	"coursepulse/internal/analytics/invalidation"
	"coursepulse/internal/platform/kafka/consumer"
)

// syncCaptureEngine collects batches across goroutines and signals once the
// expected number of events has arrived.
type syncCaptureEngine struct {
	mu      sync.Mutex
	events  []invalidation.Event
	want    int
	arrived chan struct{}
}

func (c *syncCaptureEngine) HandleBatch(_ context.Context, events []invalidation.Event) error {
	c.mu.Lock()
	c.events = append(c.events, events...)
	n := len(c.events)
	c.mu.Unlock()
	if n >= c.want {
		select {
		case c.arrived <- struct{}{}:
		default:
		}
	}
	return nil
}

func TestKafkaIngestEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.1.7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	broker, err := container.KafkaSeedBroker(ctx)
	require.NoError(t, err)

	const topic = "analytics.invalidation"

	cons, err := consumer.New(consumer.Config{
		Brokers: []string{broker},
		Topic:   topic,
		Group:   "coursepulse-it",
	}, discardLogger())
	require.NoError(t, err)
	defer cons.Close()

	engine := &syncCaptureEngine{want: 3, arrived: make(chan struct{}, 1)}
	ingest, err := NewIngest(engine, discardLogger())
	require.NoError(t, err)

	go func() {
		_ = cons.Run(ctx, ingest)
	}()

	producer, err := kgo.NewClient(kgo.SeedBrokers(broker), kgo.DefaultProduceTopic(topic))
	require.NoError(t, err)
	defer producer.Close()

	produce := func(ev invalidation.Event) {
		value, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, producer.ProduceSync(ctx, &kgo.Record{Value: value}).FirstErr())
	}
	produce(invalidation.Event{Type: invalidation.EventCoursePublished, CourseID: "c1"})
	produce(invalidation.Event{Type: invalidation.EventEnrollmentCompleted, CourseID: "c1", UserID: "u1"})
	produce(invalidation.Event{Type: invalidation.EventPaymentCompleted})

	select {
	case <-engine.arrived:
	case <-time.After(30 * time.Second):
		t.Fatal("timed out waiting for consumed events")
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	types := make([]invalidation.EventType, 0, len(engine.events))
	for _, ev := range engine.events {
		types = append(types, ev.Type)
	}
	assert.Contains(t, types, invalidation.EventCoursePublished)
	assert.Contains(t, types, invalidation.EventEnrollmentCompleted)
	assert.Contains(t, types, invalidation.EventPaymentCompleted)
}
