package invalidation

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"coursepulse/internal/analytics/cachekeys"
	"coursepulse/internal/analytics/invalidation/metrics"
	"coursepulse/internal/analytics/store"
	"coursepulse/pkg/platform/parallel"
	pstrings "coursepulse/pkg/platform/strings"
)

// defaultMaxInflight bounds concurrent cache-store calls per eviction wave
// when no limit is configured.
const defaultMaxInflight = 16

// Engine routes invalidation events to per-category eviction policies and
// executes the resulting cache-store calls. It holds no mutable state across
// invocations; every call builds its own local plan, so one Engine is safe
// for any number of concurrent producers.
//
// Both entry points are infallible from the caller's point of view: cache
// consistency is secondary to the write path that produced the event, and a
// stale entry self-heals via TTL or the next overlapping invalidation.
type Engine struct {
	store       store.Store
	logger      *slog.Logger
	metrics     *metrics.Metrics
	policies    map[Category]policyFunc
	maxInflight int
	tracer      trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics attaches prometheus counters to the engine.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMaxInflight bounds concurrent cache-store calls per eviction wave.
func WithMaxInflight(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxInflight = n
		}
	}
}

// New constructs the invalidation engine.
func New(st store.Store, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if st == nil {
		return nil, errors.New("cache store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	e := &Engine{
		store:       st,
		logger:      logger,
		policies:    policies(),
		maxInflight: defaultMaxInflight,
		tracer:      otel.Tracer("coursepulse/invalidation"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// HandleEvent routes a single event to its category policy and issues the
// planned evictions concurrently. It always returns nil: unknown types are
// dropped with a warning and store failures are logged and swallowed.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) error {
	ctx, span := e.tracer.Start(ctx, "invalidation.HandleEvent",
		trace.WithAttributes(attribute.String("event.type", string(ev.Type))))
	defer span.End()

	e.processEvent(ctx, ev)
	return nil
}

// HandleBatch groups events by type, deduplicates bulk-optimizable groups by
// entity identifier, and processes groups concurrently with settle-all
// isolation. It always returns nil.
func (e *Engine) HandleBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	ctx, span := e.tracer.Start(ctx, "invalidation.HandleBatch",
		trace.WithAttributes(attribute.Int("batch.size", len(events))))
	defer span.End()

	if e.metrics != nil {
		e.metrics.ObserveBatchSize(len(events))
	}

	groups := groupByType(events)
	tasks := make([]parallel.Task, len(groups))
	for i, g := range groups {
		g := g
		tasks[i] = func(ctx context.Context) error {
			e.processGroup(ctx, g)
			return nil
		}
	}
	// Group tasks handle their own failures; SettleAll guarantees every
	// group runs to completion regardless of siblings.
	parallel.SettleAll(ctx, 0, tasks)
	return nil
}

// processEvent is the single-event path shared by HandleEvent and
// non-optimizable batch groups.
func (e *Engine) processEvent(ctx context.Context, ev Event) {
	cat, ok := e.route(ctx, ev.Type, 1)
	if !ok {
		return
	}
	// Metadata is opaque to the engine; it only surfaces in diagnostics.
	if len(ev.Metadata) > 0 {
		e.logger.DebugContext(ctx, "processing invalidation event",
			"event_type", string(ev.Type),
			"metadata", ev.Metadata,
		)
	}
	p := e.policies[cat](ev)
	e.logSkips(ctx, ev.Type, p.skipped)
	e.execute(ctx, cat, ev.Type, p.evictions)
}

// processGroup handles one type group of a batch.
func (e *Engine) processGroup(ctx context.Context, g eventGroup) {
	cat, ok := e.route(ctx, g.eventType, len(g.events))
	if !ok {
		return
	}

	policy := e.policies[cat]
	var evictions []eviction
	for _, ev := range g.events {
		p := policy(ev)
		e.logSkips(ctx, ev.Type, p.skipped)
		evictions = append(evictions, p.evictions...)
	}

	// Bulk-optimizable types collapse N events over the same entity to the
	// 1-event call set. Scope targets are injective over entity ids, so
	// deduping on the final target string is exact. All other types replay
	// the single-event policy once per event, unchanged.
	if bulkOptimizable[g.eventType] {
		evictions = dedupeEvictions(evictions)
	}
	e.execute(ctx, cat, g.eventType, evictions)
}

// route resolves the category for an event type, logging and counting drops.
func (e *Engine) route(ctx context.Context, t EventType, count int) (Category, bool) {
	cat, ok := t.Category()
	if !ok {
		e.logger.WarnContext(ctx, "unknown event type, dropping",
			"event_type", string(t),
			"events", count,
		)
		if e.metrics != nil {
			e.metrics.AddUnknownEvents(count)
		}
		return "", false
	}
	return cat, true
}

// execute issues one wave of evictions concurrently and settles all of them,
// logging and swallowing individual store failures.
func (e *Engine) execute(ctx context.Context, cat Category, t EventType, evictions []eviction) {
	if len(evictions) == 0 {
		return
	}

	tasks := make([]parallel.Task, len(evictions))
	for i, ev := range evictions {
		ev := ev
		tasks[i] = func(ctx context.Context) error {
			if ev.exact {
				return e.store.DeleteScope(ctx, ev.target)
			}
			return e.store.DeletePattern(ctx, ev.target)
		}
	}

	errs := parallel.SettleAll(ctx, e.maxInflight, tasks)
	for i, err := range errs {
		if err == nil {
			continue
		}
		e.logger.ErrorContext(ctx, "cache eviction failed",
			"event_type", string(t),
			"scope", evictions[i].scope,
			"target", evictions[i].target,
			"error", err,
		)
		if e.metrics != nil {
			e.metrics.IncrementEvictionFailures(string(cat))
		}
	}

	if e.metrics != nil {
		e.metrics.IncrementEvictions(string(cat), len(evictions))
		for _, ev := range evictions {
			if ev.target == cachekeys.All() {
				e.metrics.IncrementFullFlushes()
			}
		}
	}
}

// logSkips records guarded scopes suppressed by missing identifiers.
func (e *Engine) logSkips(ctx context.Context, t EventType, skipped []string) {
	if len(skipped) == 0 {
		return
	}
	e.logger.WarnContext(ctx, "scope eviction skipped, identifier missing",
		"event_type", string(t),
		"scopes", skipped,
	)
}

// eventGroup is one type's slice of a batch, in first-appearance order.
type eventGroup struct {
	eventType EventType
	events    []Event
}

// groupByType groups events by type, preserving the order in which each type
// first appears. Processing order across groups carries no meaning; the
// stable order only keeps diagnostics reproducible.
func groupByType(events []Event) []eventGroup {
	index := make(map[EventType]int, len(events))
	var groups []eventGroup
	for _, ev := range events {
		i, ok := index[ev.Type]
		if !ok {
			i = len(groups)
			index[ev.Type] = i
			groups = append(groups, eventGroup{eventType: ev.Type})
		}
		groups[i].events = append(groups[i].events, ev)
	}
	return groups
}

// dedupeEvictions collapses evictions sharing a target, preserving first
// appearance order.
func dedupeEvictions(evictions []eviction) []eviction {
	byTarget := make(map[string]eviction, len(evictions))
	targets := make([]string, 0, len(evictions))
	for _, ev := range evictions {
		if _, ok := byTarget[ev.target]; !ok {
			byTarget[ev.target] = ev
		}
		targets = append(targets, ev.target)
	}

	deduped := pstrings.DedupeAndTrim(targets)
	out := make([]eviction, 0, len(deduped))
	for _, target := range deduped {
		out = append(out, byTarget[target])
	}
	return out
}
