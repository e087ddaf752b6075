package invalidation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"coursepulse/pkg/testutil"
)

// =============================================================================
// Batch Processor Test Suite
// =============================================================================
// Justification for unit tests: the dedup-exactness and failure-isolation
// guarantees of batch processing are call-count contracts; they can only be
// pinned against a recording fake.

type BatchSuite struct {
	suite.Suite
	store  *recordingStore
	engine *Engine
}

func TestBatchSuite(t *testing.T) {
	suite.Run(t, new(BatchSuite))
}

func (s *BatchSuite) SetupTest() {
	s.store = newRecordingStore()

	var err error
	s.engine, err = New(s.store, discardLogger())
	s.Require().NoError(err)
}

func (s *BatchSuite) handleBatch(events []Event) {
	s.Require().NoError(s.engine.HandleBatch(context.Background(), events))
}

func (s *BatchSuite) TestEmptyBatchIsNoOp() {
	s.handleBatch(nil)
	s.handleBatch([]Event{})

	s.Zero(s.store.totalCalls())
}

func (s *BatchSuite) TestDeduplicationIsExact() {
	// k events over the same ids must produce exactly the 1-event call set.
	single := newRecordingStore()
	engine, err := New(single, discardLogger())
	s.Require().NoError(err)
	s.Require().NoError(engine.HandleBatch(context.Background(), []Event{
		{Type: EventEnrollmentCompleted, CourseID: "c1", UserID: "u1"},
	}))

	batch := make([]Event, 0, 25)
	for i := 0; i < 25; i++ {
		batch = append(batch, Event{Type: EventEnrollmentCompleted, CourseID: "c1", UserID: "u1"})
	}
	s.handleBatch(batch)

	s.ElementsMatch(single.patternCalls(), s.store.patternCalls())
	s.ElementsMatch(single.scopeCalls(), s.store.scopeCalls())
	s.Equal(single.totalCalls(), s.store.totalCalls())
}

func (s *BatchSuite) TestDeduplicationKeepsDistinctIDs() {
	s.handleBatch([]Event{
		{Type: EventCoursePublished, CourseID: "c1"},
		{Type: EventCoursePublished, CourseID: "c2"},
		{Type: EventCoursePublished, CourseID: "c1"},
	})

	s.ElementsMatch([]string{
		"analytics:course:c1:*",
		"analytics:course:c2:*",
		"analytics:platform:*",
		"analytics:dashboard:*",
		"analytics:trending:*",
		"analytics:top-performers:*",
	}, s.store.patternCalls())
}

func (s *BatchSuite) TestNonOptimizableTypesAreNotDeduplicated() {
	s.handleBatch([]Event{
		{Type: EventLessonProgressUpdated, CourseID: "c1", UserID: "u1"},
		{Type: EventLessonProgressUpdated, CourseID: "c1", UserID: "u1"},
	})

	// The single-event policy runs once per event, unchanged.
	s.ElementsMatch([]string{
		"analytics:course:c1:*", "analytics:course:c1:*",
		"analytics:student:u1:*", "analytics:student:u1:*",
		"analytics:dashboard:*", "analytics:dashboard:*",
	}, s.store.patternCalls())
}

func (s *BatchSuite) TestMixedTypesProcessIndependently() {
	s.handleBatch([]Event{
		{Type: EventPaymentCompleted, CourseID: "c1"},
		{Type: EventUserUpdated, UserID: "u1"},
	})

	patterns := s.store.patternCalls()
	s.Contains(patterns, "analytics:payment:c1:*")
	s.Contains(patterns, "analytics:student:u1:*")
}

func (s *BatchSuite) TestUnknownTypesInBatchDoNotBlockOthers() {
	s.handleBatch([]Event{
		{Type: "graphql_schema_reloaded"},
		{Type: EventCourseDeleted, CourseID: "c1"},
		{Type: "graphql_schema_reloaded"},
	})

	s.ElementsMatch([]string{
		"analytics:course:c1:*",
		"analytics:*",
	}, s.store.patternCalls())
}

func (s *BatchSuite) TestFailingGroupDoesNotPreventOthers() {
	boom := errors.New("store unavailable")
	// Every eviction of the payment group fails.
	s.store.failOn("analytics:payment:*", boom)
	s.store.failOn("analytics:platform:*", boom)
	s.store.failOn("analytics:dashboard:*", boom)

	s.handleBatch([]Event{
		{Type: EventPaymentCompleted},
		{Type: EventDiscussionPostCreated, CourseID: "c9", UserID: "u9"},
		{Type: EventQuizGraded, CourseID: "c9", UserID: "u9"},
	})

	patterns := s.store.patternCalls()
	s.Contains(patterns, "analytics:course:c9:*")
	s.Contains(patterns, "analytics:student:u9:*")
	s.Contains(patterns, "analytics:assessment:c9:u9:*")
}

func (s *BatchSuite) TestDeletionEventsAlwaysFlushRegardlessOfOtherIDs() {
	s.handleBatch([]Event{
		{Type: EventUserDeleted, UserID: "u1"},
		{Type: EventUserDeleted, UserID: "u2", CourseID: "c1", EnrollmentID: "e1"},
	})

	flushes := 0
	for _, p := range s.store.patternCalls() {
		if p == "analytics:*" {
			flushes++
		}
	}
	s.Equal(2, flushes)
}

// groupByType ordering is a diagnostics guarantee, tested in the teacher's
// table style.
func TestGroupByTypePreservesFirstAppearanceOrder(t *testing.T) {
	testutil.Given(t, "a burst with interleaved types", func(t *testing.T) {
		events := []Event{
			{Type: EventCourseUpdated, CourseID: "c1"},
			{Type: EventEnrollmentCreated, CourseID: "c1", UserID: "u1"},
			{Type: EventCourseUpdated, CourseID: "c2"},
			{Type: EventMessageSent, UserID: "u1"},
			{Type: EventEnrollmentCreated, CourseID: "c2", UserID: "u2"},
		}

		groups := groupByType(events)

		assert.Len(t, groups, 3)
		assert.Equal(t, EventCourseUpdated, groups[0].eventType)
		assert.Equal(t, EventEnrollmentCreated, groups[1].eventType)
		assert.Equal(t, EventMessageSent, groups[2].eventType)
		assert.Len(t, groups[0].events, 2)
		assert.Len(t, groups[1].events, 2)
		assert.Len(t, groups[2].events, 1)
	})
}

func TestDedupeEvictionsPreservesFirstAppearance(t *testing.T) {
	evictions := []eviction{
		{scope: "course:c1", target: "analytics:course:c1:*"},
		{scope: "platform:*", target: "analytics:platform:*"},
		{scope: "course:c1", target: "analytics:course:c1:*"},
		{scope: "course:c2", target: "analytics:course:c2:*"},
	}

	out := dedupeEvictions(evictions)

	assert.Equal(t, []string{
		"analytics:course:c1:*",
		"analytics:platform:*",
		"analytics:course:c2:*",
	}, func() []string {
		targets := make([]string, len(out))
		for i, ev := range out {
			targets[i] = ev.target
		}
		return targets
	}())
}
