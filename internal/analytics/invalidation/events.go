// Package invalidation decides which regions of the derived-metrics cache
// must be evicted when a domain change lands. It is a best-effort eviction
// layer: nothing it does can fail the business write that produced an event.
package invalidation

import "time"

// Category groups event types by the eviction policy they share.
type Category string

const (
	// CategoryCourse covers course lifecycle changes, including deletion,
	// which carries a more aggressive policy.
	CategoryCourse Category = "course"

	// CategoryEnrollment covers enrollment lifecycle changes. These can move
	// platform-wide aggregates and cross-course rankings.
	CategoryEnrollment Category = "enrollment"

	// CategoryProgress covers lesson-level progress updates. High-frequency,
	// low aggregate impact, so eviction stays narrow.
	CategoryProgress Category = "progress"

	// CategoryAssessment covers quiz and assignment submission/grading.
	CategoryAssessment Category = "assessment"

	// CategoryPayment covers revenue events. Revenue always moves platform
	// aggregates, so a payment scope is evicted even without a course id.
	CategoryPayment Category = "payment"

	// CategoryUser covers user lifecycle changes, including deletion.
	CategoryUser Category = "user"

	// CategoryCommunication covers discussion, messaging, and announcement
	// activity.
	CategoryCommunication Category = "communication"
)

// EventType tags one domain change notification.
type EventType string

const (
	// Course events
	EventCourseCreated   EventType = "course_created"
	EventCourseUpdated   EventType = "course_updated"
	EventCoursePublished EventType = "course_published"
	EventCourseDeleted   EventType = "course_deleted"

	// Enrollment events
	EventEnrollmentCreated   EventType = "enrollment_created"
	EventEnrollmentCompleted EventType = "enrollment_completed"
	EventEnrollmentWithdrawn EventType = "enrollment_withdrawn"

	// Progress events
	EventLessonProgressUpdated EventType = "lesson_progress_updated"

	// Assessment events
	EventQuizSubmitted       EventType = "quiz_submitted"
	EventQuizGraded          EventType = "quiz_graded"
	EventAssignmentSubmitted EventType = "assignment_submitted"
	EventAssignmentGraded    EventType = "assignment_graded"

	// Payment events
	EventPaymentCompleted EventType = "payment_completed"
	EventPaymentFailed    EventType = "payment_failed"
	EventPaymentRefunded  EventType = "payment_refunded"

	// User events
	EventUserCreated EventType = "user_created"
	EventUserUpdated EventType = "user_updated"
	EventUserDeleted EventType = "user_deleted"

	// Communication events
	EventDiscussionPostCreated EventType = "discussion_post_created"
	EventMessageSent           EventType = "message_sent"
	EventAnnouncementCreated   EventType = "announcement_created"
)

// eventCategories is the closed routing table. An event type absent from
// this map has no policy and is dropped with a warning, never an error.
var eventCategories = map[EventType]Category{
	EventCourseCreated:   CategoryCourse,
	EventCourseUpdated:   CategoryCourse,
	EventCoursePublished: CategoryCourse,
	EventCourseDeleted:   CategoryCourse,

	EventEnrollmentCreated:   CategoryEnrollment,
	EventEnrollmentCompleted: CategoryEnrollment,
	EventEnrollmentWithdrawn: CategoryEnrollment,

	EventLessonProgressUpdated: CategoryProgress,

	EventQuizSubmitted:       CategoryAssessment,
	EventQuizGraded:          CategoryAssessment,
	EventAssignmentSubmitted: CategoryAssessment,
	EventAssignmentGraded:    CategoryAssessment,

	EventPaymentCompleted: CategoryPayment,
	EventPaymentFailed:    CategoryPayment,
	EventPaymentRefunded:  CategoryPayment,

	EventUserCreated: CategoryUser,
	EventUserUpdated: CategoryUser,
	EventUserDeleted: CategoryUser,

	EventDiscussionPostCreated: CategoryCommunication,
	EventMessageSent:           CategoryCommunication,
	EventAnnouncementCreated:   CategoryCommunication,
}

// Category returns the routing category for this event type and whether the
// type is known.
func (t EventType) Category() (Category, bool) {
	cat, ok := eventCategories[t]
	return cat, ok
}

// bulkOptimizable marks event types whose batches deduplicate by entity
// identifier before any cache-store call is issued.
var bulkOptimizable = map[EventType]bool{
	EventCourseUpdated:       true,
	EventCoursePublished:     true,
	EventEnrollmentCreated:   true,
	EventEnrollmentCompleted: true,
}

// Event is a domain change notification. Type is the only required field;
// every identifier is independently optional and the engine tolerates any
// combination, including none.
type Event struct {
	Type         EventType         `json:"type"`
	Timestamp    time.Time         `json:"timestamp,omitempty"`
	UserID       string            `json:"userId,omitempty"`
	CourseID     string            `json:"courseId,omitempty"`
	EnrollmentID string            `json:"enrollmentId,omitempty"`
	LessonID     string            `json:"lessonId,omitempty"`
	QuizID       string            `json:"quizId,omitempty"`
	AssignmentID string            `json:"assignmentId,omitempty"`
	PaymentID    string            `json:"paymentId,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}
