package invalidation

import (
	"coursepulse/internal/analytics/cachekeys"
)

// eviction is one pending cache-store call produced by a policy.
type eviction struct {
	// scope is the logical scope label used in logs and metrics,
	// e.g. "course:c1" or "platform:*".
	scope string
	// target is the cache key or pattern handed to the store.
	target string
	// exact selects DeleteScope over DeletePattern.
	exact bool
}

// plan is a policy's verdict for one event: the evictions to issue and the
// guarded scopes that were suppressed because their identifier was absent.
type plan struct {
	evictions []eviction
	skipped   []string
}

// policyFunc is a pure mapping from event fields to an eviction plan.
type policyFunc func(Event) plan

// policies builds the closed category → policy registry. Every Category
// constant must have an entry; routing treats a missing entry the same as an
// unknown event type.
func policies() map[Category]policyFunc {
	return map[Category]policyFunc{
		CategoryCourse:        coursePolicy,
		CategoryEnrollment:    enrollmentPolicy,
		CategoryProgress:      progressPolicy,
		CategoryAssessment:    assessmentPolicy,
		CategoryPayment:       paymentPolicy,
		CategoryUser:          userPolicy,
		CategoryCommunication: communicationPolicy,
	}
}

func patternEviction(namespace string, ids ...string) eviction {
	segments := append([]string{namespace}, ids...)
	return eviction{
		scope:  scopeLabel(namespace, ids...),
		target: cachekeys.Pattern(segments...),
	}
}

func scopeLabel(namespace string, ids ...string) string {
	label := namespace + ":"
	for i, id := range ids {
		if i > 0 {
			label += ","
		}
		label += id
	}
	if len(ids) == 0 {
		label += cachekeys.Wildcard
	}
	return label
}

// platformBundle covers the aggregate scopes every ranking-moving event must
// evict.
func platformBundle() []eviction {
	return []eviction{
		patternEviction(cachekeys.NamespacePlatform),
		patternEviction(cachekeys.NamespaceDashboard),
	}
}

func trendingBundle() []eviction {
	return []eviction{
		patternEviction(cachekeys.NamespaceTrending),
		patternEviction(cachekeys.NamespaceTopPerformers),
	}
}

func fullFlush() eviction {
	return eviction{scope: "analytics:" + cachekeys.Wildcard, target: cachekeys.All()}
}

// coursePolicy handles course lifecycle events. Deletion flushes the whole
// analytics namespace because partial invalidation cannot be proven
// sufficient once the course is gone.
func coursePolicy(ev Event) plan {
	if ev.CourseID == "" {
		return plan{skipped: []string{"course"}}
	}

	if ev.Type == EventCourseDeleted {
		return plan{evictions: []eviction{
			patternEviction(cachekeys.NamespaceCourse, ev.CourseID),
			fullFlush(),
		}}
	}

	evs := []eviction{patternEviction(cachekeys.NamespaceCourse, ev.CourseID)}
	evs = append(evs, platformBundle()...)
	evs = append(evs, trendingBundle()...)
	return plan{evictions: evs}
}

// enrollmentPolicy evicts each id-scoped region independently; the aggregate
// bundles always fire because enrollment changes move cross-course rankings.
func enrollmentPolicy(ev Event) plan {
	var p plan
	if ev.CourseID != "" {
		p.evictions = append(p.evictions, patternEviction(cachekeys.NamespaceCourse, ev.CourseID))
	} else {
		p.skipped = append(p.skipped, "course")
	}
	if ev.UserID != "" {
		p.evictions = append(p.evictions, patternEviction(cachekeys.NamespaceStudent, ev.UserID))
	} else {
		p.skipped = append(p.skipped, "student")
	}
	if ev.CourseID != "" && ev.UserID != "" {
		// The enrollment pair lives under a single composite key.
		p.evictions = append(p.evictions, eviction{
			scope:  scopeLabel(cachekeys.NamespaceEnrollment, ev.CourseID, ev.UserID),
			target: cachekeys.Key(cachekeys.NamespaceEnrollment, ev.CourseID, ev.UserID),
			exact:  true,
		})
	} else {
		p.skipped = append(p.skipped, "enrollment")
	}
	p.evictions = append(p.evictions, platformBundle()...)
	p.evictions = append(p.evictions, trendingBundle()...)
	return p
}

// progressPolicy deliberately leaves platform and trending caches alone:
// lesson progress alone does not move aggregate metrics enough to justify
// the churn under load.
func progressPolicy(ev Event) plan {
	var p plan
	if ev.CourseID != "" {
		p.evictions = append(p.evictions, patternEviction(cachekeys.NamespaceCourse, ev.CourseID))
	} else {
		p.skipped = append(p.skipped, "course")
	}
	if ev.UserID != "" {
		p.evictions = append(p.evictions, patternEviction(cachekeys.NamespaceStudent, ev.UserID))
	} else {
		p.skipped = append(p.skipped, "student")
	}
	p.evictions = append(p.evictions, patternEviction(cachekeys.NamespaceDashboard))
	return p
}

// assessmentPolicy evicts the assessment pair scope only when both ids are
// present; the dashboard bundle fires regardless.
func assessmentPolicy(ev Event) plan {
	var p plan
	if ev.CourseID != "" && ev.UserID != "" {
		p.evictions = append(p.evictions, patternEviction(cachekeys.NamespaceAssessment, ev.CourseID, ev.UserID))
	} else {
		p.skipped = append(p.skipped, "assessment")
	}
	p.evictions = append(p.evictions, patternEviction(cachekeys.NamespaceDashboard))
	return p
}

// paymentPolicy always evicts a payment scope: course-scoped when the id is
// known, the global payment namespace otherwise.
func paymentPolicy(ev Event) plan {
	var p plan
	if ev.CourseID != "" {
		p.evictions = append(p.evictions, patternEviction(cachekeys.NamespacePayment, ev.CourseID))
	} else {
		p.evictions = append(p.evictions, patternEviction(cachekeys.NamespacePayment))
	}
	p.evictions = append(p.evictions, platformBundle()...)
	return p
}

// userPolicy mirrors coursePolicy: deletion flushes everything.
func userPolicy(ev Event) plan {
	if ev.UserID == "" {
		return plan{skipped: []string{"student"}}
	}

	if ev.Type == EventUserDeleted {
		return plan{evictions: []eviction{
			patternEviction(cachekeys.NamespaceStudent, ev.UserID),
			fullFlush(),
		}}
	}

	evs := []eviction{patternEviction(cachekeys.NamespaceStudent, ev.UserID)}
	evs = append(evs, platformBundle()...)
	return plan{evictions: evs}
}

// communicationPolicy touches only the narrow scopes; posts and messages
// never move aggregates.
func communicationPolicy(ev Event) plan {
	var p plan
	if ev.CourseID != "" {
		p.evictions = append(p.evictions, patternEviction(cachekeys.NamespaceCourse, ev.CourseID))
	} else {
		p.skipped = append(p.skipped, "course")
	}
	if ev.UserID != "" {
		p.evictions = append(p.evictions, patternEviction(cachekeys.NamespaceStudent, ev.UserID))
	} else {
		p.skipped = append(p.skipped, "student")
	}
	return p
}
