// Package cachekeys builds the hierarchical key namespace for derived
// analytics cache entries. All builders are pure; distinct segment tuples
// yield distinct strings.
package cachekeys

import "strings"

// Prefix is the root namespace for every analytics cache entry.
const Prefix = "analytics"

const delimiter = ":"

// Wildcard matches any suffix in a pattern delete.
const Wildcard = "*"

// Sub-namespaces under the analytics prefix.
const (
	NamespaceDashboard     = "dashboard"
	NamespacePlatform      = "platform"
	NamespaceTrending      = "trending"
	NamespaceTopPerformers = "top-performers"
	NamespaceCourse        = "course"
	NamespaceStudent       = "student"
	NamespaceEnrollment    = "enrollment"
	NamespaceAssessment    = "assessment"
	NamespacePayment       = "payment"
)

// Key joins the analytics prefix with ordered segments.
//
//	Key("course", "c1") == "analytics:course:c1"
func Key(segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, Prefix)
	parts = append(parts, segments...)
	return strings.Join(parts, delimiter)
}

// Pattern builds a wildcard pattern covering every key under the segments,
// suitable for the store's pattern delete.
//
//	Pattern("course", "c1") == "analytics:course:c1:*"
func Pattern(segments ...string) string {
	return Key(segments...) + delimiter + Wildcard
}

// All matches the entire analytics namespace. Reserved for destructive
// events where partial invalidation cannot be proven sufficient.
func All() string {
	return Prefix + delimiter + Wildcard
}
