package cachekeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		expected string
	}{
		{
			name:     "no segments yields bare prefix",
			segments: nil,
			expected: "analytics",
		},
		{
			name:     "single namespace",
			segments: []string{NamespaceDashboard},
			expected: "analytics:dashboard",
		},
		{
			name:     "namespace with id",
			segments: []string{NamespaceCourse, "c1"},
			expected: "analytics:course:c1",
		},
		{
			name:     "composite id pair",
			segments: []string{NamespaceEnrollment, "c1", "u1"},
			expected: "analytics:enrollment:c1:u1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Key(tt.segments...))
		})
	}
}

func TestPattern(t *testing.T) {
	assert.Equal(t, "analytics:course:c1:*", Pattern(NamespaceCourse, "c1"))
	assert.Equal(t, "analytics:platform:*", Pattern(NamespacePlatform))
	assert.Equal(t, "analytics:assessment:c1:u1:*", Pattern(NamespaceAssessment, "c1", "u1"))
}

func TestAll(t *testing.T) {
	assert.Equal(t, "analytics:*", All())
}

func TestKeyIsDeterministic(t *testing.T) {
	first := Key(NamespaceStudent, "u42")
	second := Key(NamespaceStudent, "u42")
	assert.Equal(t, first, second)
}

func TestDistinctScopesDoNotCollide(t *testing.T) {
	scopes := []string{
		Key(NamespaceCourse, "c1"),
		Key(NamespaceStudent, "c1"),
		Key(NamespaceEnrollment, "c1", "u1"),
		Key(NamespaceEnrollment, "u1", "c1"),
		Pattern(NamespaceCourse, "c1"),
		Pattern(NamespacePayment),
		Pattern(NamespacePayment, "c1"),
		All(),
	}

	seen := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		_, dup := seen[s]
		assert.False(t, dup, "scope %q collides", s)
		seen[s] = struct{}{}
	}
}
