package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreDeleteScope(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	s.Set("analytics:course:c1", "v1")
	s.Set("analytics:course:c2", "v2")

	require.NoError(t, s.DeleteScope(ctx, "analytics:course:c1"))

	_, ok := s.Get("analytics:course:c1")
	assert.False(t, ok)
	_, ok = s.Get("analytics:course:c2")
	assert.True(t, ok)
}

func TestMemoryStoreDeleteScopeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	assert.NoError(t, s.DeleteScope(ctx, "analytics:course:missing"))
	assert.NoError(t, s.DeleteScope(ctx, "analytics:course:missing"))
}

func TestMemoryStoreDeletePattern(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	s.Set("analytics:course:c1:completion", "v")
	s.Set("analytics:course:c1:engagement", "v")
	s.Set("analytics:course:c2:completion", "v")
	s.Set("analytics:student:u1:progress", "v")

	require.NoError(t, s.DeletePattern(ctx, "analytics:course:c1:*"))

	_, ok := s.Get("analytics:course:c1:completion")
	assert.False(t, ok)
	_, ok = s.Get("analytics:course:c1:engagement")
	assert.False(t, ok)
	_, ok = s.Get("analytics:course:c2:completion")
	assert.True(t, ok)
	_, ok = s.Get("analytics:student:u1:progress")
	assert.True(t, ok)
}

func TestMemoryStoreFullNamespacePattern(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	s.Set("analytics:course:c1:completion", "v")
	s.Set("analytics:platform:overview", "v")
	s.Set("sessions:u1", "v")

	require.NoError(t, s.DeletePattern(ctx, "analytics:*"))

	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("sessions:u1")
	assert.True(t, ok)
}
