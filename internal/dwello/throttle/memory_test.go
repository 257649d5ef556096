package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_LocksOutAfterThreshold(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Config{MaxFailures: 3, Window: time.Minute})

	for range 2 {
		require.NoError(t, m.RecordFailure(ctx, "a@example.com"))
	}
	exceeded, err := m.Exceeded(ctx, "a@example.com")
	require.NoError(t, err)
	require.False(t, exceeded)

	require.NoError(t, m.RecordFailure(ctx, "a@example.com"))
	exceeded, err = m.Exceeded(ctx, "a@example.com")
	require.NoError(t, err)
	require.True(t, exceeded)

	// Other keys are unaffected.
	exceeded, err = m.Exceeded(ctx, "b@example.com")
	require.NoError(t, err)
	require.False(t, exceeded)
}

func TestMemory_Reset(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Config{MaxFailures: 1, Window: time.Minute})

	require.NoError(t, m.RecordFailure(ctx, "k"))
	exceeded, _ := m.Exceeded(ctx, "k")
	require.True(t, exceeded)

	require.NoError(t, m.Reset(ctx, "k"))
	exceeded, _ = m.Exceeded(ctx, "k")
	require.False(t, exceeded)
}

func TestMemory_WindowExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(Config{MaxFailures: 2, Window: time.Minute})
	m.now = func() time.Time { return now }

	require.NoError(t, m.RecordFailure(ctx, "k"))
	require.NoError(t, m.RecordFailure(ctx, "k"))
	exceeded, _ := m.Exceeded(ctx, "k")
	require.True(t, exceeded)

	now = now.Add(time.Minute)
	exceeded, _ = m.Exceeded(ctx, "k")
	require.False(t, exceeded)

	// A fresh window starts from zero.
	require.NoError(t, m.RecordFailure(ctx, "k"))
	exceeded, _ = m.Exceeded(ctx, "k")
	require.False(t, exceeded)
}

func TestConfigDefaults(t *testing.T) {
	m := NewMemory(Config{})
	require.Equal(t, DefaultConfig, m.cfg)
}
