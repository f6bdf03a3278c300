package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDedupChecker(t *testing.T) {
	ctx := context.Background()
	d := NewDedupChecker()

	dup, err := d.IsDuplicate(ctx, 42)
	require.NoError(t, err)
	require.False(t, dup)

	require.NoError(t, d.Mark(ctx, 42))

	dup, err = d.IsDuplicate(ctx, 42)
	require.NoError(t, err)
	require.True(t, dup)

	dup, err = d.IsDuplicate(ctx, 43)
	require.NoError(t, err)
	require.False(t, dup)
}

func TestDedupChecker_Expiry(t *testing.T) {
	ctx := context.Background()
	d := NewDedupChecker()

	now := time.Now()
	d.now = func() time.Time { return now }
	require.NoError(t, d.Mark(ctx, 42))

	d.now = func() time.Time { return now.Add(dedupTTL + time.Minute) }
	dup, err := d.IsDuplicate(ctx, 42)
	require.NoError(t, err)
	require.False(t, dup)
}
