package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eventreg/registration-system/internal/core/domain"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	sess, err := store.Get(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), sess.CallerID)
	require.Equal(t, domain.StepNone, sess.Step)

	sess.Step = domain.StepAwaitingPhone
	sess.Consent = true
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, domain.StepAwaitingPhone, got.Step)
	require.True(t, got.Consent)

	// Other callers stay independent.
	other, err := store.Get(ctx, 11)
	require.NoError(t, err)
	require.Equal(t, domain.StepNone, other.Step)

	require.NoError(t, store.Clear(ctx, 10))
	cleared, err := store.Get(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, domain.StepNone, cleared.Step)
}
