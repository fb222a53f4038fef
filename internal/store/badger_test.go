package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBadger(t *testing.T) *BadgerStore {
	t.Helper()
	st, err := OpenBadger(BadgerConfig{InMemory: true, TTL: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestBadgerStore_Contract(t *testing.T) {
	st := openTestBadger(t)
	runSessionContract(t, st)
	runGuestContract(t, st)
}

func TestBadgerStore_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, playingSession("guest", "2025-03-10")))
	require.NoError(t, st.Close())

	reopened, err := OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "guest", "2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"flour"}, got.Correct)
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	assert.Error(t, err)
}

func TestBadgerStore_CancelledContext(t *testing.T) {
	st := openTestBadger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.Load(ctx, "guest", "2025-03-10")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, st.Save(ctx, playingSession("guest", "2025-03-10")), context.Canceled)
}
