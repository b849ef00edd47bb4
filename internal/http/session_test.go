package httpapi

import (
	"context"
	"testing"
	"time"

	"labtrack-data/internal/service"
	"labtrack-data/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	sessions := NewSessionStore(store.NewMemoryKV(), time.Hour, 24*time.Hour)
	ctx := context.Background()

	ident := service.Identity{UserID: 7, Username: "frontdesk", IsAdmin: false}
	token, err := sessions.Create(ctx, ident, false)
	require.NoError(t, err)

	got, ok := sessions.Get(ctx, token)
	require.True(t, ok)
	assert.Equal(t, ident, got)

	require.NoError(t, sessions.Destroy(ctx, token))
	_, ok = sessions.Get(ctx, token)
	assert.False(t, ok)
}

func TestFlashesAreReadOnce(t *testing.T) {
	sessions := NewSessionStore(store.NewMemoryKV(), time.Hour, 24*time.Hour)
	ctx := context.Background()

	token, err := sessions.Create(ctx, service.Identity{UserID: 1}, false)
	require.NoError(t, err)

	require.NoError(t, sessions.PushFlash(ctx, token, "first"))
	require.NoError(t, sessions.PushFlash(ctx, token, "second"))

	assert.Equal(t, []string{"first", "second"}, sessions.PopFlashes(ctx, token))
	assert.Empty(t, sessions.PopFlashes(ctx, token))
}

func TestSessionExpires(t *testing.T) {
	sessions := NewSessionStore(store.NewMemoryKV(), time.Millisecond, 24*time.Hour)
	ctx := context.Background()

	token, err := sessions.Create(ctx, service.Identity{UserID: 1}, false)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, ok := sessions.Get(ctx, token)
	assert.False(t, ok)
}
