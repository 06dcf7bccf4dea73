package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezshare/ezshare/pkg/models"
)

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Close()

	created := r.Create("tok-1", "alice", models.Permissions{Clipboard: true})
	require.NotEmpty(t, created.ID)

	got, err := r.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.IdentityToken)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.Permissions.Clipboard)
	assert.False(t, got.Permissions.Upload)
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Close()

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryDestroy(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Close()

	s := r.Create("tok-1", "alice", models.Permissions{})
	r.Destroy(s.ID)

	_, err := r.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Destroying again must not panic.
	r.Destroy(s.ID)
}

func TestRegistryExpiry(t *testing.T) {
	r := NewRegistry(10 * time.Millisecond)
	defer r.Close()

	s := r.Create("tok-1", "alice", models.Permissions{})
	time.Sleep(30 * time.Millisecond)

	_, err := r.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, r.Len(), "expired session should be removed on Get")
}

func TestRegistryGetRefreshesIdleTimer(t *testing.T) {
	r := NewRegistry(50 * time.Millisecond)
	defer r.Close()

	s := r.Create("tok-1", "alice", models.Permissions{})
	for i := 0; i < 4; i++ {
		time.Sleep(20 * time.Millisecond)
		_, err := r.Get(s.ID)
		require.NoError(t, err, "touch %d", i)
	}
}

func TestRegistrySetIdentityToken(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Close()

	s := r.Create("tok-1", "alice", models.Permissions{})
	require.NoError(t, r.SetIdentityToken(s.ID, "tok-2"))

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got.IdentityToken)

	assert.ErrorIs(t, r.SetIdentityToken("nope", "x"), ErrSessionNotFound)
}

func TestRegistrySetPermissions(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Close()

	s := r.Create("tok-1", "alice", models.Permissions{})
	require.NoError(t, r.SetPermissions(s.ID, models.Permissions{Upload: true}))

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.True(t, got.Permissions.Upload)
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Close()

	s := r.Create("tok-1", "alice", models.Permissions{})
	got, err := r.Get(s.ID)
	require.NoError(t, err)
	got.IdentityToken = "mutated"

	again, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", again.IdentityToken, "returned session should be a copy")
}
