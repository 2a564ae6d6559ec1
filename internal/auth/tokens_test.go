package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestTokenStore() (*TokenStore, *MemoryTable[Token], *time.Time) {
	table := NewMemoryTable[Token]()
	current := time.Now()
	table.now = func() time.Time { return current }
	store := NewTokenStore(table, 24*time.Hour, 30*24*time.Hour)
	store.now = func() time.Time { return current }
	return store, table, &current
}

func TestIssueAndResolve(t *testing.T) {
	store, _, _ := newTestTokenStore()

	id, err := store.Issue("user-1", TokenAccess)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	token, err := store.Resolve(id)
	require.NoError(t, err)
	require.Equal(t, "user-1", token.UserID)
	require.Equal(t, TokenAccess, token.Kind)
}

func TestIssuedTokensAreUnique(t *testing.T) {
	store, _, _ := newTestTokenStore()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := store.Issue("user-1", TokenAccess)
		require.NoError(t, err)
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestResolveUnknownToken(t *testing.T) {
	store, _, _ := newTestTokenStore()

	_, err := store.Resolve("never-issued")

	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestAccessTokenExpiry(t *testing.T) {
	store, _, current := newTestTokenStore()

	id, err := store.Issue("user-1", TokenAccess)
	require.NoError(t, err)

	*current = current.Add(23 * time.Hour)
	_, err = store.Resolve(id)
	require.NoError(t, err)

	*current = current.Add(2 * time.Hour)
	_, err = store.Resolve(id)
	require.ErrorIs(t, err, ErrTokenExpired)

	// Evicted on the expired lookup; a second resolve no longer finds it.
	_, err = store.Resolve(id)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRefreshTokenOutlivesAccessWindow(t *testing.T) {
	store, _, current := newTestTokenStore()

	id, err := store.Issue("user-1", TokenRefresh)
	require.NoError(t, err)

	*current = current.Add(29 * 24 * time.Hour)
	token, err := store.Resolve(id)
	require.NoError(t, err)
	require.Equal(t, TokenRefresh, token.Kind)

	*current = current.Add(2 * 24 * time.Hour)
	_, err = store.Resolve(id)
	require.Error(t, err)
}
