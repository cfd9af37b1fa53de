package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/outlook-mcp/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "credentials.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func sampleToken() *domain.OAuthToken {
	return &domain.OAuthToken{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-def",
		TokenType:    "Bearer",
		Expiry:       time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveLoadToken_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	want := sampleToken()
	require.NoError(t, store.SaveToken("work", want))

	got, err := store.LoadToken("work")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveToken_ReplacesExistingAccount(t *testing.T) {
	store := newTestStore(t)

	first := sampleToken()
	require.NoError(t, store.SaveToken("work", first))

	second := sampleToken()
	second.AccessToken = "access-rotated"
	second.RefreshToken = "refresh-rotated"
	require.NoError(t, store.SaveToken("work", second))

	got, err := store.LoadToken("work")
	require.NoError(t, err)
	assert.Equal(t, "access-rotated", got.AccessToken)
	assert.Equal(t, "refresh-rotated", got.RefreshToken)
}

func TestSaveToken_AccountsAreIndependent(t *testing.T) {
	store := newTestStore(t)

	work := sampleToken()
	personal := sampleToken()
	personal.AccessToken = "access-personal"

	require.NoError(t, store.SaveToken("work", work))
	require.NoError(t, store.SaveToken("personal", personal))

	got, err := store.LoadToken("personal")
	require.NoError(t, err)
	assert.Equal(t, "access-personal", got.AccessToken)

	got, err = store.LoadToken("work")
	require.NoError(t, err)
	assert.Equal(t, "access-abc", got.AccessToken)
}

func TestLoadToken_UnknownAccount(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadToken("nobody")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestSaveLoadToken_ZeroExpiry(t *testing.T) {
	store := newTestStore(t)

	token := sampleToken()
	token.Expiry = time.Time{}
	require.NoError(t, store.SaveToken("work", token))

	got, err := store.LoadToken("work")
	require.NoError(t, err)
	assert.True(t, got.Expiry.IsZero())
}

func TestDeleteToken(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveToken("work", sampleToken()))
	require.NoError(t, store.DeleteToken("work"))

	_, err := store.LoadToken("work")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestDeleteToken_UnknownAccountIsNotAnError(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.DeleteToken("nobody"))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveToken("work", sampleToken()))
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.LoadToken("work")
	require.NoError(t, err)
	assert.Equal(t, sampleToken(), got)
}
