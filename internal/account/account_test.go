package account

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/kantan/internal/config"
	"github.com/roach88/kantan/internal/store"
	"github.com/roach88/kantan/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := New(st,
		WithCost(bcrypt.MinCost),
		WithKeyGenerator(testutil.NewSequenceKeyGenerator("key")),
	)
	return svc, st
}

func TestCreateUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, NewAccount{
		Username:      "alice",
		Password:      "s3cret",
		Role:          store.RoleTranslator,
		LanguageCodes: []string{"de-de", "fr", "FR"},
	})
	require.NoError(t, err)

	assert.Equal(t, "key-1", u.APIKey)
	assert.Equal(t, []string{"de-DE", "fr"}, u.LanguageCodes)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))
}

func TestCreateUser_Invalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, NewAccount{Username: "alice", Role: store.RoleAdmin})
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = svc.CreateUser(ctx, NewAccount{Username: "alice", Password: "pw", Role: store.RoleAdmin, LanguageCodes: []string{"source"}})
	assert.Error(t, err)

	_, err = svc.CreateUser(ctx, NewAccount{Username: "alice", Password: "pw", Role: "owner"})
	assert.True(t, store.IsInvalid(err))
}

func TestValidateLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, NewAccount{Username: "alice", Password: "pw", Role: store.RoleTranslator})
	require.NoError(t, err)

	u, err := svc.ValidateLogin(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = svc.ValidateLogin(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = svc.ValidateLogin(ctx, "bob", "pw")
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, NewAccount{Username: "alice", Password: "old", Role: store.RoleTranslator})
	require.NoError(t, err)

	_, err = svc.ChangePassword(ctx, "alice", "new")
	require.NoError(t, err)

	_, err = svc.ValidateLogin(ctx, "alice", "old")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = svc.ValidateLogin(ctx, "alice", "new")
	assert.NoError(t, err)

	_, err = svc.ChangePassword(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = svc.ChangePassword(ctx, "nobody", "x")
	assert.True(t, store.IsNotFound(err))
}

func TestRotateAPIKey(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, NewAccount{Username: "alice", Password: "pw", Role: store.RoleTranslator})
	require.NoError(t, err)
	require.Equal(t, "key-1", u.APIKey)

	rotated, err := svc.RotateAPIKey(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "key-2", rotated.APIKey)

	_, err = svc.AuthenticateAPIKey(ctx, "key-1")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)

	byKey, err := svc.AuthenticateAPIKey(ctx, "key-2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byKey.ID)

	_, err = svc.AuthenticateAPIKey(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestSetLanguages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, NewAccount{Username: "alice", Password: "pw", Role: store.RoleTranslator})
	require.NoError(t, err)

	u, err := svc.SetLanguages(ctx, "alice", []string{"ja", "pt-br"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ja", "pt-BR"}, u.LanguageCodes)

	_, err = svc.SetLanguages(ctx, "alice", []string{"not a language"})
	assert.Error(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnsureAdmin(ctx, config.AdminConfig{})
	assert.ErrorIs(t, err, ErrNoAdminCredentials)

	created, err := svc.EnsureAdmin(ctx, config.AdminConfig{Username: "root", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := st.GetUserByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, store.RoleAdmin, admin.Role)
	assert.Empty(t, admin.LanguageCodes)

	created, err = svc.EnsureAdmin(ctx, config.AdminConfig{Username: "other", Password: "pw"})
	require.NoError(t, err)
	assert.False(t, created, "an existing admin is kept")

	_, err = svc.ValidateLogin(ctx, "root", "pw")
	assert.NoError(t, err)
}

func TestRandomKeys(t *testing.T) {
	a := RandomKeys{}.NewKey()
	b := RandomKeys{}.NewKey()

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
