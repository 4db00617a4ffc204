package users

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edustore/edustore-backend/internal/models"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	repo, err := NewFileRepository(path)
	require.NoError(t, err)
	return NewService(repo), path
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)

	u, err := svc.Register("alice", "alice@example.com", "s3cret", models.RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.NotEqual(t, "s3cret", u.PasswordHash)

	got, err := svc.Authenticate("alice", "s3cret")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate("alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register("bob", "", "pw", models.RoleUser)
	require.NoError(t, err)
	_, err = svc.Register("bob", "", "pw2", models.RoleUser)
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestFileRepositoryReload(t *testing.T) {
	svc, path := newTestService(t)
	_, err := svc.Register("carol", "", "pw", models.RoleAdmin)
	require.NoError(t, err)

	repo2, err := NewFileRepository(path)
	require.NoError(t, err)
	u, err := repo2.GetByUsername("carol")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, u.Role)
}

func TestEnsureAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.EnsureAdmin("admin", "bootpw"))
	u, err := svc.Authenticate("admin", "bootpw")
	require.NoError(t, err)
	require.True(t, u.IsAdmin())

	// second call is a no-op
	require.NoError(t, svc.EnsureAdmin("admin", "otherpw"))
	_, err = svc.Authenticate("admin", "otherpw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
