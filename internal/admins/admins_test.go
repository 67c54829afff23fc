package admins

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"teamshare/internal/models"
	"teamshare/internal/storage"
)

type fakeStore struct {
	admins map[string]models.Admin
}

func newFakeStore() *fakeStore {
	return &fakeStore{admins: make(map[string]models.Admin)}
}

func (f *fakeStore) SaveAdmin(a models.Admin) error {
	for _, existing := range f.admins {
		if existing.Username == a.Username || existing.Email == a.Email {
			return storage.ErrAdminExists
		}
	}
	f.admins[a.Username] = a
	return nil
}

func (f *fakeStore) Admin(username string) (models.Admin, error) {
	a, ok := f.admins[username]
	if !ok {
		return models.Admin{}, storage.ErrAdminNotFound
	}
	return a, nil
}

func (f *fakeStore) UpdateAdmin(current string, a models.Admin) error {
	if _, ok := f.admins[current]; !ok {
		return storage.ErrAdminNotFound
	}
	if current != a.Username {
		if _, taken := f.admins[a.Username]; taken {
			return storage.ErrAdminExists
		}
	}
	delete(f.admins, current)
	f.admins[a.Username] = a
	return nil
}

func newService() (*Service, *fakeStore) {
	store := newFakeStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, store), store
}

func TestSeedIsIdempotent(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx, "admin", "admin@local", "admin123"))
	first := store.admins["admin"]

	// A second seed (process restart) neither duplicates nor resets.
	require.NoError(t, svc.Seed(ctx, "admin", "admin@local", "different-pass"))

	assert.Len(t, store.admins, 1)
	assert.Equal(t, first.PassHash, store.admins["admin"].PassHash)
}

func TestLogin(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx, "admin", "admin@local", "admin123"))

	a, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin@local", a.Email)

	_, err = svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ghost", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx, "admin", "admin@local", "admin123"))

	// Blank fields keep the current values.
	a, err := svc.UpdateProfile(ctx, "admin", "", "new@local", "")
	require.NoError(t, err)
	assert.Equal(t, "admin", a.Username)
	assert.Equal(t, "new@local", a.Email)

	// Password change takes effect.
	a, err = svc.UpdateProfile(ctx, "admin", "", "", "hunter2")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(a.PassHash, []byte("hunter2")))

	// Rename follows through the store.
	a, err = svc.UpdateProfile(ctx, "admin", "boss", "", "")
	require.NoError(t, err)
	assert.Equal(t, "boss", a.Username)
	_, ok := store.admins["boss"]
	assert.True(t, ok)
}

func TestUpdateProfileRenameCollision(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx, "admin", "admin@local", "admin123"))
	require.NoError(t, svc.Seed(ctx, "root", "root@local", "root123"))

	_, err := svc.UpdateProfile(ctx, "admin", "root", "", "")
	assert.ErrorIs(t, err, ErrAdminExists)
}
