package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(idle time.Duration) (*Manager, *time.Time) {
	m := NewManager(idle)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestCreateAndGet(t *testing.T) {
	m, _ := newTestManager(30 * time.Minute)

	id, err := m.Create(RoleMember, "alice@example.com")
	require.NoError(t, err)
	assert.Len(t, id, 64)

	ctx, ok := m.Get(id, RoleMember)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", ctx.Identity)
	assert.Equal(t, RoleMember, ctx.Role)

	// A member session never satisfies an admin check.
	_, ok = m.Get(id, RoleAdmin)
	assert.False(t, ok)

	_, ok = m.Get("unknown", RoleMember)
	assert.False(t, ok)
}

func TestTerminate(t *testing.T) {
	m, _ := newTestManager(30 * time.Minute)

	id, err := m.Create(RoleAdmin, "admin")
	require.NoError(t, err)

	m.Terminate(id)

	_, ok := m.Get(id, RoleAdmin)
	assert.False(t, ok)

	// Terminating twice is harmless.
	m.Terminate(id)
}

func TestIdleTimeout(t *testing.T) {
	m, now := newTestManager(30 * time.Minute)

	id, err := m.Create(RoleMember, "alice@example.com")
	require.NoError(t, err)

	// Activity inside the window slides it.
	*now = now.Add(20 * time.Minute)
	_, ok := m.Get(id, RoleMember)
	require.True(t, ok)

	*now = now.Add(25 * time.Minute)
	_, ok = m.Get(id, RoleMember)
	require.True(t, ok)

	// Going idle past the timeout expires the session.
	*now = now.Add(31 * time.Minute)
	_, ok = m.Get(id, RoleMember)
	assert.False(t, ok)
}

func TestRevokeIdentity(t *testing.T) {
	m, _ := newTestManager(30 * time.Minute)

	id1, err := m.Create(RoleMember, "alice@example.com")
	require.NoError(t, err)
	id2, err := m.Create(RoleMember, "alice@example.com")
	require.NoError(t, err)
	other, err := m.Create(RoleMember, "bob@example.com")
	require.NoError(t, err)

	m.RevokeIdentity(RoleMember, "alice@example.com")

	_, ok := m.Get(id1, RoleMember)
	assert.False(t, ok)
	_, ok = m.Get(id2, RoleMember)
	assert.False(t, ok)

	_, ok = m.Get(other, RoleMember)
	assert.True(t, ok, "revocation must not touch other identities")
}

func TestRekey(t *testing.T) {
	m, _ := newTestManager(30 * time.Minute)

	id, err := m.Create(RoleAdmin, "admin")
	require.NoError(t, err)

	m.Rekey(RoleAdmin, "admin", "boss")

	ctx, ok := m.Get(id, RoleAdmin)
	require.True(t, ok)
	assert.Equal(t, "boss", ctx.Identity)

	// Revocation finds the session under the new identity.
	m.RevokeIdentity(RoleAdmin, "boss")
	_, ok = m.Get(id, RoleAdmin)
	assert.False(t, ok)
}

func TestSweep(t *testing.T) {
	m, now := newTestManager(30 * time.Minute)

	stale, err := m.Create(RoleMember, "alice@example.com")
	require.NoError(t, err)

	*now = now.Add(45 * time.Minute)

	fresh, err := m.Create(RoleMember, "bob@example.com")
	require.NoError(t, err)

	m.Sweep()

	assert.NotContains(t, m.byID, stale)
	assert.Contains(t, m.byID, fresh)
}
