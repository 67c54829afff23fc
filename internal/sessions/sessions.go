// Package sessions is the single authority for logged-in state. A session
// is an opaque random identifier mapped to a server-side context carrying a
// role tag and the authenticated identity; member and admin sessions never
// satisfy each other's checks. An identity index makes revocation on member
// deletion immediate.
package sessions

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

type Context struct {
	ID       string
	Role     Role
	Identity string
	lastSeen time.Time
}

type Manager struct {
	mu          sync.Mutex
	byID        map[string]*Context
	byIdentity  map[identityKey]map[string]struct{}
	idleTimeout time.Duration
	now         func() time.Time
}

type identityKey struct {
	role     Role
	identity string
}

func NewManager(idleTimeout time.Duration) *Manager {
	return &Manager{
		byID:        make(map[string]*Context),
		byIdentity:  make(map[identityKey]map[string]struct{}),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Create establishes a session and returns its identifier, the only piece
// handed to the client.
func (m *Manager) Create(role Role, identity string) (string, error) {
	const op = "sessions.Create"

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id := hex.EncodeToString(buf)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID[id] = &Context{
		ID:       id,
		Role:     role,
		Identity: identity,
		lastSeen: m.now(),
	}

	key := identityKey{role: role, identity: identity}
	if m.byIdentity[key] == nil {
		m.byIdentity[key] = make(map[string]struct{})
	}
	m.byIdentity[key][id] = struct{}{}

	return id, nil
}

// Get returns the session context for id when it exists, carries the wanted
// role and has not sat idle past the timeout. A hit slides the idle window.
func (m *Manager) Get(id string, role Role) (Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, ok := m.byID[id]
	if !ok || ctx.Role != role {
		return Context{}, false
	}

	if m.now().Sub(ctx.lastSeen) > m.idleTimeout {
		m.dropLocked(id)
		return Context{}, false
	}

	ctx.lastSeen = m.now()

	return *ctx, true
}

func (m *Manager) Terminate(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dropLocked(id)
}

// RevokeIdentity kills every live session authenticated as identity. Member
// deletion calls this so a deleted account loses access immediately.
func (m *Manager) RevokeIdentity(role Role, identity string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := identityKey{role: role, identity: identity}
	for id := range m.byIdentity[key] {
		delete(m.byID, id)
	}
	delete(m.byIdentity, key)
}

// Rekey moves every session for oldIdentity to newIdentity. Used when an
// admin renames their account so the live session follows.
func (m *Manager) Rekey(role Role, oldIdentity, newIdentity string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldKey := identityKey{role: role, identity: oldIdentity}
	newKey := identityKey{role: role, identity: newIdentity}

	for id := range m.byIdentity[oldKey] {
		if ctx, ok := m.byID[id]; ok {
			ctx.Identity = newIdentity
		}
		if m.byIdentity[newKey] == nil {
			m.byIdentity[newKey] = make(map[string]struct{})
		}
		m.byIdentity[newKey][id] = struct{}{}
	}
	delete(m.byIdentity, oldKey)
}

// Sweep removes idle-expired sessions. Run it periodically; Get also drops
// expired entries on access, so the sweep only bounds memory.
func (m *Manager) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idleTimeout)
	for id, ctx := range m.byID {
		if ctx.lastSeen.Before(cutoff) {
			m.dropLocked(id)
		}
	}
}

func (m *Manager) dropLocked(id string) {
	ctx, ok := m.byID[id]
	if !ok {
		return
	}

	delete(m.byID, id)

	key := identityKey{role: ctx.Role, identity: ctx.Identity}
	if set := m.byIdentity[key]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(m.byIdentity, key)
		}
	}
}
