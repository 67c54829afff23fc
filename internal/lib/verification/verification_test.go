package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamshare/internal/models"
)

func TestIssue(t *testing.T) {
	svc := New(30 * time.Minute)

	token, expiry, err := svc.Issue()
	require.NoError(t, err)

	// 16 random bytes, hex encoded.
	assert.Len(t, token, 32)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiry, time.Second)

	other, _, err := svc.Issue()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestCheck(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewWithClock(30*time.Minute, func() time.Time { return now })

	member := models.Member{
		Email:       "alice@example.com",
		Token:       "aabbccdd",
		TokenExpiry: now.Add(10 * time.Minute),
	}

	tests := []struct {
		name    string
		member  models.Member
		token   string
		wantErr error
	}{
		{
			name:   "valid token",
			member: member,
			token:  "aabbccdd",
		},
		{
			name:    "wrong token",
			member:  member,
			token:   "eeff0011",
			wantErr: ErrInvalidToken,
		},
		{
			name: "cleared token never matches",
			member: models.Member{
				Email:    "alice@example.com",
				Verified: true,
			},
			token:   "",
			wantErr: ErrInvalidToken,
		},
		{
			name: "expired token is distinct from invalid",
			member: models.Member{
				Email:       "alice@example.com",
				Token:       "aabbccdd",
				TokenExpiry: now.Add(-time.Minute),
			},
			token:   "aabbccdd",
			wantErr: ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Check(tt.member, tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
