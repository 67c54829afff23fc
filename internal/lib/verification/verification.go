// Package verification issues and checks the single-use tokens that prove
// control of a member's email address. Tokens are opaque random values
// stored on the member record; redeeming one clears it, so replay is
// impossible by construction.
package verification

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"teamshare/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

const tokenBytes = 16

type Service struct {
	ttl time.Duration
	now func() time.Time
}

func New(ttl time.Duration) *Service {
	return &Service{ttl: ttl, now: time.Now}
}

// NewWithClock is for tests that need to control expiry.
func NewWithClock(ttl time.Duration, now func() time.Time) *Service {
	return &Service{ttl: ttl, now: now}
}

// Issue generates a fresh token and its expiry. The caller persists both on
// the member record.
func (s *Service) Issue() (string, time.Time, error) {
	const op = "verification.Issue"

	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return hex.EncodeToString(buf), s.now().Add(s.ttl), nil
}

// Check decides whether token redeems m right now. An expired match is
// reported distinctly from a miss so callers can offer a resend; the stored
// token is NOT cleared here, redemption does that in the same persistence
// operation that flips the verified flag.
func (s *Service) Check(m models.Member, token string) error {
	if m.Token == "" || m.Token != token {
		return ErrInvalidToken
	}

	if s.now().After(m.TokenExpiry) {
		return ErrTokenExpired
	}

	return nil
}
