// Package members implements the member account lifecycle: registration,
// email verification, resend, login and deletion. An account is Unverified
// from registration until a matching, unexpired token is redeemed, and it
// cannot log in before that.
package members

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"teamshare/internal/lib/link"
	sl "teamshare/internal/lib/logger"
	"teamshare/internal/lib/verification"
	"teamshare/internal/models"
	"teamshare/internal/storage"
)

var (
	ErrMemberExists       = errors.New("member already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account not verified")
	ErrDeliveryFailed     = errors.New("verification mail delivery failed")
	ErrInvalidToken       = verification.ErrInvalidToken
	ErrTokenExpired       = verification.ErrTokenExpired
)

// ResendStatus tells the handler which of the three resend outcomes
// happened. NoAccount and Sent must render identically to the client so the
// endpoint cannot be used to enumerate accounts.
type ResendStatus int

const (
	ResendSent ResendStatus = iota
	ResendAlreadyVerified
	ResendNoAccount
)

type MemberStore interface {
	SaveMember(m models.Member) error
	UpdateMember(m models.Member) error
	Member(email string) (models.Member, error)
	MemberByToken(token string) (models.Member, error)
	DeleteMember(email string) error
	Members() ([]models.Member, error)
}

type Mailer interface {
	Send(ctx context.Context, msg models.MailMessage) error
}

type Service struct {
	log     *slog.Logger
	store   MemberStore
	mailer  Mailer
	tokens  *verification.Service
	baseURL string
}

func New(
	log *slog.Logger,
	store MemberStore,
	mailer Mailer,
	tokens *verification.Service,
	baseURL string,
) *Service {
	return &Service{
		log:     log,
		store:   store,
		mailer:  mailer,
		tokens:  tokens,
		baseURL: baseURL,
	}
}

// Register creates an Unverified member and mails the verification link.
// The record is persisted before the mail is attempted: a transport failure
// returns ErrDeliveryFailed but keeps the registration, which Resend can
// recover later.
func (s *Service) Register(ctx context.Context, email, username, password, host string) error {
	const op = "members.Register"

	log := s.log.With(slog.String("op", op))

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	token, expiry, err := s.tokens.Issue()
	if err != nil {
		log.Error("failed to issue verification token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	m := models.Member{
		Username:    username,
		Email:       email,
		PassHash:    passHash,
		Verified:    false,
		Token:       token,
		TokenExpiry: expiry,
	}

	if err := s.store.SaveMember(m); err != nil {
		if errors.Is(err, storage.ErrMemberExists) {
			log.Warn("member already exists")
			return ErrMemberExists
		}

		log.Error("failed to save member", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("member registered", slog.String("email", email))

	if err := s.sendVerifyMail(ctx, email, token, host, "Account verification"); err != nil {
		log.Error("failed to send verification mail", sl.Err(err))
		return ErrDeliveryFailed
	}

	return nil
}

// Verify redeems token. Clearing the token and setting the verified flag go
// through one store update so validity and status can never disagree.
func (s *Service) Verify(ctx context.Context, token string) error {
	const op = "members.Verify"

	log := s.log.With(slog.String("op", op))

	m, err := s.store.MemberByToken(token)
	if err != nil {
		if errors.Is(err, storage.ErrMemberNotFound) {
			log.Warn("no member holds token")
			return ErrInvalidToken
		}

		log.Error("failed to look up token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.tokens.Check(m, token); err != nil {
		log.Warn("token rejected", sl.Err(err))
		return err
	}

	m.Verified = true
	m.Token = ""
	m.TokenExpiry = time.Time{}

	if err := s.store.UpdateMember(m); err != nil {
		log.Error("failed to mark member verified", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("member verified", slog.String("email", m.Email))

	return nil
}

// Resend regenerates the token and mails it again. Unknown emails report
// ResendNoAccount without error; already verified accounts get no mail.
func (s *Service) Resend(ctx context.Context, email, host string) (ResendStatus, error) {
	const op = "members.Resend"

	log := s.log.With(slog.String("op", op))

	m, err := s.store.Member(email)
	if err != nil {
		if errors.Is(err, storage.ErrMemberNotFound) {
			log.Info("resend for unknown email")
			return ResendNoAccount, nil
		}

		log.Error("failed to look up member", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if m.Verified {
		return ResendAlreadyVerified, nil
	}

	token, expiry, err := s.tokens.Issue()
	if err != nil {
		log.Error("failed to issue verification token", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	m.Token = token
	m.TokenExpiry = expiry

	if err := s.store.UpdateMember(m); err != nil {
		log.Error("failed to store fresh token", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sendVerifyMail(ctx, email, token, host, "Account verification (resent)"); err != nil {
		log.Error("failed to resend verification mail", sl.Err(err))
		return 0, ErrDeliveryFailed
	}

	log.Info("verification mail resent", slog.String("email", email))

	return ResendSent, nil
}

// Login checks credentials first and verification status second, so a wrong
// password never reveals whether the account is merely unverified. Unknown
// email and bad password collapse to the same error.
func (s *Service) Login(ctx context.Context, email, password string) (models.Member, error) {
	const op = "members.Login"

	log := s.log.With(slog.String("op", op))

	m, err := s.store.Member(email)
	if err != nil {
		if errors.Is(err, storage.ErrMemberNotFound) {
			log.Info("login for unknown email")
			return models.Member{}, ErrInvalidCredentials
		}

		log.Error("failed to look up member", sl.Err(err))
		return models.Member{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(m.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials")
		return models.Member{}, ErrInvalidCredentials
	}

	if !m.Verified {
		return models.Member{}, ErrNotVerified
	}

	log.Info("member logged in", slog.String("email", email))

	return m, nil
}

// Delete removes the record. Session revocation is the caller's job.
func (s *Service) Delete(ctx context.Context, email string) error {
	const op = "members.Delete"

	log := s.log.With(slog.String("op", op))

	if err := s.store.DeleteMember(email); err != nil {
		if errors.Is(err, storage.ErrMemberNotFound) {
			return storage.ErrMemberNotFound
		}

		log.Error("failed to delete member", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("member deleted", slog.String("email", email))

	return nil
}

func (s *Service) List(ctx context.Context) ([]models.Member, error) {
	const op = "members.List"

	ms, err := s.store.Members()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ms, nil
}

func (s *Service) sendVerifyMail(ctx context.Context, email, token, host, subject string) error {
	verifyURL := link.Verify(s.baseURL, host, token)

	return s.mailer.Send(ctx, models.MailMessage{
		To:      email,
		Subject: subject,
		HTMLBody: fmt.Sprintf(
			"<p>Please verify your account within 30 minutes using the link below:</p><p><a href=%q>%s</a></p>",
			verifyURL, verifyURL,
		),
	})
}
