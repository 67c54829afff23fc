// Package admins handles administrator login, the idempotent seed admin and
// profile self-updates.
package admins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	sl "teamshare/internal/lib/logger"
	"teamshare/internal/models"
	"teamshare/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminExists        = errors.New("admin username already taken")
)

type AdminStore interface {
	SaveAdmin(a models.Admin) error
	Admin(username string) (models.Admin, error)
	UpdateAdmin(currentUsername string, a models.Admin) error
}

type Service struct {
	log   *slog.Logger
	store AdminStore
}

func New(log *slog.Logger, store AdminStore) *Service {
	return &Service{log: log, store: store}
}

// Seed guarantees one admin exists after startup. Creation is skipped when a
// record with the same username or email is already present, so restarting
// never duplicates or resets the account.
func (s *Service) Seed(ctx context.Context, username, email, password string) error {
	const op = "admins.Seed"

	log := s.log.With(slog.String("op", op))

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.store.SaveAdmin(models.Admin{
		Username: username,
		Email:    email,
		PassHash: passHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAdminExists) {
			return nil
		}

		log.Error("failed to seed admin", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("seed admin created", slog.String("username", username))

	return nil
}

// Login returns ErrInvalidCredentials for both unknown usernames and wrong
// passwords.
func (s *Service) Login(ctx context.Context, username, password string) (models.Admin, error) {
	const op = "admins.Login"

	log := s.log.With(slog.String("op", op))

	a, err := s.store.Admin(username)
	if err != nil {
		if errors.Is(err, storage.ErrAdminNotFound) {
			log.Info("login for unknown admin")
			return models.Admin{}, ErrInvalidCredentials
		}

		log.Error("failed to look up admin", sl.Err(err))
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(a.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials")
		return models.Admin{}, ErrInvalidCredentials
	}

	log.Info("admin logged in", slog.String("username", username))

	return a, nil
}

// UpdateProfile changes only the fields that are non-empty. Renaming to a
// taken username fails with ErrAdminExists. The updated record is returned
// so the caller can re-key the session after a rename.
func (s *Service) UpdateProfile(
	ctx context.Context,
	current string,
	username, email, newPassword string,
) (models.Admin, error) {
	const op = "admins.UpdateProfile"

	log := s.log.With(slog.String("op", op))

	a, err := s.store.Admin(current)
	if err != nil {
		if errors.Is(err, storage.ErrAdminNotFound) {
			return models.Admin{}, storage.ErrAdminNotFound
		}

		log.Error("failed to look up admin", sl.Err(err))
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	if username != "" {
		a.Username = username
	}
	if email != "" {
		a.Email = email
	}
	if newPassword != "" {
		passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return models.Admin{}, fmt.Errorf("%s: %w", op, err)
		}
		a.PassHash = passHash
	}

	if err := s.store.UpdateAdmin(current, a); err != nil {
		if errors.Is(err, storage.ErrAdminExists) {
			log.Warn("admin rename collision", slog.String("username", a.Username))
			return models.Admin{}, ErrAdminExists
		}

		log.Error("failed to update admin", sl.Err(err))
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin profile updated", slog.String("username", a.Username))

	return a, nil
}
