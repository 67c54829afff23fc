// Package jsonfile persists members and admins as whole JSON collections.
// Every mutation is a read-modify-write of the full file, serialized behind
// one mutex, and the file is replaced with write-to-temp-then-rename so a
// crash never leaves a half-written collection behind.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"teamshare/internal/models"
	"teamshare/internal/storage"
)

type Store struct {
	mu          sync.Mutex
	membersPath string
	adminsPath  string
}

func New(membersPath, adminsPath string) (*Store, error) {
	const op = "storage.jsonfile.New"

	s := &Store{membersPath: membersPath, adminsPath: adminsPath}

	for _, p := range []string{membersPath, adminsPath} {
		if err := ensureFile(p); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return s, nil
}

func ensureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return writeFileAtomic(path, []byte("[]"))
}

// writeFileAtomic replaces path via a temp file in the same directory so the
// rename stays on one filesystem.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func load[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func save[T any](path string, records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	return writeFileAtomic(path, data)
}

// SaveMember inserts a new member. The duplicate check and the write happen
// under the store lock, so of two concurrent registrations with the same
// email exactly one wins.
func (s *Store) SaveMember(m models.Member) error {
	const op = "storage.jsonfile.SaveMember"

	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := load[models.Member](s.membersPath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, existing := range members {
		if existing.Email == m.Email {
			return storage.ErrMemberExists
		}
	}

	members = append(members, m)

	if err := save(s.membersPath, members); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateMember replaces the record matching m.Email.
func (s *Store) UpdateMember(m models.Member) error {
	const op = "storage.jsonfile.UpdateMember"

	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := load[models.Member](s.membersPath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for i, existing := range members {
		if existing.Email == m.Email {
			members[i] = m
			if err := save(s.membersPath, members); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			return nil
		}
	}

	return storage.ErrMemberNotFound
}

func (s *Store) Member(email string) (models.Member, error) {
	const op = "storage.jsonfile.Member"

	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := load[models.Member](s.membersPath)
	if err != nil {
		return models.Member{}, fmt.Errorf("%s: %w", op, err)
	}

	for _, m := range members {
		if m.Email == email {
			return m, nil
		}
	}

	return models.Member{}, storage.ErrMemberNotFound
}

// MemberByToken finds the member currently holding token. Redeemed tokens
// are cleared on the record, so a second lookup with the same value misses.
func (s *Store) MemberByToken(token string) (models.Member, error) {
	const op = "storage.jsonfile.MemberByToken"

	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := load[models.Member](s.membersPath)
	if err != nil {
		return models.Member{}, fmt.Errorf("%s: %w", op, err)
	}

	for _, m := range members {
		if m.Token != "" && m.Token == token {
			return m, nil
		}
	}

	return models.Member{}, storage.ErrMemberNotFound
}

func (s *Store) DeleteMember(email string) error {
	const op = "storage.jsonfile.DeleteMember"

	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := load[models.Member](s.membersPath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	kept := members[:0]
	for _, m := range members {
		if m.Email != email {
			kept = append(kept, m)
		}
	}

	if len(kept) == len(members) {
		return storage.ErrMemberNotFound
	}

	if err := save(s.membersPath, kept); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Members() ([]models.Member, error) {
	const op = "storage.jsonfile.Members"

	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := load[models.Member](s.membersPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return members, nil
}

// SaveAdmin inserts a new admin, rejecting duplicate usernames and emails.
func (s *Store) SaveAdmin(a models.Admin) error {
	const op = "storage.jsonfile.SaveAdmin"

	s.mu.Lock()
	defer s.mu.Unlock()

	admins, err := load[models.Admin](s.adminsPath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, existing := range admins {
		if existing.Username == a.Username || existing.Email == a.Email {
			return storage.ErrAdminExists
		}
	}

	admins = append(admins, a)

	if err := save(s.adminsPath, admins); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Admin(username string) (models.Admin, error) {
	const op = "storage.jsonfile.Admin"

	s.mu.Lock()
	defer s.mu.Unlock()

	admins, err := load[models.Admin](s.adminsPath)
	if err != nil {
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	for _, a := range admins {
		if a.Username == username {
			return a, nil
		}
	}

	return models.Admin{}, storage.ErrAdminNotFound
}

// UpdateAdmin replaces the record identified by currentUsername, which may
// differ from a.Username when the admin renames their account. A rename to
// a taken username fails with ErrAdminExists.
func (s *Store) UpdateAdmin(currentUsername string, a models.Admin) error {
	const op = "storage.jsonfile.UpdateAdmin"

	s.mu.Lock()
	defer s.mu.Unlock()

	admins, err := load[models.Admin](s.adminsPath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	idx := -1
	for i, existing := range admins {
		if existing.Username == currentUsername {
			idx = i
			continue
		}
		if existing.Username == a.Username {
			return storage.ErrAdminExists
		}
	}

	if idx < 0 {
		return storage.ErrAdminNotFound
	}

	admins[idx] = a

	if err := save(s.adminsPath, admins); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
