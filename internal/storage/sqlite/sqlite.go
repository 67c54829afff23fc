// Package sqlite keeps upload records in a single table, created on first
// open. Records are inserted on upload and updated once when an admin
// attaches a reply; they are never deleted.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"teamshare/internal/models"
	"teamshare/internal/storage"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, path string) (*Store, error) {
	const op = "storage.sqlite.New"

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// The driver serializes access per connection; a single connection keeps
	// writer behavior predictable for this workload.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS uploads (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			name    TEXT,
			message TEXT,
			file    TEXT,
			reply   TEXT
		);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{db: db}, nil
}

func (s *Store) SaveUpload(ctx context.Context, name, message, file string) (int64, error) {
	const op = "storage.sqlite.SaveUpload"

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (name, message, file) VALUES (?, ?, ?)`,
		name, message, file,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Store) Upload(ctx context.Context, id int64) (models.UploadRecord, error) {
	const op = "storage.sqlite.Upload"

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, message, file, reply FROM uploads WHERE id = ?`, id,
	)

	rec, err := scanUpload(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UploadRecord{}, storage.ErrUploadNotFound
		}
		return models.UploadRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

// UploadByFile looks a record up by its stored file reference. Download
// handlers use this so only names the store knows about can be served.
func (s *Store) UploadByFile(ctx context.Context, file string) (models.UploadRecord, error) {
	const op = "storage.sqlite.UploadByFile"

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, message, file, reply FROM uploads WHERE file = ?`, file,
	)

	rec, err := scanUpload(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UploadRecord{}, storage.ErrUploadNotFound
		}
		return models.UploadRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

func (s *Store) SetReply(ctx context.Context, id int64, reply string) error {
	const op = "storage.sqlite.SetReply"

	res, err := s.db.ExecContext(ctx,
		`UPDATE uploads SET reply = ? WHERE id = ?`, reply, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return storage.ErrUploadNotFound
	}

	return nil
}

func (s *Store) Uploads(ctx context.Context) ([]models.UploadRecord, error) {
	const op = "storage.sqlite.Uploads"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, message, file, reply FROM uploads ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.UploadRecord
	for rows.Next() {
		rec, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(row scanner) (models.UploadRecord, error) {
	var (
		rec   models.UploadRecord
		reply sql.NullString
	)

	err := row.Scan(&rec.ID, &rec.Name, &rec.Message, &rec.File, &reply)
	if err != nil {
		return models.UploadRecord{}, err
	}

	rec.Reply = reply.String

	return rec, nil
}
