// Package uploads validates incoming files, stores them under generated
// names and records their metadata. A file is admitted when its lowercased
// extension is on the allow-list OR its declared MIME type is; the OR is
// deliberate (a permissive policy carried forward as-is, see DESIGN.md).
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	sl "teamshare/internal/lib/logger"
	"teamshare/internal/models"
	"teamshare/internal/storage"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrNotFound        = errors.New("upload not found")
)

// MaxSize is the upload cap, 50 MiB.
const MaxSize = 50 << 20

var allowedExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".pdf":  {},
	".zip":  {},
	".rar":  {},
	".doc":  {},
	".docx": {},
	".xls":  {},
	".xlsx": {},
	".ppt":  {},
	".pptx": {},
	".txt":  {},
}

var allowedMIMEs = map[string]struct{}{
	"image/jpeg":                   {},
	"image/png":                    {},
	"image/gif":                    {},
	"image/webp":                   {},
	"application/pdf":              {},
	"application/zip":              {},
	"application/x-zip-compressed": {},
	"application/x-rar-compressed": {},
	"application/msword":           {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.ms-powerpoint": {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"text/plain": {},
}

type RecordStore interface {
	SaveUpload(ctx context.Context, name, message, file string) (int64, error)
	Upload(ctx context.Context, id int64) (models.UploadRecord, error)
	UploadByFile(ctx context.Context, file string) (models.UploadRecord, error)
	SetReply(ctx context.Context, id int64, reply string) error
	Uploads(ctx context.Context) ([]models.UploadRecord, error)
}

type Publisher interface {
	Publish(ev models.Event)
}

type Service struct {
	log   *slog.Logger
	dir   string
	store RecordStore
	pub   Publisher
}

func New(log *slog.Logger, dir string, store RecordStore, pub Publisher) (*Service, error) {
	const op = "uploads.New"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Service{log: log, dir: dir, store: store, pub: pub}, nil
}

// Accept validates, stores and records one upload, then publishes an event
// for connected clients. The persisted record is authoritative; the event
// is not.
func (s *Service) Accept(
	ctx context.Context,
	r io.Reader,
	declaredName, declaredMIME string,
	size int64,
	owner, message string,
) (models.UploadRecord, error) {
	const op = "uploads.Accept"

	log := s.log.With(slog.String("op", op))

	if size > MaxSize {
		return models.UploadRecord{}, ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(declaredName))
	if !Allowed(ext, declaredMIME) {
		log.Info("rejected upload",
			slog.String("ext", ext), slog.String("mime", declaredMIME))
		return models.UploadRecord{}, ErrUnsupportedType
	}

	// The stored name is generated, never derived from the declared path,
	// so traversal via declaredName is impossible.
	stored := uuid.NewString() + safeExt(ext)
	dst := filepath.Join(s.dir, stored)

	f, err := os.Create(dst)
	if err != nil {
		return models.UploadRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	// The size header can lie; cap the copy as well.
	written, err := io.Copy(f, io.LimitReader(r, MaxSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return models.UploadRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	if written > MaxSize {
		os.Remove(dst)
		return models.UploadRecord{}, ErrTooLarge
	}

	id, err := s.store.SaveUpload(ctx, owner, message, stored)
	if err != nil {
		os.Remove(dst)
		log.Error("failed to record upload", sl.Err(err))
		return models.UploadRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	rec := models.UploadRecord{
		ID:      id,
		Name:    owner,
		Message: message,
		File:    stored,
	}

	log.Info("upload stored",
		slog.Int64("id", id), slog.String("file", stored))

	s.pub.Publish(models.Event{
		Type:     models.EventUpload,
		User:     owner,
		Text:     message,
		UploadID: id,
		File:     stored,
	})

	return rec, nil
}

// Reply attaches the admin's response to a record and notifies connected
// clients.
func (s *Service) Reply(ctx context.Context, id int64, reply string) error {
	const op = "uploads.Reply"

	if err := s.store.SetReply(ctx, id, reply); err != nil {
		if errors.Is(err, storage.ErrUploadNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.pub.Publish(models.Event{
		Type:     models.EventReply,
		Text:     reply,
		UploadID: id,
	})

	return nil
}

func (s *Service) List(ctx context.Context) ([]models.UploadRecord, error) {
	const op = "uploads.List"

	recs, err := s.store.Uploads(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return recs, nil
}

// Open serves a stored file for download. Only names the record store knows
// about resolve, which also rules out traversal via the request path.
func (s *Service) Open(ctx context.Context, name string) (*os.File, error) {
	const op = "uploads.Open"

	if _, err := s.store.UploadByFile(ctx, name); err != nil {
		if errors.Is(err, storage.ErrUploadNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.Open(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return f, nil
}

// Allowed reports whether the extension/MIME pair passes the allow-list.
// Either match admits the file.
func Allowed(ext, mime string) bool {
	if _, ok := allowedExts[strings.ToLower(ext)]; ok {
		return true
	}
	_, ok := allowedMIMEs[mime]
	return ok
}

func safeExt(ext string) string {
	if _, ok := allowedExts[ext]; ok {
		return ext
	}
	return ""
}
