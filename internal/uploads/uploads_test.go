package uploads

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamshare/internal/models"
	"teamshare/internal/storage"
)

type fakeRecordStore struct {
	records map[int64]models.UploadRecord
	nextID  int64
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[int64]models.UploadRecord)}
}

func (f *fakeRecordStore) SaveUpload(ctx context.Context, name, message, file string) (int64, error) {
	f.nextID++
	f.records[f.nextID] = models.UploadRecord{
		ID: f.nextID, Name: name, Message: message, File: file,
	}
	return f.nextID, nil
}

func (f *fakeRecordStore) Upload(ctx context.Context, id int64) (models.UploadRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return models.UploadRecord{}, storage.ErrUploadNotFound
	}
	return rec, nil
}

func (f *fakeRecordStore) UploadByFile(ctx context.Context, file string) (models.UploadRecord, error) {
	for _, rec := range f.records {
		if rec.File == file {
			return rec, nil
		}
	}
	return models.UploadRecord{}, storage.ErrUploadNotFound
}

func (f *fakeRecordStore) SetReply(ctx context.Context, id int64, reply string) error {
	rec, ok := f.records[id]
	if !ok {
		return storage.ErrUploadNotFound
	}
	rec.Reply = reply
	f.records[id] = rec
	return nil
}

func (f *fakeRecordStore) Uploads(ctx context.Context) ([]models.UploadRecord, error) {
	out := make([]models.UploadRecord, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

type fakePublisher struct {
	events []models.Event
}

func (f *fakePublisher) Publish(ev models.Event) {
	f.events = append(f.events, ev)
}

func newTestService(t *testing.T) (*Service, *fakeRecordStore, *fakePublisher, string) {
	t.Helper()

	dir := t.TempDir()
	store := newFakeRecordStore()
	pub := &fakePublisher{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := New(log, dir, store, pub)
	require.NoError(t, err)

	return svc, store, pub, dir
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		mime string
		want bool
	}{
		{"png extension, any mime", ".png", "application/octet-stream", true},
		{"any extension, png mime", ".bin", "image/png", true},
		{"office document", ".docx", "", true},
		{"uppercase extension", ".PNG", "application/octet-stream", true},
		{"exe with octet-stream", ".exe", "application/octet-stream", false},
		{"no extension, no mime", "", "", false},
		{"script file", ".sh", "text/x-shellscript", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.ext, tt.mime))
		})
	}
}

func TestAcceptStoresFileAndRecord(t *testing.T) {
	svc, store, pub, dir := newTestService(t)
	ctx := context.Background()

	body := strings.NewReader("fake png bytes")

	rec, err := svc.Accept(ctx, body, "team-photo.png", "image/png", int64(body.Len()), "alice", "team shot")
	require.NoError(t, err)

	assert.NotEqual(t, "team-photo.png", rec.File, "stored name must be generated")
	assert.True(t, strings.HasSuffix(rec.File, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, rec.File))
	require.NoError(t, err)
	assert.Equal(t, "fake png bytes", string(data))

	stored, err := store.Upload(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Name)
	assert.Equal(t, "team shot", stored.Message)

	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EventUpload, pub.events[0].Type)
	assert.Equal(t, rec.ID, pub.events[0].UploadID)
	assert.Equal(t, rec.File, pub.events[0].File)
}

func TestAcceptRejectsUnsupportedType(t *testing.T) {
	svc, store, pub, _ := newTestService(t)

	_, err := svc.Accept(context.Background(),
		strings.NewReader("MZ"), "malware.exe", "application/octet-stream", 2, "alice", "")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	assert.Empty(t, store.records)
	assert.Empty(t, pub.events)
}

func TestAcceptRejectsTooLarge(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Accept(context.Background(),
		strings.NewReader(""), "big.png", "image/png", MaxSize+1, "alice", "")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestAcceptNeutralizesTraversal(t *testing.T) {
	svc, _, _, dir := newTestService(t)

	rec, err := svc.Accept(context.Background(),
		strings.NewReader("x"), "../../../etc/passwd.png", "image/png", 1, "mallory", "")
	require.NoError(t, err)

	assert.NotContains(t, rec.File, "..")
	assert.NotContains(t, rec.File, "/")

	// The file landed inside the upload dir and nowhere else.
	_, err = os.Stat(filepath.Join(dir, rec.File))
	assert.NoError(t, err)
}

func TestReply(t *testing.T) {
	svc, store, pub, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Accept(ctx, strings.NewReader("x"), "a.png", "image/png", 1, "alice", "")
	require.NoError(t, err)

	require.NoError(t, svc.Reply(ctx, rec.ID, "approved"))

	stored, err := store.Upload(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", stored.Reply)

	require.Len(t, pub.events, 2)
	assert.Equal(t, models.EventReply, pub.events[1].Type)

	assert.ErrorIs(t, svc.Reply(ctx, 9999, "ghost"), ErrNotFound)
}

func TestOpenOnlyServesRecordedFiles(t *testing.T) {
	svc, _, _, dir := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Accept(ctx, strings.NewReader("content"), "a.txt", "text/plain", 7, "alice", "")
	require.NoError(t, err)

	f, err := svc.Open(ctx, rec.File)
	require.NoError(t, err)
	f.Close()

	// A file on disk without a record does not resolve.
	loose := filepath.Join(dir, "loose.txt")
	require.NoError(t, os.WriteFile(loose, []byte("x"), 0o644))

	_, err = svc.Open(ctx, "loose.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}
