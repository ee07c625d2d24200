package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/resumeforge/resumeforge/backend/go-services/internal/resume"
)

type memStore struct {
	objects map[string][]byte
	types   map[string]string
	expiry  time.Duration
	fail    error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) UploadFile(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.fail != nil {
		return m.fail
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(b)) != size {
		return errors.New("size mismatch")
	}
	m.objects[key] = b
	m.types[key] = contentType
	return nil
}

func (m *memStore) GetPresignedURL(_ context.Context, key string, expires time.Duration) (string, error) {
	m.expiry = expires
	return "https://minio.local/resume-snapshots/" + key + "?sig=x", nil
}

func TestSnapshotKey(t *testing.T) {
	at := time.Unix(1700000000, 42)
	require.Equal(t, "sessions/abc/1700000000000000042.json", SnapshotKey("abc", at))
}

func TestSnapshotPublisher(t *testing.T) {
	store := newMemStore()
	p := NewSnapshotPublisher(store, 0)
	p.now = func() time.Time { return time.Unix(10, 0) }

	doc := resume.Blank()
	doc.Name = "Ada"
	doc.Websites = []resume.Website{{ID: "w1", URL: "https://ada.dev"}}

	pub, err := p.Publish(context.Background(), "s1", doc)
	require.NoError(t, err)
	require.Equal(t, "sessions/s1/10000000000.json", pub.Key)
	require.Contains(t, pub.URL, pub.Key)
	require.Equal(t, 15*time.Minute, store.expiry)
	require.Equal(t, "application/json", store.types[pub.Key])

	var stored resume.Document
	require.NoError(t, json.Unmarshal(store.objects[pub.Key], &stored))
	require.True(t, doc.Equal(stored))
}

func TestSnapshotPublisherUploadError(t *testing.T) {
	store := newMemStore()
	store.fail = errors.New("bucket gone")
	p := NewSnapshotPublisher(store, time.Minute)
	_, err := p.Publish(context.Background(), "s1", resume.Blank())
	require.ErrorIs(t, err, store.fail)
}

func TestLoadMinIOConfig(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "")
	t.Setenv("MINIO_BUCKET", "")
	t.Setenv("MINIO_URL_EXPIRY_MINUTES", "5")
	cfg := LoadMinIOConfig()
	require.False(t, cfg.Enabled())
	require.Equal(t, "resume-snapshots", cfg.Bucket)
	require.Equal(t, 5*time.Minute, cfg.URLExpiry)

	_, err := NewMinIOStorage(cfg)
	require.Error(t, err)
}
