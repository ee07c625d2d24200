package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/resumeforge/resumeforge/backend/go-services/internal/resume"
)

// Published describes an uploaded snapshot.
type Published struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Publisher exports a read-only copy of a session's current document.
type Publisher interface {
	Publish(ctx context.Context, sessionID string, doc resume.Document) (*Published, error)
}

// ObjectStore is the subset of MinIOStorage the publisher needs.
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// SnapshotPublisher writes snapshots as indented JSON objects.
type SnapshotPublisher struct {
	store  ObjectStore
	expiry time.Duration
	now    func() time.Time
}

func NewSnapshotPublisher(store ObjectStore, expiry time.Duration) *SnapshotPublisher {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &SnapshotPublisher{store: store, expiry: expiry, now: time.Now}
}

// SnapshotKey is the object key of a snapshot taken at t.
func SnapshotKey(sessionID string, t time.Time) string {
	return fmt.Sprintf("sessions/%s/%d.json", sessionID, t.UnixNano())
}

// EncodeSnapshot renders doc the way it is stored.
func EncodeSnapshot(doc resume.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

func (p *SnapshotPublisher) Publish(ctx context.Context, sessionID string, doc resume.Document) (*Published, error) {
	body, err := EncodeSnapshot(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	key := SnapshotKey(sessionID, p.now())
	if err := p.store.UploadFile(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}
	u, err := p.store.GetPresignedURL(ctx, key, p.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign snapshot: %w", err)
	}
	return &Published{Key: key, URL: u}, nil
}
