package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dfcamargo/extracto-pipeline/constants"
	"github.com/dfcamargo/extracto-pipeline/internal/entity"
	"github.com/dfcamargo/extracto-pipeline/internal/event"
	"github.com/dfcamargo/extracto-pipeline/internal/repository"
	"github.com/dfcamargo/extracto-pipeline/internal/storage"
)

// UploadResult describes one local file pushed into the pipeline's keyspace.
type UploadResult struct {
	Notification event.Notification
	DocumentID   string
	Deduplicated bool
}

// Uploader pushes watched local files into the object store with the same
// metadata shape a real upload surface would attach. The document id is
// the content hash, so dropping the same file twice is naturally
// idempotent end to end.
type Uploader struct {
	Objects      storage.ObjectStore
	Docs         repository.DocumentRepository
	Logger       *slog.Logger
	Bucket       string
	KeyPrefix    string
	OwnerID      string
	DocumentType string
	HasPassword  bool
}

func (u *Uploader) Upload(ctx context.Context, path string) (UploadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read %s: %w", path, err)
	}

	sum := sha256.Sum256(data)
	documentID := hex.EncodeToString(sum[:])
	key := u.KeyPrefix + documentID + ".pdf"
	now := time.Now().UTC()

	meta := event.ObjectMetadata{
		OwnerID:      u.OwnerID,
		DocumentID:   documentID,
		DocumentType: u.DocumentType,
		HasPassword:  u.HasPassword,
		Filename:     filepath.Base(path),
	}
	if err := u.Objects.Put(ctx, u.Bucket, key, data, meta.ToAttrs()); err != nil {
		return UploadResult{}, fmt.Errorf("upload %s: %w", path, err)
	}

	created, err := u.Docs.Create(ctx, &entity.Document{
		OwnerID:      u.OwnerID,
		DocumentID:   documentID,
		Filename:     meta.Filename,
		DocumentType: u.DocumentType,
		HasPassword:  u.HasPassword,
		Status:       constants.StatusUploaded,
		SizeBytes:    int64(len(data)),
		UploadedAt:   now,
		UpdatedAt:    now,
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("register document %s: %w", documentID, err)
	}

	u.Logger.Info("file uploaded",
		"path", path, "document_id", documentID, "deduplicated", !created)
	return UploadResult{
		Notification: event.Notification{Bucket: u.Bucket, Key: key},
		DocumentID:   documentID,
		Deduplicated: !created,
	}, nil
}
