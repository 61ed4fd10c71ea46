package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfcamargo/extracto-pipeline/constants"
	"github.com/dfcamargo/extracto-pipeline/internal/entity"
	"github.com/dfcamargo/extracto-pipeline/internal/event"
	"github.com/dfcamargo/extracto-pipeline/internal/repository"
	"github.com/dfcamargo/extracto-pipeline/internal/storage"
)

// memDocs mimics the insert-if-absent contract of the SQL repository.
type memDocs struct {
	rows map[string]entity.Document
}

func (m *memDocs) Get(context.Context, string, string) (*entity.Document, error) {
	return nil, repository.ErrDocumentNotFound
}

func (m *memDocs) Create(_ context.Context, doc *entity.Document) (bool, error) {
	key := doc.OwnerID + "#" + doc.DocumentID
	if _, ok := m.rows[key]; ok {
		return false, nil
	}
	m.rows[key] = *doc
	return true, nil
}

func (m *memDocs) UpdateStatus(context.Context, string, string, repository.StatusUpdate) error {
	return nil
}

func writeTempPDF(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func newTestUploader(docs *memDocs, objects storage.ObjectStore) *Uploader {
	return &Uploader{
		Objects:      objects,
		Docs:         docs,
		Logger:       slog.Default(),
		Bucket:       "statements",
		KeyPrefix:    "uploads/",
		OwnerID:      "user-1",
		DocumentType: "default",
	}
}

func TestUpload(t *testing.T) {
	docs := &memDocs{rows: make(map[string]entity.Document)}
	objects := storage.NewMemoryStore()
	u := newTestUploader(docs, objects)

	path := writeTempPDF(t, "enero.pdf", []byte("%PDF statement bytes"))
	res, err := u.Upload(context.Background(), path)
	require.NoError(t, err)

	assert.False(t, res.Deduplicated)
	assert.Equal(t, "statements", res.Notification.Bucket)
	assert.Equal(t, "uploads/"+res.DocumentID+".pdf", res.Notification.Key)

	obj, err := objects.Fetch(context.Background(), res.Notification.Bucket, res.Notification.Key)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF statement bytes"), obj.Bytes)

	meta, err := event.ParseMetadata(obj.Metadata)
	require.NoError(t, err)
	assert.Equal(t, "user-1", meta.OwnerID)
	assert.Equal(t, res.DocumentID, meta.DocumentID)
	assert.Equal(t, "enero.pdf", meta.Filename)

	doc := docs.rows["user-1#"+res.DocumentID]
	assert.Equal(t, constants.StatusUploaded, doc.Status)
	assert.Equal(t, int64(len("%PDF statement bytes")), doc.SizeBytes)
}

func TestUpload_SameContentDeduplicates(t *testing.T) {
	docs := &memDocs{rows: make(map[string]entity.Document)}
	u := newTestUploader(docs, storage.NewMemoryStore())

	// Same bytes under two filenames hash to the same document.
	first, err := u.Upload(context.Background(), writeTempPDF(t, "a.pdf", []byte("same bytes")))
	require.NoError(t, err)
	second, err := u.Upload(context.Background(), writeTempPDF(t, "b.pdf", []byte("same bytes")))
	require.NoError(t, err)

	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.False(t, first.Deduplicated)
	assert.True(t, second.Deduplicated)
	assert.Len(t, docs.rows, 1)
}

func TestUpload_DistinctContentDistinctDocuments(t *testing.T) {
	docs := &memDocs{rows: make(map[string]entity.Document)}
	u := newTestUploader(docs, storage.NewMemoryStore())

	first, err := u.Upload(context.Background(), writeTempPDF(t, "a.pdf", []byte("january")))
	require.NoError(t, err)
	second, err := u.Upload(context.Background(), writeTempPDF(t, "b.pdf", []byte("february")))
	require.NoError(t, err)

	assert.NotEqual(t, first.DocumentID, second.DocumentID)
	assert.Len(t, docs.rows, 2)
}

func TestUpload_MissingFile(t *testing.T) {
	u := newTestUploader(&memDocs{rows: make(map[string]entity.Document)}, storage.NewMemoryStore())
	_, err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
}
