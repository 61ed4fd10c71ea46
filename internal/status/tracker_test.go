package status

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfcamargo/extracto-pipeline/constants"
	"github.com/dfcamargo/extracto-pipeline/internal/entity"
	"github.com/dfcamargo/extracto-pipeline/internal/repository"
)

type fakeDocs struct {
	updates []repository.StatusUpdate
	err     error
}

func (f *fakeDocs) Get(context.Context, string, string) (*entity.Document, error) {
	return nil, repository.ErrDocumentNotFound
}

func (f *fakeDocs) Create(context.Context, *entity.Document) (bool, error) {
	return false, nil
}

func (f *fakeDocs) UpdateStatus(_ context.Context, _, _ string, upd repository.StatusUpdate) error {
	f.updates = append(f.updates, upd)
	return f.err
}

func newTestTracker(docs repository.DocumentRepository, at time.Time) *Tracker {
	tr := NewTracker(docs, slog.Default())
	tr.now = func() time.Time { return at }
	return tr
}

func TestTracker_Advance(t *testing.T) {
	at := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	docs := &fakeDocs{}
	tr := newTestTracker(docs, at)

	tr.Advance(context.Background(), "u1", "d1", constants.StatusParsing)

	require.Len(t, docs.updates, 1)
	upd := docs.updates[0]
	assert.Equal(t, constants.StatusParsing, upd.Status)
	assert.Equal(t, at, upd.UpdatedAt)
	assert.Nil(t, upd.ProcessingStartedAt)
	assert.Nil(t, upd.CompletedAt)
	assert.Nil(t, upd.FailedAt)
}

func TestTracker_AdvanceToProcessingStampsStart(t *testing.T) {
	at := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	docs := &fakeDocs{}
	tr := newTestTracker(docs, at)

	tr.Advance(context.Background(), "u1", "d1", constants.StatusProcessing)

	require.Len(t, docs.updates, 1)
	require.NotNil(t, docs.updates[0].ProcessingStartedAt)
	assert.Equal(t, at, *docs.updates[0].ProcessingStartedAt)
}

func TestTracker_MarkCompleted(t *testing.T) {
	at := time.Date(2025, 1, 15, 10, 31, 0, 0, time.UTC)
	docs := &fakeDocs{}
	tr := newTestTracker(docs, at)

	tr.MarkCompleted(context.Background(), "u1", "d1", 12, 2500*time.Millisecond)

	require.Len(t, docs.updates, 1)
	upd := docs.updates[0]
	assert.Equal(t, constants.StatusCompleted, upd.Status)
	require.NotNil(t, upd.CompletedAt)
	assert.Equal(t, at, *upd.CompletedAt)
	require.NotNil(t, upd.TransactionsExtracted)
	assert.Equal(t, 12, *upd.TransactionsExtracted)
	require.NotNil(t, upd.ProcessingTimeMs)
	assert.Equal(t, int64(2500), *upd.ProcessingTimeMs)
}

func TestTracker_MarkFailed(t *testing.T) {
	docs := &fakeDocs{}
	tr := newTestTracker(docs, time.Now().UTC())

	tr.MarkFailed(context.Background(), "u1", "d1", constants.FailParsing, "scanner error")

	require.Len(t, docs.updates, 1)
	upd := docs.updates[0]
	assert.Equal(t, constants.StatusFailed, upd.Status)
	require.NotNil(t, upd.FailedAt)
	require.NotNil(t, upd.ErrorType)
	assert.Equal(t, string(constants.FailParsing), *upd.ErrorType)
	require.NotNil(t, upd.ErrorMessage)
	assert.Equal(t, "scanner error", *upd.ErrorMessage)
}

func TestTracker_MarkPasswordError(t *testing.T) {
	docs := &fakeDocs{}
	tr := newTestTracker(docs, time.Now().UTC())

	tr.MarkPasswordError(context.Background(), "u1", "d1", constants.FailPasswordMissing, "no stored credential")

	require.Len(t, docs.updates, 1)
	upd := docs.updates[0]
	assert.Equal(t, constants.StatusPasswordError, upd.Status)
	require.NotNil(t, upd.ErrorType)
	assert.Equal(t, string(constants.FailPasswordMissing), *upd.ErrorType)
}

// guardedDocs mirrors the SQL repository's update precondition: a row that
// reached a terminal status rejects every further write.
type guardedDocs struct {
	status constants.DocumentStatus
}

func (g *guardedDocs) Get(context.Context, string, string) (*entity.Document, error) {
	return nil, repository.ErrDocumentNotFound
}

func (g *guardedDocs) Create(context.Context, *entity.Document) (bool, error) {
	return false, nil
}

func (g *guardedDocs) UpdateStatus(_ context.Context, _, _ string, upd repository.StatusUpdate) error {
	if g.status.Terminal() {
		return repository.ErrDocumentNotFound
	}
	g.status = upd.Status
	return nil
}

func TestTracker_CompletedIsTerminal(t *testing.T) {
	docs := &guardedDocs{status: constants.StatusUploaded}
	tr := newTestTracker(docs, time.Now().UTC())
	ctx := context.Background()

	tr.Advance(ctx, "u1", "d1", constants.StatusProcessing)
	tr.MarkCompleted(ctx, "u1", "d1", 3, time.Second)
	require.Equal(t, constants.StatusCompleted, docs.status)

	// A late redelivery must not move the record off COMPLETED.
	tr.Advance(ctx, "u1", "d1", constants.StatusProcessing)
	tr.MarkFailed(ctx, "u1", "d1", constants.FailUnknown, "late delivery")
	tr.MarkPasswordError(ctx, "u1", "d1", constants.FailPasswordMissing, "late delivery")
	assert.Equal(t, constants.StatusCompleted, docs.status)
}

func TestTracker_SwallowsRepositoryErrors(t *testing.T) {
	docs := &fakeDocs{err: errors.New("connection refused")}
	tr := newTestTracker(docs, time.Now().UTC())

	// None of these may panic or surface the error.
	tr.Advance(context.Background(), "u1", "d1", constants.StatusProcessing)
	tr.MarkCompleted(context.Background(), "u1", "d1", 1, time.Second)
	tr.MarkFailed(context.Background(), "u1", "d1", constants.FailUnknown, "boom")

	assert.Len(t, docs.updates, 3)
}
