package status

import (
	"context"
	"log/slog"
	"time"

	"github.com/dfcamargo/extracto-pipeline/constants"
	"github.com/dfcamargo/extracto-pipeline/internal/repository"
)

// Tracker records pipeline progress on the document's status record.
// Every method is fire-and-forget: a tracker write that fails is logged
// and swallowed, because observability must never abort business
// processing.
type Tracker struct {
	docs   repository.DocumentRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewTracker(docs repository.DocumentRepository, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{docs: docs, logger: logger, now: time.Now}
}

// Advance moves the document to a non-terminal state. First entry to
// PROCESSING stamps processing_started_at; later re-entries keep the
// original stamp.
func (t *Tracker) Advance(ctx context.Context, ownerID, documentID string, s constants.DocumentStatus) {
	now := t.now().UTC()
	upd := repository.StatusUpdate{Status: s, UpdatedAt: now}
	if s == constants.StatusProcessing {
		upd.ProcessingStartedAt = &now
	}
	t.apply(ctx, ownerID, documentID, upd)
}

// MarkCompleted records terminal success with the extraction count and
// total processing duration.
func (t *Tracker) MarkCompleted(ctx context.Context, ownerID, documentID string, count int, elapsed time.Duration) {
	now := t.now().UTC()
	ms := elapsed.Milliseconds()
	t.apply(ctx, ownerID, documentID, repository.StatusUpdate{
		Status:                constants.StatusCompleted,
		UpdatedAt:             now,
		CompletedAt:           &now,
		TransactionsExtracted: &count,
		ProcessingTimeMs:      &ms,
	})
}

// MarkFailed records a retryable failure with its classification.
func (t *Tracker) MarkFailed(ctx context.Context, ownerID, documentID string, kind constants.FailureKind, message string) {
	t.markFailure(ctx, ownerID, documentID, constants.StatusFailed, kind, message)
}

// MarkPasswordError records a password failure; retryable once the user
// stores a correct password.
func (t *Tracker) MarkPasswordError(ctx context.Context, ownerID, documentID string, kind constants.FailureKind, message string) {
	t.markFailure(ctx, ownerID, documentID, constants.StatusPasswordError, kind, message)
}

func (t *Tracker) markFailure(ctx context.Context, ownerID, documentID string, s constants.DocumentStatus, kind constants.FailureKind, message string) {
	now := t.now().UTC()
	errType := string(kind)
	t.apply(ctx, ownerID, documentID, repository.StatusUpdate{
		Status:       s,
		UpdatedAt:    now,
		FailedAt:     &now,
		ErrorType:    &errType,
		ErrorMessage: &message,
	})
}

func (t *Tracker) apply(ctx context.Context, ownerID, documentID string, upd repository.StatusUpdate) {
	if err := t.docs.UpdateStatus(ctx, ownerID, documentID, upd); err != nil {
		t.logger.Error("status update failed",
			"owner_id", ownerID, "document_id", documentID,
			"status", upd.Status, "error", err)
		return
	}
	t.logger.Debug("status advanced",
		"owner_id", ownerID, "document_id", documentID, "status", upd.Status)
}
