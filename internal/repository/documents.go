package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dfcamargo/extracto-pipeline/constants"
	"github.com/dfcamargo/extracto-pipeline/internal/entity"
)

// ErrDocumentNotFound is returned when no row matches (owner, document).
var ErrDocumentNotFound = errors.New("document not found")

// StatusUpdate is one partial update of a document's status record. Nil
// fields are left untouched; timestamp fields are only stamped when the
// column is still null, so retries never rewind history.
type StatusUpdate struct {
	Status                constants.DocumentStatus
	UpdatedAt             time.Time
	ProcessingStartedAt   *time.Time
	CompletedAt           *time.Time
	FailedAt              *time.Time
	TransactionsExtracted *int
	ProcessingTimeMs      *int64
	ErrorType             *string
	ErrorMessage          *string
}

type DocumentRepository interface {
	Get(ctx context.Context, ownerID, documentID string) (*entity.Document, error)
	Create(ctx context.Context, doc *entity.Document) (created bool, err error)
	UpdateStatus(ctx context.Context, ownerID, documentID string, upd StatusUpdate) error
}

type documentRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{pool: pool, logger: logger}
}

func (r *documentRepo) Get(ctx context.Context, ownerID, documentID string) (*entity.Document, error) {
	const q = `
		SELECT owner_id, document_id, filename, document_type, has_password,
		       status, size_bytes, uploaded_at, processing_started_at,
		       completed_at, failed_at, transactions_extracted,
		       processing_time_ms, error_type, error_message, updated_at
		FROM documents
		WHERE owner_id = $1 AND document_id = $2`

	var d entity.Document
	err := r.pool.QueryRow(ctx, q, ownerID, documentID).Scan(
		&d.OwnerID, &d.DocumentID, &d.Filename, &d.DocumentType, &d.HasPassword,
		&d.Status, &d.SizeBytes, &d.UploadedAt, &d.ProcessingStartedAt,
		&d.CompletedAt, &d.FailedAt, &d.TransactionsExtracted,
		&d.ProcessingTimeMs, &d.ErrorType, &d.ErrorMessage, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		r.logger.Error("failed to get document", "owner_id", ownerID, "document_id", documentID, "error", err)
		return nil, err
	}
	return &d, nil
}

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) (bool, error) {
	const q = `
		INSERT INTO documents (
			owner_id, document_id, filename, document_type, has_password,
			status, status_composite, size_bytes, uploaded_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (owner_id, document_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, q,
		doc.OwnerID, doc.DocumentID, doc.Filename, doc.DocumentType, doc.HasPassword,
		doc.Status, doc.StatusComposite(), doc.SizeBytes, doc.UploadedAt, doc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create document", "owner_id", doc.OwnerID, "document_id", doc.DocumentID, "error", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateStatus performs the partial update. The WHERE clause refuses to
// touch COMPLETED rows: completion is terminal and a late or duplicate
// invocation must not rewrite it.
func (r *documentRepo) UpdateStatus(ctx context.Context, ownerID, documentID string, upd StatusUpdate) error {
	const q = `
		UPDATE documents SET
			status                 = $3,
			status_composite       = $1 || '#' || $3,
			updated_at             = $4,
			processing_started_at  = COALESCE(processing_started_at, $5),
			completed_at           = COALESCE(completed_at, $6),
			failed_at              = COALESCE(failed_at, $7),
			transactions_extracted = COALESCE($8, transactions_extracted),
			processing_time_ms     = COALESCE($9, processing_time_ms),
			error_type             = COALESCE($10, error_type),
			error_message          = COALESCE($11, error_message)
		WHERE owner_id = $1 AND document_id = $2 AND status <> 'COMPLETED'`

	tag, err := r.pool.Exec(ctx, q,
		ownerID, documentID, upd.Status, upd.UpdatedAt,
		upd.ProcessingStartedAt, upd.CompletedAt, upd.FailedAt,
		upd.TransactionsExtracted, upd.ProcessingTimeMs,
		upd.ErrorType, upd.ErrorMessage,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
