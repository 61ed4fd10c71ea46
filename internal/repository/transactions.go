package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dfcamargo/extracto-pipeline/internal/entity"
)

type TransactionRepository interface {
	// Insert writes one transaction guarded by a must-not-exist precondition
	// on (owner_id, transaction_id). Returns false when the row already
	// existed, which is not an error.
	Insert(ctx context.Context, tx *entity.Transaction) (inserted bool, err error)
	// ListByOwner returns an owner's transactions, optionally windowed by
	// date, ordered by date.
	ListByOwner(ctx context.Context, ownerID string, from, to *time.Time) ([]*entity.Transaction, error)
}

type transactionRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewTransactionRepository(pool *pgxpool.Pool, logger *slog.Logger) TransactionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &transactionRepo{pool: pool, logger: logger}
}

func (r *transactionRepo) Insert(ctx context.Context, tx *entity.Transaction) (bool, error) {
	const q = `
		INSERT INTO transactions (
			owner_id, transaction_id, tx_date, merchant, amount, tx_type,
			category, auth_code, source_document_id, raw_line, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (owner_id, transaction_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, q,
		tx.OwnerID, tx.TransactionID, tx.Date, tx.Merchant, tx.Amount,
		tx.Type, tx.Category, tx.AuthCode, tx.SourceDocumentID, tx.RawLine,
		tx.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert transaction",
			"owner_id", tx.OwnerID, "transaction_id", tx.TransactionID, "error", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *transactionRepo) ListByOwner(ctx context.Context, ownerID string, from, to *time.Time) ([]*entity.Transaction, error) {
	q := `
		SELECT owner_id, transaction_id, tx_date, merchant, amount, tx_type,
		       category, auth_code, source_document_id, raw_line, created_at
		FROM transactions
		WHERE owner_id = $1`
	args := []any{ownerID}
	if from != nil {
		args = append(args, *from)
		q += ` AND tx_date >= $2`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			q += ` AND tx_date <= $3`
		} else {
			q += ` AND tx_date <= $2`
		}
	}
	q += ` ORDER BY tx_date`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list transactions", "owner_id", ownerID, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Transaction
	for rows.Next() {
		var t entity.Transaction
		if err := rows.Scan(
			&t.OwnerID, &t.TransactionID, &t.Date, &t.Merchant, &t.Amount,
			&t.Type, &t.Category, &t.AuthCode, &t.SourceDocumentID, &t.RawLine,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
