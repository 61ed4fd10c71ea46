package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CredentialRepository is read-only from the pipeline's point of view:
// passwords are written by the upload surface, never here.
type CredentialRepository interface {
	GetPassword(ctx context.Context, ownerID, documentType string) (password string, found bool, err error)
}

type credentialRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewCredentialRepository(pool *pgxpool.Pool, logger *slog.Logger) CredentialRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &credentialRepo{pool: pool, logger: logger}
}

func (r *credentialRepo) GetPassword(ctx context.Context, ownerID, documentType string) (string, bool, error) {
	const q = `SELECT password FROM credentials WHERE owner_id = $1 AND document_type = $2`

	var password string
	err := r.pool.QueryRow(ctx, q, ownerID, documentType).Scan(&password)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("failed to look up credential", "owner_id", ownerID, "document_type", documentType, "error", err)
		return "", false, err
	}
	return password, true, nil
}
