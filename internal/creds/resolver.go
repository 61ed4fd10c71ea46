package creds

import (
	"context"
	"log/slog"

	"github.com/dfcamargo/extracto-pipeline/internal/repository"
)

// Resolver looks up a previously stored decryption password for a
// (owner, document-type) pair. Pure lookup: absence is not an error, the
// caller decides whether a missing password matters.
type Resolver struct {
	creds  repository.CredentialRepository
	logger *slog.Logger
}

func NewResolver(creds repository.CredentialRepository, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{creds: creds, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, ownerID, documentType string) (string, bool, error) {
	password, found, err := r.creds.GetPassword(ctx, ownerID, documentType)
	if err != nil {
		return "", false, err
	}
	if !found {
		r.logger.Debug("no stored credential", "owner_id", ownerID, "document_type", documentType)
	}
	return password, found, nil
}
