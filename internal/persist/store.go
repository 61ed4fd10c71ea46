package persist

import (
	"context"
	"log/slog"

	"github.com/dfcamargo/extracto-pipeline/internal/entity"
	"github.com/dfcamargo/extracto-pipeline/internal/repository"
)

// Result aggregates one batch write. Duplicates are previously-saved rows
// skipped by the insert precondition — replays land here, not in Errors.
type Result struct {
	Saved      int
	Duplicates int
	Errors     int
}

// Store writes parsed transactions with exactly-once effects under
// at-least-once invocation. Persistence is best-effort per item: a failed
// insert is counted and the batch continues.
type Store struct {
	txs    repository.TransactionRepository
	logger *slog.Logger
}

func NewStore(txs repository.TransactionRepository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{txs: txs, logger: logger}
}

func (s *Store) SaveAll(ctx context.Context, transactions []entity.Transaction) Result {
	var res Result
	for i := range transactions {
		tx := &transactions[i]
		inserted, err := s.txs.Insert(ctx, tx)
		switch {
		case err != nil:
			res.Errors++
			s.logger.Error("transaction insert failed",
				"owner_id", tx.OwnerID, "transaction_id", tx.TransactionID, "error", err)
		case inserted:
			res.Saved++
		default:
			res.Duplicates++
		}
	}
	s.logger.Info("batch persisted",
		"saved", res.Saved, "duplicates", res.Duplicates, "errors", res.Errors)
	return res
}
