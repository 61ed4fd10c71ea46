package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dfcamargo/extracto-pipeline/constants"
	"github.com/dfcamargo/extracto-pipeline/internal/entity"
	"github.com/dfcamargo/extracto-pipeline/internal/event"
	"github.com/dfcamargo/extracto-pipeline/internal/extract"
	"github.com/dfcamargo/extracto-pipeline/internal/parse"
	"github.com/dfcamargo/extracto-pipeline/internal/persist"
	"github.com/dfcamargo/extracto-pipeline/internal/status"
	"github.com/dfcamargo/extracto-pipeline/internal/storage"
)

// CredentialResolver is the password lookup the processor depends on.
type CredentialResolver interface {
	Resolve(ctx context.Context, ownerID, documentType string) (password string, found bool, err error)
}

// TextExtractor is the decrypt-then-extract engine seam.
type TextExtractor interface {
	Extract(ctx context.Context, pdf []byte, password string) (string, error)
}

// TransactionSaver is the idempotent persistence seam.
type TransactionSaver interface {
	SaveAll(ctx context.Context, transactions []entity.Transaction) persist.Result
}

// Processor runs one document through the pipeline: fetch, resolve
// credentials, decrypt+extract, parse, persist, and track status along the
// way. One invocation per queue delivery; stages are strictly sequential.
type Processor struct {
	Logger    *slog.Logger
	Objects   storage.ObjectStore
	Tracker   *status.Tracker
	Creds     CredentialResolver
	Extractor TextExtractor
	Saver     TransactionSaver
	KeyPrefix string
}

// Process handles one storage notification. The returned error, when
// non-nil, is the signal for the caller's redelivery/backoff mechanism;
// everything user-visible lands on the status record first.
func (p *Processor) Process(ctx context.Context, n event.Notification) error {
	if !n.MatchesPrefix(p.KeyPrefix) {
		p.Logger.Debug("ignoring key outside prefix", "bucket", n.Bucket, "key", n.Key)
		return nil
	}

	obj, err := p.Objects.Fetch(ctx, n.Bucket, n.Key)
	if err != nil {
		// No metadata yet, so no status record to write to. Redeliver.
		return newFailure(constants.FailUnknown, "fetch object", err)
	}

	meta, err := event.ParseMetadata(obj.Metadata)
	if err != nil {
		// Untaggable upload: there is no document identity to track, and
		// redelivery cannot fix the metadata. Drop it loudly.
		p.Logger.Error("unprocessable object metadata", "bucket", n.Bucket, "key", n.Key, "error", err)
		return nil
	}

	log := p.Logger.With("owner_id", meta.OwnerID, "document_id", meta.DocumentID)
	start := time.Now()

	p.Tracker.Advance(ctx, meta.OwnerID, meta.DocumentID, constants.StatusProcessing)

	password, err := p.resolvePassword(ctx, meta)
	if err != nil {
		return p.fail(ctx, log, meta, err)
	}

	if password != "" {
		p.Tracker.Advance(ctx, meta.OwnerID, meta.DocumentID, constants.StatusDecrypting)
	} else {
		p.Tracker.Advance(ctx, meta.OwnerID, meta.DocumentID, constants.StatusExtractingText)
	}

	text, err := p.Extractor.Extract(ctx, obj.Bytes, password)
	if err != nil {
		return p.fail(ctx, log, meta, err)
	}

	p.Tracker.Advance(ctx, meta.OwnerID, meta.DocumentID, constants.StatusParsing)

	transactions, err := parse.Parse(text, parse.Context{
		OwnerID:      meta.OwnerID,
		DocumentID:   meta.DocumentID,
		DocumentType: meta.DocumentType,
	})
	if err != nil {
		return p.fail(ctx, log, meta, newFailure(constants.FailParsing, "parser failed", err))
	}
	if len(transactions) == 0 {
		// Business outcome, not an infrastructure failure: re-running an
		// unchanged document deterministically finds nothing again, so the
		// failure is recorded but not re-raised for redelivery.
		p.Tracker.MarkFailed(ctx, meta.OwnerID, meta.DocumentID,
			constants.FailNoTransactions, "no transactions found in document")
		log.Warn("no transactions found", "text_bytes", len(text))
		return nil
	}

	res := p.Saver.SaveAll(ctx, transactions)
	if res.Errors > 0 {
		// Rows that did land are counted as duplicates on the replay, so
		// re-raising only tops up the missing ones.
		return p.fail(ctx, log, meta, newFailure(constants.FailPersistence,
			fmt.Sprintf("%d of %d transactions could not be written", res.Errors, len(transactions)), nil))
	}

	elapsed := time.Since(start)
	p.Tracker.MarkCompleted(ctx, meta.OwnerID, meta.DocumentID, res.Saved+res.Duplicates, elapsed)
	log.Info("document processed",
		"saved", res.Saved,
		"duplicates", res.Duplicates,
		"errors", res.Errors,
		"duration_ms", elapsed.Milliseconds(),
	)
	return nil
}

// resolvePassword looks up the stored credential when the document is
// flagged encrypted. A missing credential is only fatal for encrypted
// documents; unencrypted ones never get here.
func (p *Processor) resolvePassword(ctx context.Context, meta event.ObjectMetadata) (string, error) {
	if !meta.HasPassword {
		return "", nil
	}
	password, found, err := p.Creds.Resolve(ctx, meta.OwnerID, meta.DocumentType)
	if err != nil {
		return "", newFailure(constants.FailUnknown, "credential lookup", err)
	}
	if !found {
		return "", newFailure(constants.FailPasswordMissing, "document is encrypted but no password is stored", nil)
	}
	return password, nil
}

// fail records the classified failure on the status record, then re-raises
// the error so the delivery boundary can apply backoff.
func (p *Processor) fail(ctx context.Context, log *slog.Logger, meta event.ObjectMetadata, err error) error {
	kind := classify(err)
	msg := err.Error()
	var xe *extract.Error
	if errors.As(err, &xe) {
		msg = xe.Message
	}

	switch kind {
	case constants.FailPasswordIncorrect, constants.FailPasswordMissing:
		p.Tracker.MarkPasswordError(ctx, meta.OwnerID, meta.DocumentID, kind, msg)
	default:
		p.Tracker.MarkFailed(ctx, meta.OwnerID, meta.DocumentID, kind, msg)
	}

	log.Error("document processing failed", "kind", kind, "error", err)
	return err
}
