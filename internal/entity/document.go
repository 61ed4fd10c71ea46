package entity

import (
	"time"

	"github.com/dfcamargo/extracto-pipeline/constants"
)

// Document represents one uploaded statement and its processing metadata
// for data transfer between layers. Identity is (OwnerID, DocumentID).
type Document struct {
	OwnerID               string                   `json:"owner_id"`
	DocumentID            string                   `json:"document_id"`
	Filename              string                   `json:"filename"`
	DocumentType          string                   `json:"document_type"`
	HasPassword           bool                     `json:"has_password"`
	Status                constants.DocumentStatus `json:"status"`
	SizeBytes             int64                    `json:"size_bytes"`
	UploadedAt            time.Time                `json:"uploaded_at"`
	ProcessingStartedAt   *time.Time               `json:"processing_started_at,omitempty"`
	CompletedAt           *time.Time               `json:"completed_at,omitempty"`
	FailedAt              *time.Time               `json:"failed_at,omitempty"`
	TransactionsExtracted *int                     `json:"transactions_extracted,omitempty"`
	ProcessingTimeMs      *int64                   `json:"processing_time_ms,omitempty"`
	ErrorType             *string                  `json:"error_type,omitempty"`
	ErrorMessage          *string                  `json:"error_message,omitempty"`
	UpdatedAt             time.Time                `json:"updated_at"`
}

// StatusComposite is the owner-scoped status key kept alongside the plain
// status so "all FAILED documents for owner X" is a single range query.
func (d *Document) StatusComposite() string {
	return d.OwnerID + "#" + string(d.Status)
}

// CanRetry reports whether an external re-trigger is allowed to re-enter
// the pipeline for this document.
func (d *Document) CanRetry() bool {
	return constants.CanRetry(d.Status)
}
