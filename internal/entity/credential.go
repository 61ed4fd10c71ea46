package entity

import "time"

// Credential is a stored decryption password scoped to (OwnerID,
// DocumentType). At most one row per pair; last write wins. The pipeline
// only ever reads these.
type Credential struct {
	OwnerID      string    `json:"owner_id"`
	DocumentType string    `json:"document_type"`
	Password     string    `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}
