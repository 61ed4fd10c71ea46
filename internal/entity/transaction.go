package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dfcamargo/extracto-pipeline/constants"
)

// Transaction represents one parsed statement line-item for data transfer
// between layers. Identity is (OwnerID, TransactionID) where TransactionID
// is a content-derived hash, so re-parsing the same document yields the
// same identity no matter how many times it runs.
type Transaction struct {
	OwnerID          string                    `json:"owner_id"`
	TransactionID    string                    `json:"transaction_id"`
	Date             time.Time                 `json:"date"`
	Merchant         string                    `json:"merchant"`
	Amount           decimal.Decimal           `json:"amount"`
	Type             constants.TransactionType `json:"type"`
	Category         constants.Category        `json:"category"`
	AuthCode         string                    `json:"auth_code,omitempty"`
	SourceDocumentID string                    `json:"source_document_id"`
	RawLine          string                    `json:"raw_line"`
	CreatedAt        time.Time                 `json:"created_at"`
}

// SignedAmount applies the sign convention: debits negative, credits
// positive. Amount itself always carries the magnitude printed on the
// statement.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == constants.TypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
