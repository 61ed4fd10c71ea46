package parse

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/dfcamargo/extracto-pipeline/internal/entity"
)

// identityHash derives the content-addressed transaction identity. The
// same logical line in the same document always hashes to the same value,
// which is what makes persistence idempotent across redeliveries. The
// separator is a pipe, which never survives field extraction.
func identityHash(t *entity.Transaction) string {
	parts := []string{
		t.OwnerID,
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Merchant,
		t.AuthCode,
		t.SourceDocumentID,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
