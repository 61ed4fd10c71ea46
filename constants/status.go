package constants

// DocumentStatus is the canonical status for rows in documents.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	StatusUploaded       DocumentStatus = "UPLOADED"        // upload accepted, not yet picked up
	StatusProcessing     DocumentStatus = "PROCESSING"      // pipeline invocation started
	StatusDecrypting     DocumentStatus = "DECRYPTING"      // password present, decrypt tool running
	StatusExtractingText DocumentStatus = "EXTRACTING_TEXT" // text extraction tool running
	StatusParsing        DocumentStatus = "PARSING"         // line scanner running
	StatusCompleted      DocumentStatus = "COMPLETED"       // terminal success
	StatusFailed         DocumentStatus = "FAILED"          // retryable failure
	StatusPasswordError  DocumentStatus = "PASSWORD_ERROR"  // retryable once the user stores a correct password
)

// Terminal reports whether no further pipeline transition is allowed.
// FAILED and PASSWORD_ERROR are exits but not terminal: an external
// re-trigger may re-enter PROCESSING.
func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted
}

// CanRetry is derived purely from the status value; there is no separate
// retry flag in the record.
func CanRetry(s DocumentStatus) bool {
	return s == StatusFailed || s == StatusPasswordError
}

// FailureKind is the closed classification recorded as error_type.
type FailureKind string

const (
	FailPasswordIncorrect FailureKind = "PASSWORD_INCORRECT"
	FailPasswordMissing   FailureKind = "PASSWORD_MISSING"
	FailExtraction        FailureKind = "EXTRACTION_FAILED"
	FailParsing           FailureKind = "PARSING_FAILED"
	FailNoTransactions    FailureKind = "NO_TRANSACTIONS_FOUND"
	FailPersistence       FailureKind = "PERSISTENCE_ERROR"
	FailUnknown           FailureKind = "UNKNOWN"
)

// TransactionType marks the direction of a statement line-item.
type TransactionType string

const (
	TypeDebit  TransactionType = "DEBIT"
	TypeCredit TransactionType = "CREDIT"
)
