package parse

import (
	"bufio"
	"regexp"
	"strings"
	"time"

	"github.com/dfcamargo/extracto-pipeline/constants"
	"github.com/dfcamargo/extracto-pipeline/internal/entity"
)

// Context scopes a parse run to its source document.
type Context struct {
	OwnerID      string
	DocumentID   string
	DocumentType string
}

var (
	dateRe     = regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`)
	amountRe   = regexp.MustCompile(`\$\s?\d[\d.,]*`)
	authCodeRe = regexp.MustCompile(`^\s*(\d{6,})`)
)

// sectionStartMarkers toggle the scanner into the transaction region;
// sectionEndMarkers toggle it back out. Matching is case-insensitive
// substring, because statement headings are anything but consistent.
var sectionStartMarkers = []string{
	"movimientos",
	"transacciones",
	"transactions",
	"detalle de operaciones",
}

var sectionEndMarkers = []string{
	"total a pagar",
	"saldo total",
	"resumen del periodo",
	"pago minimo",
}

// creditKeywords flip a line-item from the default DEBIT to CREDIT.
// Small list, deliberately: line-items on these statements are expenses
// unless the description says otherwise.
var creditKeywords = []string{
	"pago",
	"abono",
	"reverso",
	"reversion",
	"devolucion",
	"payment",
	"credit",
	"reversal",
}

// Parse scans extracted statement text and returns the transactions found
// inside the movements section. It is a permissive line scanner, not a
// grammar: lines that don't look like transactions are skipped, and an
// empty result is a valid return. The error is reserved for scanner-level
// failures and is nil for any well-formed string input.
func Parse(text string, pctx Context) ([]entity.Transaction, error) {
	var out []entity.Transaction
	now := time.Now().UTC()

	inSection := false
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		lower := strings.ToLower(line)

		if !inSection {
			if containsAny(lower, sectionStartMarkers) {
				inSection = true
			}
			continue
		}
		if containsAny(lower, sectionEndMarkers) {
			inSection = false
			continue
		}

		tx, ok := parseLine(line, pctx, now)
		if !ok {
			continue
		}
		out = append(out, tx)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseLine extracts one transaction from a candidate line. A candidate
// must carry both a DD/MM/YYYY date and a currency token; anything else is
// a non-transactional line, not an error.
func parseLine(line string, pctx Context, now time.Time) (entity.Transaction, bool) {
	dateMatch := dateRe.FindString(line)
	if dateMatch == "" {
		return entity.Transaction{}, false
	}
	amountLoc := amountRe.FindStringIndex(line)
	if amountLoc == nil {
		return entity.Transaction{}, false
	}

	date, err := time.ParseInLocation("02/01/2006", dateMatch, time.UTC)
	if err != nil {
		return entity.Transaction{}, false
	}

	merchant, authCode := extractMerchant(line[:amountLoc[0]], dateMatch)
	if merchant == "" {
		return entity.Transaction{}, false
	}

	amount := NormalizeAmount(line[amountLoc[0]:amountLoc[1]])

	txType := constants.TypeDebit
	if containsAny(strings.ToLower(merchant), creditKeywords) {
		txType = constants.TypeCredit
	}

	tx := entity.Transaction{
		OwnerID:          pctx.OwnerID,
		Date:             date,
		Merchant:         merchant,
		Amount:           amount,
		Type:             txType,
		Category:         constants.Classify(merchant),
		AuthCode:         authCode,
		SourceDocumentID: pctx.DocumentID,
		RawLine:          line,
		CreatedAt:        now,
	}
	tx.TransactionID = identityHash(&tx)
	return tx, true
}

// extractMerchant strips the date substring and a leading numeric
// authorization code (first run of six or more digits) from the text that
// precedes the amount.
func extractMerchant(prefix, dateMatch string) (merchant, authCode string) {
	s := strings.Replace(prefix, dateMatch, "", 1)
	s = strings.TrimSpace(s)
	if m := authCodeRe.FindStringSubmatch(s); m != nil {
		authCode = m[1]
		s = strings.TrimSpace(s[len(m[0]):])
	}
	return strings.Trim(s, " \t-*"), authCode
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
