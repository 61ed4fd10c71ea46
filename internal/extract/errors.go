package extract

import (
	"fmt"
	"strings"

	"github.com/dfcamargo/extracto-pipeline/constants"
)

// Error is a typed extraction failure. Kind distinguishes a wrong or
// unusable password from everything else, since the two route to different
// document statuses.
type Error struct {
	Kind    constants.FailureKind
	Message string
	Stderr  string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// passwordDiagnostics are the substrings qpdf prints when decryption fails
// because of the password rather than a broken file. Matching tool wording
// is fragile, but it is the only signal the tool exposes.
var passwordDiagnostics = []string{
	"invalid password",
	"incorrect password",
	"password",
}

func looksLikePasswordFailure(stderr string) bool {
	s := strings.ToLower(stderr)
	for _, d := range passwordDiagnostics {
		if strings.Contains(s, d) {
			return true
		}
	}
	return false
}
