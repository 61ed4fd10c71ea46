package pipeline

import (
	"errors"
	"fmt"

	"github.com/dfcamargo/extracto-pipeline/constants"
	"github.com/dfcamargo/extracto-pipeline/internal/extract"
)

// Failure is a classified stage failure. It is recorded on the status
// record and then re-raised to the delivery boundary so the queue's
// redelivery/backoff applies.
type Failure struct {
	Kind    constants.FailureKind
	Message string
	Cause   error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

func newFailure(kind constants.FailureKind, message string, cause error) *Failure {
	return &Failure{Kind: kind, Message: message, Cause: cause}
}

// classify maps an arbitrary stage error onto the closed failure taxonomy.
func classify(err error) constants.FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	var xe *extract.Error
	if errors.As(err, &xe) {
		return xe.Kind
	}
	return constants.FailUnknown
}
