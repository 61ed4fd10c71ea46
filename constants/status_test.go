package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())

	// Failure exits allow an external re-trigger, so they are not terminal.
	for _, s := range []DocumentStatus{
		StatusUploaded, StatusProcessing, StatusDecrypting,
		StatusExtractingText, StatusParsing, StatusFailed, StatusPasswordError,
	} {
		assert.False(t, s.Terminal(), "status %s", s)
	}
}

func TestCanRetry(t *testing.T) {
	assert.True(t, CanRetry(StatusFailed))
	assert.True(t, CanRetry(StatusPasswordError))
	assert.False(t, CanRetry(StatusCompleted))
	assert.False(t, CanRetry(StatusProcessing))
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt(".PDF"))
	assert.Equal(t, "pdf", NormalizeExt("pdf"))
	assert.Equal(t, "", NormalizeExt("."))
}
