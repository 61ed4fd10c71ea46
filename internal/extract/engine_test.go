package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfcamargo/extracto-pipeline/constants"
	"github.com/dfcamargo/extracto-pipeline/internal/config"
)

// fakeRunner records invocations and plays back scripted results per tool.
type fakeRunner struct {
	calls   [][]string
	results map[string]fakeResult
}

type fakeResult struct {
	stdout []byte
	stderr []byte
	err    error
	// qpdf writes its output file as a side effect; the fake mimics that
	// by creating the last argv entry when set.
	writeOutput bool
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	res := f.results[name]
	if res.writeOutput {
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("%PDF-1.7 decrypted"), 0o600); err != nil {
			return nil, nil, err
		}
	}
	return res.stdout, res.stderr, res.err
}

func newTestEngine(r Runner) *Engine {
	return NewEngineWithRunner(config.ToolsConfig{}, r, nil)
}

func TestExtract_PlainDocument(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"pdftotext": {stdout: []byte("Movimientos\nline one\n")},
	}}

	got, err := newTestEngine(runner).Extract(context.Background(), []byte("%PDF"), "")
	require.NoError(t, err)
	assert.Equal(t, "Movimientos\nline one\n", got)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "pdftotext", call[0])
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}, call[1:6])
	assert.Equal(t, "-", call[len(call)-1])
}

func TestExtract_EncryptedDocument(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"qpdf":      {writeOutput: true},
		"pdftotext": {stdout: []byte("decrypted text")},
	}}

	got, err := newTestEngine(runner).Extract(context.Background(), []byte("%PDF"), "secreto")
	require.NoError(t, err)
	assert.Equal(t, "decrypted text", got)

	require.Len(t, runner.calls, 2)
	qpdfCall := runner.calls[0]
	assert.Equal(t, "qpdf", qpdfCall[0])
	assert.True(t, strings.HasPrefix(qpdfCall[1], "--password-file="))
	assert.Equal(t, "--decrypt", qpdfCall[2])

	// The password must never appear in argv.
	for _, arg := range qpdfCall {
		assert.NotContains(t, arg, "secreto")
	}

	// pdftotext must read the decrypted file, not the original upload.
	assert.Equal(t, "decrypted.pdf", filepath.Base(runner.calls[1][len(runner.calls[1])-2]))
}

func TestExtract_WrongPassword(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"qpdf": {stderr: []byte("qpdf: input.pdf: invalid password"), err: errors.New("exit status 2")},
	}}

	_, err := newTestEngine(runner).Extract(context.Background(), []byte("%PDF"), "mala")
	require.Error(t, err)

	var xerr *Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, constants.FailPasswordIncorrect, xerr.Kind)
	assert.Contains(t, xerr.Stderr, "invalid password")
}

func TestExtract_DecryptToolFailure(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"qpdf": {stderr: []byte("qpdf: input.pdf: file is damaged"), err: errors.New("exit status 2")},
	}}

	_, err := newTestEngine(runner).Extract(context.Background(), []byte("%PDF"), "clave")
	require.Error(t, err)

	var xerr *Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, constants.FailExtraction, xerr.Kind)
}

func TestExtract_DecryptProducesNoOutput(t *testing.T) {
	// qpdf exits zero but never writes the output file.
	runner := &fakeRunner{results: map[string]fakeResult{
		"qpdf": {},
	}}

	_, err := newTestEngine(runner).Extract(context.Background(), []byte("%PDF"), "clave")
	require.Error(t, err)

	var xerr *Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, constants.FailExtraction, xerr.Kind)
	assert.Contains(t, xerr.Message, "no output")
}

func TestExtract_PdftotextFailure(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"pdftotext": {stderr: []byte("Syntax Error: Couldn't read xref table"), err: errors.New("exit status 1")},
	}}

	_, err := newTestEngine(runner).Extract(context.Background(), []byte("not a pdf"), "")
	require.Error(t, err)

	var xerr *Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, constants.FailExtraction, xerr.Kind)
	assert.Contains(t, xerr.Stderr, "xref")
}

func TestExtract_CleansUpTempFiles(t *testing.T) {
	var inputPath string
	runner := &fakeRunner{results: map[string]fakeResult{
		"pdftotext": {stdout: []byte("text")},
	}}

	_, err := newTestEngine(runner).Extract(context.Background(), []byte("%PDF"), "")
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	inputPath = call[len(call)-2]

	_, statErr := os.Stat(filepath.Dir(inputPath))
	assert.True(t, os.IsNotExist(statErr), "temp dir should be removed after extraction")
}

func TestLooksLikePasswordFailure(t *testing.T) {
	assert.True(t, looksLikePasswordFailure("qpdf: invalid password"))
	assert.True(t, looksLikePasswordFailure("QPDF: Incorrect Password supplied"))
	assert.False(t, looksLikePasswordFailure("qpdf: file is damaged"))
	assert.False(t, looksLikePasswordFailure(""))
}
