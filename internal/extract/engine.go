package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dfcamargo/extracto-pipeline/constants"
	"github.com/dfcamargo/extracto-pipeline/internal/config"
)

// Engine turns raw PDF bytes into layout-preserving text, decrypting first
// when a password is supplied. All intermediate files live in a per-call
// temp directory that is removed on every exit path: no artifact outlives
// the call.
type Engine struct {
	cfg    config.ToolsConfig
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg config.ToolsConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QPDF == "" {
		cfg.QPDF = "qpdf"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Engine{cfg: cfg, runner: osRunner{}, logger: logger}
}

// NewEngineWithRunner stubs the external tools; used by tests.
func NewEngineWithRunner(cfg config.ToolsConfig, r Runner, logger *slog.Logger) *Engine {
	e := NewEngine(cfg, logger)
	e.runner = r
	return e
}

// Extract runs decrypt (optional) then text extraction. The returned text
// is line-delimited with columns aligned by whitespace; downstream parsing
// depends on that layout surviving.
func (e *Engine) Extract(ctx context.Context, pdf []byte, password string) (string, error) {
	start := time.Now()

	tmpDir, err := os.MkdirTemp("", "extracto-*")
	if err != nil {
		return "", &Error{Kind: constants.FailExtraction, Message: "create temp dir", Cause: err}
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", err)
		}
	}()

	input := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(input, pdf, 0o600); err != nil {
		return "", &Error{Kind: constants.FailExtraction, Message: "write input", Cause: err}
	}

	if password != "" {
		input, err = e.decrypt(ctx, tmpDir, input, password)
		if err != nil {
			return "", err
		}
	}

	// pdftotext -layout -enc UTF-8 -eol unix <in.pdf> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", input, "-")
	if err != nil {
		return "", &Error{
			Kind:    constants.FailExtraction,
			Message: "pdftotext failed",
			Stderr:  string(errb),
			Cause:   err,
		}
	}

	e.logger.Debug("text extracted",
		"bytes", len(out),
		"encrypted", password != "",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return string(out), nil
}

// decrypt runs qpdf against the input and returns the decrypted path. The
// password goes through a transient credential file, never through argv.
func (e *Engine) decrypt(ctx context.Context, tmpDir, input, password string) (string, error) {
	pwFile := filepath.Join(tmpDir, "pw")
	if err := os.WriteFile(pwFile, []byte(password), 0o600); err != nil {
		return "", &Error{Kind: constants.FailExtraction, Message: "write password file", Cause: err}
	}

	decrypted := filepath.Join(tmpDir, "decrypted.pdf")
	// qpdf --password-file=<pw> --decrypt <in.pdf> <out.pdf>
	_, errb, err := e.runner.Run(ctx, e.cfg.QPDF, "--password-file="+pwFile, "--decrypt", input, decrypted)
	if err != nil {
		stderr := string(errb)
		if looksLikePasswordFailure(stderr) {
			return "", &Error{
				Kind:    constants.FailPasswordIncorrect,
				Message: "decrypt tool rejected the password",
				Stderr:  stderr,
				Cause:   err,
			}
		}
		return "", &Error{
			Kind:    constants.FailExtraction,
			Message: "qpdf failed",
			Stderr:  stderr,
			Cause:   err,
		}
	}

	if _, err := os.Stat(decrypted); err != nil {
		return "", &Error{
			Kind:    constants.FailExtraction,
			Message: fmt.Sprintf("qpdf produced no output: %v", err),
		}
	}
	return decrypted, nil
}
