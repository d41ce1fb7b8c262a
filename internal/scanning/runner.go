package scanning

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"
	"unicode/utf8"
)

// maxLoggedStderr bounds the stderr attached to log lines
const maxLoggedStderr = 8 << 10

// Runner executes an OCR command line and returns its captured output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// cliRunner runs OCR binaries on the host and logs each invocation under the
// engine that issued it.
type cliRunner struct {
	engine string
}

func (c cliRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	log := slog.With("engine", c.engine, "binary", name, "elapsed", time.Since(started))

	if err != nil {
		log.Error("OCR command failed", "args", args, "error", err, "stderr", clip(stderr.String(), maxLoggedStderr))
		return stdout.Bytes(), stderr.Bytes(), err
	}
	log.Debug("OCR command finished", "text_bytes", stdout.Len())
	return stdout.Bytes(), stderr.Bytes(), nil
}

// clip shortens s to at most n bytes without splitting a UTF-8 sequence.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...(truncated)"
}
