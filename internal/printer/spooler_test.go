package printer

import (
	"context"
	"encoding/base64"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/ibs-source/print-consumer/internal/config"
	"github.com/ibs-source/print-consumer/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturedRun records every invocation the spooler makes and replays a
// canned result
type capturedRun struct {
	name   string
	args   []string
	calls  int
	output []byte
	err    error

	// artifact content observed while the command "ran"
	artifactContent []byte
	artifactPath    string
}

func (c *capturedRun) run(_ context.Context, name string, args ...string) ([]byte, error) {
	c.calls++
	c.name = name
	c.args = args

	if len(args) > 0 {
		c.artifactPath = args[len(args)-1]
		content, err := os.ReadFile(c.artifactPath)
		if err == nil {
			c.artifactContent = content
		}
	}

	return c.output, c.err
}

func newTestSpooler(run runFunc) *Spooler {
	s := NewSpooler(&config.PrinterConfig{Command: "lp"}, log.New())
	s.run = run
	return s
}

func encodePayload(document string) []byte {
	return []byte(base64.StdEncoding.EncodeToString([]byte(document)))
}

func TestPrint_SpoolsDecodedDocument(t *testing.T) {
	captured := &capturedRun{}
	s := newTestSpooler(captured.run)

	err := s.Print(context.Background(), encodePayload("label content"), "labelwriter")
	require.NoError(t, err)

	require.Equal(t, 1, captured.calls, "spool command should run exactly once")
	assert.Equal(t, "lp", captured.name)
	require.Len(t, captured.args, 3)
	assert.Equal(t, "-d", captured.args[0])
	assert.Equal(t, "labelwriter", captured.args[1])
	assert.Equal(t, "label content", string(captured.artifactContent),
		"command should see the fully decoded document")
}

func TestPrint_WithoutPrinterName(t *testing.T) {
	captured := &capturedRun{}
	s := newTestSpooler(captured.run)

	err := s.Print(context.Background(), encodePayload("doc"), "")
	require.NoError(t, err)

	require.Len(t, captured.args, 1, "no -d flag without a printer name")
	assert.Equal(t, captured.artifactPath, captured.args[0])
}

func TestPrint_RemovesArtifact(t *testing.T) {
	captured := &capturedRun{}
	s := newTestSpooler(captured.run)

	err := s.Print(context.Background(), encodePayload("doc"), "labelwriter")
	require.NoError(t, err)

	require.NotEmpty(t, captured.artifactPath)
	_, statErr := os.Stat(captured.artifactPath)
	assert.True(t, os.IsNotExist(statErr), "artifact should be removed after printing")
}

func TestPrint_RemovesArtifactOnFailure(t *testing.T) {
	captured := &capturedRun{
		err: &exec.Error{Name: "lp", Err: exec.ErrNotFound},
	}
	s := newTestSpooler(captured.run)

	err := s.Print(context.Background(), encodePayload("doc"), "labelwriter")
	require.Error(t, err)

	require.NotEmpty(t, captured.artifactPath)
	_, statErr := os.Stat(captured.artifactPath)
	assert.True(t, os.IsNotExist(statErr), "artifact should be removed after a failed print")
}

func TestPrint_BadPayload(t *testing.T) {
	captured := &capturedRun{}
	s := newTestSpooler(captured.run)

	err := s.Print(context.Background(), []byte("not base64!!!"), "labelwriter")

	require.ErrorIs(t, err, ErrBadPayload)
	assert.Equal(t, 0, captured.calls, "undecodable payload must never reach the spool command")
}

func TestPrint_CommandFailed(t *testing.T) {
	// Run a real command so the spooler sees a genuine exit error
	s := newTestSpooler(func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
		// #nosec G204 - fixed test command
		return exec.CommandContext(ctx, "sh", "-c", "echo out of paper >&2; exit 1").CombinedOutput()
	})

	err := s.Print(context.Background(), encodePayload("doc"), "labelwriter")

	require.ErrorIs(t, err, ErrSpool)
	assert.Contains(t, err.Error(), "out of paper", "command output should be part of the error")
}

func TestPrint_CommandNotStarted(t *testing.T) {
	captured := &capturedRun{
		err: &exec.Error{Name: "lp", Err: exec.ErrNotFound},
	}
	s := newTestSpooler(captured.run)

	err := s.Print(context.Background(), encodePayload("doc"), "labelwriter")

	require.ErrorIs(t, err, ErrSpoolStart)
	assert.NotErrorIs(t, err, ErrSpool)
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected string
		wantErr  bool
	}{
		{name: "simple", payload: "aGVsbG8=", expected: "hello"},
		{name: "empty", payload: "", expected: ""},
		{name: "binary", payload: base64.StdEncoding.EncodeToString([]byte{0x25, 0x50, 0x44, 0x46}), expected: "%PDF"},
		{name: "invalid characters", payload: "!!!", wantErr: true},
		{name: "truncated", payload: "aGVsbG8", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			document, err := decodePayload([]byte(tt.payload))

			if tt.wantErr {
				require.ErrorIs(t, err, ErrBadPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(document))
		})
	}
}

func TestWriteArtifact(t *testing.T) {
	path, err := writeArtifact([]byte("document bytes"))
	require.NoError(t, err)
	defer func() { _ = os.Remove(path) }()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "document bytes", string(content))

	base := path[strings.LastIndex(path, "/")+1:]
	assert.True(t, strings.HasPrefix(base, "label-"), "artifact name %q should carry the label- prefix", base)
	assert.True(t, strings.HasSuffix(base, ".pdf"), "artifact name %q should carry the .pdf suffix", base)
}
