// Package printer spools decoded documents to the system print service.
package printer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/ibs-source/print-consumer/internal/config"
	"github.com/ibs-source/print-consumer/internal/log"
)

var (
	// ErrBadPayload marks a document that is not valid base64. Permanent:
	// redelivering the same bytes cannot fix them.
	ErrBadPayload = errors.New("payload is not valid base64")

	// ErrSpool marks a spool command that ran and reported failure. Transient.
	ErrSpool = errors.New("spool command failed")

	// ErrSpoolStart marks a print attempt that never reached the spool
	// command (artifact staging or command startup failed). Transient.
	ErrSpoolStart = errors.New("spool command could not be attempted")
)

// runFunc executes a command and returns its combined output.
// Swappable in tests.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 - command comes from validated configuration, not message data
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Spooler hands decoded documents to the system print service
type Spooler struct {
	command string
	log     *log.Logger
	run     runFunc
}

// NewSpooler creates a spooler that prints through the configured command
func NewSpooler(cfg *config.PrinterConfig, logger *log.Logger) *Spooler {
	return &Spooler{
		command: cfg.Command,
		log:     logger,
		run:     runCommand,
	}
}

// Print decodes the base64 payload into a temporary artifact and spools it
// to the named printer. The artifact is removed on every exit path, and the
// spool command only ever sees a fully flushed file.
func (s *Spooler) Print(ctx context.Context, payload []byte, printerName string) error {
	document, err := decodePayload(payload)
	if err != nil {
		return err
	}

	path, err := writeArtifact(document)
	if err != nil {
		return err
	}
	defer func() {
		if removeErr := os.Remove(path); removeErr != nil {
			s.log.Warn("Failed to remove print artifact %s: %v", path, removeErr)
		}
	}()

	return s.spool(ctx, path, printerName)
}

// decodePayload turns the base64 message body back into document bytes
func decodePayload(payload []byte) ([]byte, error) {
	document := make([]byte, base64.StdEncoding.DecodedLen(len(payload)))
	n, err := base64.StdEncoding.Decode(document, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return document[:n], nil
}

// writeArtifact stages the document on disk for the spool command. The file
// is closed, and therefore flushed, before its path is returned.
func writeArtifact(document []byte) (string, error) {
	file, err := os.CreateTemp("", "label-*.pdf")
	if err != nil {
		return "", fmt.Errorf("%w: creating artifact: %v", ErrSpoolStart, err)
	}

	if _, err := file.Write(document); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("%w: writing artifact: %v", ErrSpoolStart, err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("%w: flushing artifact: %v", ErrSpoolStart, err)
	}

	return file.Name(), nil
}

// spool invokes the print command on the staged artifact. A command that ran
// and failed is distinguished from one that never started; both are retried
// by the caller.
func (s *Spooler) spool(ctx context.Context, path, printerName string) error {
	args := make([]string, 0, 3)
	if printerName != "" {
		args = append(args, "-d", printerName)
	}
	args = append(args, path)

	output, err := s.run(ctx, s.command, args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %v: %s", ErrSpool, err, bytes.TrimSpace(output))
		}
		return fmt.Errorf("%w: %v", ErrSpoolStart, err)
	}

	s.log.Debug("Spooled %s to printer %q: %s", path, printerName, bytes.TrimSpace(output))
	return nil
}
