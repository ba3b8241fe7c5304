package printer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ibs-source/print-consumer/internal/log"
)

// ErrNoDefaultPrinter is returned when the print service has no default
// destination configured.
var ErrNoDefaultPrinter = errors.New("no default printer configured")

// Discovery asks the system print service which printers exist. It is a
// startup collaborator: the consumer resolves the configured printer once
// and the pipeline never touches discovery again.
type Discovery struct {
	log *log.Logger
	run runFunc
}

// NewDiscovery creates a printer discovery backed by lpstat
func NewDiscovery(logger *log.Logger) *Discovery {
	return &Discovery{
		log: logger,
		run: runCommand,
	}
}

// DefaultName returns the system default printer
func (d *Discovery) DefaultName(ctx context.Context) (string, error) {
	output, err := d.run(ctx, "lpstat", "-d")
	if err != nil {
		return "", fmt.Errorf("failed to query default printer: %w", err)
	}

	name := parseDefaultPrinter(string(output))
	if name == "" {
		return "", ErrNoDefaultPrinter
	}

	d.log.Debug("System default printer is %q", name)
	return name, nil
}

// Exists reports whether the named printer is known to the print service
func (d *Discovery) Exists(ctx context.Context, name string) (bool, error) {
	output, err := d.run(ctx, "lpstat", "-p")
	if err != nil {
		return false, fmt.Errorf("failed to list printers: %w", err)
	}

	for _, printer := range parsePrinterNames(string(output)) {
		if printer == name {
			return true, nil
		}
	}
	return false, nil
}

// parseDefaultPrinter extracts the destination from lpstat -d output, which
// is either "system default destination: <name>" or a no-default notice
func parseDefaultPrinter(output string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		_, name, found := strings.Cut(line, "destination:")
		if found {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

// parsePrinterNames extracts printer names from lpstat -p output, one
// "printer <name> ..." line per destination
func parsePrinterNames(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "printer" {
			names = append(names, fields[1])
		}
	}
	return names
}
