// Package pipeline decides the fate of every queue delivery: validate,
// filter, deduplicate, print, record, then acknowledge or leave the message
// for redelivery.
package pipeline

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/ibs-source/print-consumer/internal/config"
	"github.com/ibs-source/print-consumer/internal/ledger"
	"github.com/ibs-source/print-consumer/internal/log"
	"github.com/ibs-source/print-consumer/internal/message"
	"github.com/ibs-source/print-consumer/internal/printer"
)

// Ledger is the persistent duplicate-suppression store
type Ledger interface {
	HasPrinted(ctx context.Context, eventID string, order int) (bool, error)
	RecordPrinted(ctx context.Context, eventID string, rec ledger.Record) (ledger.Record, error)
}

// Spooler performs the print side effect
type Spooler interface {
	Print(ctx context.Context, payload []byte, printerName string) error
}

// State is the final disposition of one delivery
type State string

// Delivery dispositions
const (
	StateAcknowledged State = "acknowledged"
	StateDiscarded    State = "discarded"
	StateRetrying     State = "retrying"
)

// Reason explains a disposition
type Reason string

// Disposition reasons
const (
	ReasonPrinted           Reason = "printed"
	ReasonInvalidAttributes Reason = "invalid_attributes"
	ReasonFiltered          Reason = "filtered"
	ReasonDuplicate         Reason = "duplicate"
	ReasonBadPayload        Reason = "bad_payload"
	ReasonPrintFailed       Reason = "print_failed"
	ReasonRecordFailed      Reason = "record_failed"
)

// Outcome is what Process decided for one delivery
type Outcome struct {
	State  State
	Reason Reason
}

// Pipeline runs the per-delivery decision chain. It closes over its
// configuration, so concurrent instances with different policies stay
// independent.
type Pipeline struct {
	ledger       Ledger
	spooler      Spooler
	printerName  string
	orderFilter  config.FilterMode
	printBackoff time.Duration
	host         string
	log          *log.Logger
}

// New creates a pipeline
func New(ledgerStore Ledger, spooler Spooler, cfg *config.Config, logger *log.Logger) *Pipeline {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	return &Pipeline{
		ledger:       ledgerStore,
		spooler:      spooler,
		printerName:  cfg.Printer.Name,
		orderFilter:  cfg.Pipeline.OrderFilter,
		printBackoff: cfg.Pipeline.PrintBackoff,
		host:         host,
		log:          logger,
	}
}

// Process runs one delivery through the decision chain and settles it.
// Exactly one of Ack or Nack is called before returning. Redelivering the
// same logical message after an ack never prints again; redelivery after a
// nack replays the chain against current ledger state.
func (p *Pipeline) Process(ctx context.Context, delivery message.Delivery) Outcome {
	started := time.Now()

	attrs, err := message.ParseAttributes(delivery.Attributes)
	if err != nil {
		// Malformed metadata cannot self-heal; nacking would loop forever
		p.log.Warn("Discarding delivery %s: %v", delivery.ID, err)
		delivery.Ack()
		return p.settle(StateDiscarded, ReasonInvalidAttributes)
	}

	if !p.orderFilter.Accepts(attrs.OrderNumber) {
		p.log.Warn("Skipping order %d of event %s: only printing %s order numbers",
			attrs.OrderNumber, attrs.EventID, p.orderFilter)
		delivery.Nack()
		return p.settle(StateRetrying, ReasonFiltered)
	}

	if !attrs.Reprint && p.alreadyPrinted(ctx, attrs) {
		p.log.Info("Order %d of event %s already printed, discarding duplicate",
			attrs.OrderNumber, attrs.EventID)
		delivery.Ack()
		return p.settle(StateDiscarded, ReasonDuplicate)
	}

	if err := p.spooler.Print(ctx, delivery.Payload, p.printerName); err != nil {
		return p.settlePrintFailure(ctx, delivery, attrs, err)
	}

	recorded := p.record(ctx, delivery, attrs)

	// The label is on paper, so the delivery is settled either way
	delivery.Ack()

	if !recorded {
		return p.settle(StateDiscarded, ReasonRecordFailed)
	}

	processingSeconds.Observe(time.Since(started).Seconds())
	return p.settle(StateAcknowledged, ReasonPrinted)
}

// alreadyPrinted asks the ledger, treating failure as "not printed": an
// unreachable ledger can only ever cause an extra print, never a missed one
func (p *Pipeline) alreadyPrinted(ctx context.Context, attrs message.Attributes) bool {
	printed, err := p.ledger.HasPrinted(ctx, attrs.EventID, attrs.OrderNumber)
	if err != nil {
		p.log.Error("Ledger read failed for event %s order %d, proceeding as not printed: %v",
			attrs.EventID, attrs.OrderNumber, err)
		return false
	}
	return printed
}

// settlePrintFailure classifies a print error. An undecodable payload is
// permanent and discarded; everything else is nacked for redelivery after a
// short hold so a broken device is not hammered.
func (p *Pipeline) settlePrintFailure(
	ctx context.Context, delivery message.Delivery, attrs message.Attributes, err error,
) Outcome {
	if errors.Is(err, printer.ErrBadPayload) {
		p.log.Warn("Discarding order %d of event %s: %v", attrs.OrderNumber, attrs.EventID, err)
		delivery.Ack()
		return p.settle(StateDiscarded, ReasonBadPayload)
	}

	p.log.Error("Print failed for order %d of event %s, leaving for redelivery: %v",
		attrs.OrderNumber, attrs.EventID, err)
	delivery.Nack()
	p.backoff(ctx)
	return p.settle(StateRetrying, ReasonPrintFailed)
}

// backoff holds the worker briefly after a transient print failure
func (p *Pipeline) backoff(ctx context.Context) {
	if p.printBackoff <= 0 {
		return
	}

	timer := time.NewTimer(p.printBackoff)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// record writes the ledger entry for a completed print. Failure is logged
// and swallowed: the label already exists, and reprinting it would be worse
// than a missing record.
func (p *Pipeline) record(ctx context.Context, delivery message.Delivery, attrs message.Attributes) bool {
	rec, err := p.ledger.RecordPrinted(ctx, attrs.EventID, ledger.Record{
		OrderNumber: attrs.OrderNumber,
		PrinterName: p.printerName,
		Host:        p.host,
		DeliveryID:  delivery.ID,
		PublishTime: delivery.PublishTime,
		Reprint:     attrs.Reprint,
	})
	if err != nil {
		p.log.Error("Ledger write failed for event %s order %d after printing: %v",
			attrs.EventID, attrs.OrderNumber, err)
		return false
	}

	p.log.Info("Printed order %d of event %s on %q (record %s)",
		attrs.OrderNumber, attrs.EventID, p.printerName, rec.ID)
	return true
}

// settle finalizes an outcome and counts it
func (p *Pipeline) settle(state State, reason Reason) Outcome {
	deliveriesTotal.WithLabelValues(string(reason)).Inc()
	return Outcome{State: state, Reason: reason}
}
