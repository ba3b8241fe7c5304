package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibs-source/print-consumer/internal/config"
	"github.com/ibs-source/print-consumer/internal/ledger"
	"github.com/ibs-source/print-consumer/internal/log"
	"github.com/ibs-source/print-consumer/internal/message"
	"github.com/ibs-source/print-consumer/internal/printer"
)

// fakeLedger is an in-memory Ledger with injectable failures
type fakeLedger struct {
	mu         sync.Mutex
	printed    map[string]bool
	records    []ledger.Record
	readErr    error
	writeErr   error
	readCalls  int
	writeCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{printed: make(map[string]bool)}
}

func ledgerKey(eventID string, order int) string {
	return fmt.Sprintf("%s:%d", eventID, order)
}

func (f *fakeLedger) HasPrinted(_ context.Context, eventID string, order int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.readCalls++
	if f.readErr != nil {
		return false, f.readErr
	}
	return f.printed[ledgerKey(eventID, order)], nil
}

func (f *fakeLedger) RecordPrinted(_ context.Context, eventID string, rec ledger.Record) (ledger.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writeCalls++
	if f.writeErr != nil {
		return ledger.Record{}, f.writeErr
	}

	rec.ID = fmt.Sprintf("rec-%d", len(f.records)+1)
	rec.PrintedAt = time.Now().UTC()
	f.printed[ledgerKey(eventID, rec.OrderNumber)] = true
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeLedger) markPrinted(eventID string, order int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.printed[ledgerKey(eventID, order)] = true
}

func (f *fakeLedger) lastRecord(t *testing.T) ledger.Record {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.records, "expected at least one ledger record")
	return f.records[len(f.records)-1]
}

// fakeSpooler records print attempts and returns an injectable error
type fakeSpooler struct {
	mu       sync.Mutex
	printErr error
	calls    int
	payloads [][]byte
	printers []string
}

func (f *fakeSpooler) Print(_ context.Context, payload []byte, printerName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.payloads = append(f.payloads, payload)
	f.printers = append(f.printers, printerName)
	return f.printErr
}

func (f *fakeSpooler) printCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// settled counts how a delivery was settled
type settled struct {
	acks  int
	nacks int
}

func (s *settled) assertAcked(t *testing.T) {
	t.Helper()
	assert.Equal(t, 1, s.acks, "expected exactly one ack")
	assert.Equal(t, 0, s.nacks, "expected no nack")
}

func (s *settled) assertNacked(t *testing.T) {
	t.Helper()
	assert.Equal(t, 0, s.acks, "expected no ack")
	assert.Equal(t, 1, s.nacks, "expected exactly one nack")
}

func testDelivery(s *settled, attrs map[string]string) message.Delivery {
	return message.Delivery{
		ID:          "delivery-1",
		Attributes:  attrs,
		Payload:     []byte("JVBERi0xLjQK"),
		PublishTime: time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC),
		Ack:         func() { s.acks++ },
		Nack:        func() { s.nacks++ },
	}
}

func printAttrs(eventID string, order int) map[string]string {
	return map[string]string{
		message.KeyEventID:     eventID,
		message.KeyOrderNumber: strconv.Itoa(order),
	}
}

func counterValue(t *testing.T, reason Reason) float64 {
	t.Helper()
	return testutil.ToFloat64(deliveriesTotal.WithLabelValues(string(reason)))
}

func newTestPipeline(ledgerStore Ledger, spooler Spooler, mutate func(*config.Config)) *Pipeline {
	cfg := &config.Config{
		Printer: config.PrinterConfig{Name: "labelwriter"},
		Pipeline: config.PipelineConfig{
			OrderFilter:  config.FilterAll,
			PrintBackoff: 0,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}
	return New(ledgerStore, spooler, cfg, log.New())
}

func TestProcess_PrintsAndRecords(t *testing.T) {
	fl := newFakeLedger()
	fs := &fakeSpooler{}
	p := newTestPipeline(fl, fs, nil)

	var s settled
	out := p.Process(context.Background(), testDelivery(&s, printAttrs("evt-1", 7)))

	require.Equal(t, Outcome{State: StateAcknowledged, Reason: ReasonPrinted}, out)
	s.assertAcked(t)

	require.Equal(t, 1, fs.printCalls())
	assert.Equal(t, []byte("JVBERi0xLjQK"), fs.payloads[0])
	assert.Equal(t, "labelwriter", fs.printers[0])

	rec := fl.lastRecord(t)
	assert.Equal(t, 7, rec.OrderNumber)
	assert.Equal(t, "labelwriter", rec.PrinterName)
	assert.NotEmpty(t, rec.Host)
	assert.Equal(t, "delivery-1", rec.DeliveryID)
	assert.Equal(t, time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC), rec.PublishTime)
	assert.False(t, rec.Reprint)
}

func TestProcess_InvalidAttributes(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]string
	}{
		{"NilAttributes", nil},
		{"EmptyAttributes", map[string]string{}},
		{"MissingEventID", map[string]string{message.KeyOrderNumber: "3"}},
		{"EmptyEventID", map[string]string{message.KeyEventID: "", message.KeyOrderNumber: "3"}},
		{"MissingOrderNumber", map[string]string{message.KeyEventID: "evt-1"}},
		{"OrderNumberNotInteger", map[string]string{message.KeyEventID: "evt-1", message.KeyOrderNumber: "seven"}},
		{"OrderNumberEmpty", map[string]string{message.KeyEventID: "evt-1", message.KeyOrderNumber: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fl := newFakeLedger()
			fs := &fakeSpooler{}
			p := newTestPipeline(fl, fs, nil)

			var s settled
			out := p.Process(context.Background(), testDelivery(&s, tt.attrs))

			assert.Equal(t, Outcome{State: StateDiscarded, Reason: ReasonInvalidAttributes}, out)
			s.assertAcked(t)
			assert.Equal(t, 0, fs.printCalls(), "malformed delivery must not print")
			assert.Equal(t, 0, fl.readCalls, "malformed delivery must not touch the ledger")
		})
	}
}

func TestProcess_OrderFilter(t *testing.T) {
	tests := []struct {
		name     string
		filter   config.FilterMode
		order    int
		accepted bool
	}{
		{"EvenFilterAcceptsEven", config.FilterEven, 4, true},
		{"EvenFilterRejectsOdd", config.FilterEven, 7, false},
		{"OddFilterAcceptsOdd", config.FilterOdd, 7, true},
		{"OddFilterRejectsEven", config.FilterOdd, 4, false},
		{"OddFilterAcceptsNegativeOdd", config.FilterOdd, -3, true},
		{"AllFilterAcceptsEverything", config.FilterAll, 12, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fl := newFakeLedger()
			fs := &fakeSpooler{}
			p := newTestPipeline(fl, fs, func(cfg *config.Config) {
				cfg.Pipeline.OrderFilter = tt.filter
			})

			var s settled
			out := p.Process(context.Background(), testDelivery(&s, printAttrs("evt-1", tt.order)))

			if tt.accepted {
				assert.Equal(t, Outcome{State: StateAcknowledged, Reason: ReasonPrinted}, out)
				s.assertAcked(t)
				assert.Equal(t, 1, fs.printCalls())
				return
			}

			assert.Equal(t, Outcome{State: StateRetrying, Reason: ReasonFiltered}, out)
			s.assertNacked(t)
			assert.Equal(t, 0, fs.printCalls(), "filtered order must not print")
			assert.Equal(t, 0, fl.readCalls, "filtered order must not touch the ledger")
		})
	}
}

func TestProcess_DuplicateSuppressed(t *testing.T) {
	fl := newFakeLedger()
	fl.markPrinted("evt-1", 7)
	fs := &fakeSpooler{}
	p := newTestPipeline(fl, fs, nil)

	var s settled
	out := p.Process(context.Background(), testDelivery(&s, printAttrs("evt-1", 7)))

	assert.Equal(t, Outcome{State: StateDiscarded, Reason: ReasonDuplicate}, out)
	s.assertAcked(t)
	assert.Equal(t, 0, fs.printCalls(), "duplicate must not print again")
	assert.Equal(t, 0, fl.writeCalls)
}

func TestProcess_ReprintBypassesDuplicateCheck(t *testing.T) {
	fl := newFakeLedger()
	fl.markPrinted("evt-1", 7)
	fs := &fakeSpooler{}
	p := newTestPipeline(fl, fs, nil)

	attrs := printAttrs("evt-1", 7)
	attrs[message.KeyReprint] = ""

	var s settled
	out := p.Process(context.Background(), testDelivery(&s, attrs))

	require.Equal(t, Outcome{State: StateAcknowledged, Reason: ReasonPrinted}, out)
	s.assertAcked(t)
	assert.Equal(t, 1, fs.printCalls())
	assert.Equal(t, 0, fl.readCalls, "reprint must not consult the duplicate check")
	assert.True(t, fl.lastRecord(t).Reprint)
}

func TestProcess_BadPayload(t *testing.T) {
	fl := newFakeLedger()
	fs := &fakeSpooler{printErr: fmt.Errorf("%w: illegal base64 data", printer.ErrBadPayload)}
	p := newTestPipeline(fl, fs, nil)

	var s settled
	out := p.Process(context.Background(), testDelivery(&s, printAttrs("evt-1", 7)))

	assert.Equal(t, Outcome{State: StateDiscarded, Reason: ReasonBadPayload}, out)
	s.assertAcked(t)
	assert.Equal(t, 0, fl.writeCalls, "failed print must not be recorded")
}

func TestProcess_TransientPrintFailure(t *testing.T) {
	fl := newFakeLedger()
	fs := &fakeSpooler{printErr: fmt.Errorf("%w: lp: out of paper", printer.ErrSpool)}
	p := newTestPipeline(fl, fs, nil)

	var s settled
	out := p.Process(context.Background(), testDelivery(&s, printAttrs("evt-1", 7)))

	assert.Equal(t, Outcome{State: StateRetrying, Reason: ReasonPrintFailed}, out)
	s.assertNacked(t)
	assert.Equal(t, 1, fs.printCalls(), "one delivery gets one print attempt")
	assert.Equal(t, 0, fl.writeCalls, "failed print must not be recorded")
}

func TestProcess_LedgerReadFailureStillPrints(t *testing.T) {
	fl := newFakeLedger()
	fl.readErr = errors.New("connection refused")
	fs := &fakeSpooler{}
	p := newTestPipeline(fl, fs, nil)

	var s settled
	out := p.Process(context.Background(), testDelivery(&s, printAttrs("evt-1", 7)))

	assert.Equal(t, Outcome{State: StateAcknowledged, Reason: ReasonPrinted}, out)
	s.assertAcked(t)
	assert.Equal(t, 1, fs.printCalls(), "unreadable ledger is treated as not printed")
}

func TestProcess_LedgerWriteFailureStillAcks(t *testing.T) {
	fl := newFakeLedger()
	fl.writeErr = errors.New("connection refused")
	fs := &fakeSpooler{}
	p := newTestPipeline(fl, fs, nil)

	var s settled
	out := p.Process(context.Background(), testDelivery(&s, printAttrs("evt-1", 7)))

	assert.Equal(t, Outcome{State: StateDiscarded, Reason: ReasonRecordFailed}, out)
	s.assertAcked(t)
	assert.Equal(t, 1, fs.printCalls(), "the label was printed even though recording it failed")
}

func TestProcess_RedeliverySecondCopyNeverPrints(t *testing.T) {
	fl := newFakeLedger()
	fs := &fakeSpooler{}
	p := newTestPipeline(fl, fs, nil)

	var first settled
	out := p.Process(context.Background(), testDelivery(&first, printAttrs("evt-1", 7)))
	require.Equal(t, ReasonPrinted, out.Reason)

	// Same logical message arrives again under a new delivery handle
	var second settled
	redelivery := testDelivery(&second, printAttrs("evt-1", 7))
	redelivery.ID = "delivery-2"
	out = p.Process(context.Background(), redelivery)

	assert.Equal(t, Outcome{State: StateDiscarded, Reason: ReasonDuplicate}, out)
	first.assertAcked(t)
	second.assertAcked(t)
	assert.Equal(t, 1, fs.printCalls(), "redelivery of a printed order must not print twice")
}

func TestProcess_BackoffAfterPrintFailure(t *testing.T) {
	fl := newFakeLedger()
	fs := &fakeSpooler{printErr: fmt.Errorf("%w: printer unreachable", printer.ErrSpoolStart)}
	p := newTestPipeline(fl, fs, func(cfg *config.Config) {
		cfg.Pipeline.PrintBackoff = 50 * time.Millisecond
	})

	var s settled
	start := time.Now()
	out := p.Process(context.Background(), testDelivery(&s, printAttrs("evt-1", 7)))

	assert.Equal(t, ReasonPrintFailed, out.Reason)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond,
		"transient failure should hold the worker before the next attempt")
}

func TestProcess_BackoffStopsOnShutdown(t *testing.T) {
	fl := newFakeLedger()
	fs := &fakeSpooler{printErr: fmt.Errorf("%w: printer unreachable", printer.ErrSpoolStart)}
	p := newTestPipeline(fl, fs, func(cfg *config.Config) {
		cfg.Pipeline.PrintBackoff = 5 * time.Second
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var s settled
	start := time.Now()
	out := p.Process(ctx, testDelivery(&s, printAttrs("evt-1", 7)))

	assert.Equal(t, ReasonPrintFailed, out.Reason)
	s.assertNacked(t)
	assert.Less(t, time.Since(start), time.Second,
		"shutdown must not wait out the failure backoff")
}

func TestProcess_MetricsCountOutcomes(t *testing.T) {
	fl := newFakeLedger()
	fs := &fakeSpooler{}
	p := newTestPipeline(fl, fs, nil)

	before := counterValue(t, ReasonPrinted)

	var s settled
	p.Process(context.Background(), testDelivery(&s, printAttrs("evt-metrics", 2)))

	assert.Equal(t, before+1, counterValue(t, ReasonPrinted))
}
