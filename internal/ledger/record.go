package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ibs-source/print-consumer/pkg/jsonfast"
)

// Record is one completed print stored in the ledger. Records are append-only:
// a reprint adds a new record next to the old one instead of replacing it.
type Record struct {
	ID          string    `json:"id"`
	OrderNumber int       `json:"order_number"`
	PrinterName string    `json:"printer_name"`
	Host        string    `json:"host"`
	DeliveryID  string    `json:"delivery_identifier"`
	PublishTime time.Time `json:"publish_time"`
	PrintedAt   time.Time `json:"print_timestamp"`
	Reprint     bool      `json:"reprint"`
}

// encodeRecord serializes a record to JSON using the jsonfast builder
func encodeRecord(rec Record) []byte {
	builder := jsonfast.New(512)
	builder.BeginObject()
	builder.AddStringField("id", rec.ID)
	builder.AddIntField("order_number", rec.OrderNumber)
	builder.AddStringField("printer_name", rec.PrinterName)
	builder.AddStringField("host", rec.Host)
	builder.AddStringField("delivery_identifier", rec.DeliveryID)
	builder.AddTimeRFC3339Field("publish_time", rec.PublishTime)
	builder.AddTimeRFC3339Field("print_timestamp", rec.PrintedAt)
	builder.AddBoolField("reprint", rec.Reprint)
	builder.EndObject()

	// Return a copy of the buffer to avoid aliasing issues
	result := make([]byte, len(builder.Bytes()))
	copy(result, builder.Bytes())
	return result
}

// decodeRecord parses a stored record document
func decodeRecord(doc []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(doc, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse ledger record: %w", err)
	}
	return rec, nil
}
