// Package message provides shared data structures for queue deliveries and their validated attributes.
package message

import "time"

// Delivery is one attempt by the transport to hand a logical message to
// the pipeline. The same logical message may arrive as several deliveries.
type Delivery struct {
	ID          string            // Transport handle, unique per delivery
	Attributes  map[string]string // Raw attributes, nil when the envelope was malformed
	Payload     []byte            // Base64 text of the document to print
	PublishTime time.Time

	// Ack confirms the delivery so the broker never redelivers it.
	// Nack leaves it unacknowledged for redelivery. The pipeline calls
	// exactly one of the two per delivery.
	Ack  func()
	Nack func()
}
