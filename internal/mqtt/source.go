package mqtt

import (
	"github.com/ibs-source/print-consumer/internal/message"
)

// Source is the inbound side of the pipeline: a transport that yields queue
// deliveries until closed. The consumer settles every delivery it takes by
// calling exactly one of Ack or Nack on it.
type Source interface {
	Subscribe() error
	Deliveries() <-chan message.Delivery
	Close() error
}

// Ensure Client implements Source
var _ Source = (*Client)(nil)
