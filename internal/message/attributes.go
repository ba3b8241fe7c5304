package message

import (
	"errors"
	"fmt"
	"strconv"
)

// Attribute keys carried by print deliveries.
const (
	KeyEventID     = "event_id"
	KeyOrderNumber = "order_number"
	KeyReprint     = "reprint"
)

// Attribute validation failures. Each marks the delivery as permanently
// malformed: the pipeline acknowledges and drops it, never retries.
var (
	ErrMissingAttributes  = errors.New("delivery has no attributes")
	ErrMissingEventID     = errors.New("missing event_id attribute")
	ErrMissingOrderNumber = errors.New("missing order_number attribute")
	ErrInvalidOrderNumber = errors.New("order_number is not an integer")
)

// Attributes is the validated view of a delivery's attribute map.
// A value exists only when event_id and order_number were present and
// well formed in the raw attributes.
type Attributes struct {
	EventID     string
	OrderNumber int
	Reprint     bool
}

// ParseAttributes validates a raw attribute map into Attributes.
// The reprint flag is set by the presence of the reprint key alone,
// its value is not inspected.
func ParseAttributes(raw map[string]string) (Attributes, error) {
	if len(raw) == 0 {
		return Attributes{}, ErrMissingAttributes
	}

	eventID, ok := raw[KeyEventID]
	if !ok || eventID == "" {
		return Attributes{}, ErrMissingEventID
	}

	rawOrder, ok := raw[KeyOrderNumber]
	if !ok {
		return Attributes{}, ErrMissingOrderNumber
	}
	order, err := strconv.Atoi(rawOrder)
	if err != nil {
		return Attributes{}, fmt.Errorf("%w: %q", ErrInvalidOrderNumber, rawOrder)
	}

	_, reprint := raw[KeyReprint]

	return Attributes{
		EventID:     eventID,
		OrderNumber: order,
		Reprint:     reprint,
	}, nil
}
