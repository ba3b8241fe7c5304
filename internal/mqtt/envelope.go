package mqtt

import (
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/ibs-source/print-consumer/internal/message"
)

// envelope is the wire format published to the print queue. The data field
// stays base64 text here; decoding it is the printer's job so that a bad
// document can be classified as a permanent failure.
type envelope struct {
	ID          string            `json:"id"`
	Attributes  map[string]string `json:"attributes"`
	Data        string            `json:"data"`
	PublishTime time.Time         `json:"publishTime"`
}

// decodeDelivery maps a raw MQTT message onto the delivery the pipeline
// consumes. A payload that does not parse as the envelope still produces a
// delivery; its nil attribute map fails validation downstream, which is how
// malformed messages end up discarded instead of looping.
func decodeDelivery(msg mqtt.Message) message.Delivery {
	var env envelope
	if err := json.Unmarshal(msg.Payload(), &env); err != nil {
		return message.Delivery{ID: uuid.NewString()}
	}

	id := env.ID
	if id == "" {
		id = uuid.NewString()
	}

	return message.Delivery{
		ID:          id,
		Attributes:  env.Attributes,
		Payload:     []byte(env.Data),
		PublishTime: env.PublishTime,
	}
}
