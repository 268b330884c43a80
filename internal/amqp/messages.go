package amqp

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"openclaw/internal/runner"
)

// ResultMessageType tags runner results on the wire.
const ResultMessageType = "runner.result"

// NewResultPublishing wraps a runner result into a persistent AMQP message.
// The body is the same JSON object the runner prints; the task id travels as
// correlation id so consumers can match results without decoding the body.
func NewResultPublishing(r runner.Result) (amqp091.Publishing, error) {
	body, err := r.ToJSON()
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("marshal result: %w", err)
	}
	return amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		MessageId:     uuid.NewString(),
		CorrelationId: r.TaskID,
		Type:          ResultMessageType,
		Timestamp:     time.Now().UTC(),
		Headers: amqp091.Table{
			"model":  r.Model,
			"status": string(r.Status),
		},
		Body: body,
	}, nil
}

// ResultFromDelivery decodes the result carried by a delivery.
func ResultFromDelivery(d amqp091.Delivery) (runner.Result, error) {
	if d.Type != "" && d.Type != ResultMessageType {
		return runner.Result{}, fmt.Errorf("unexpected message type %q", d.Type)
	}
	return runner.ResultFromJSON(d.Body)
}
