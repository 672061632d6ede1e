package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventPayload es un evento de marketing en tránsito hacia el Pixel.
type EventPayload struct {
	Event      string         `json:"event"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishEvent(ctx context.Context, payload EventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error al serializar el evento: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falla al publicar en RabbitMQ: %w", err)
	}

	return nil
}

// Track implementa el tracker de los usecases: encolar y seguir. Si la cola
// no está disponible el evento se pierde con un aviso; el embudo no espera
// al Pixel jamás.
func (p *RabbitMQProducer) Track(ctx context.Context, event string, data map[string]any) {
	payload := EventPayload{
		Event:      event,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := p.PublishEvent(ctx, payload); err != nil {
		log.Printf("⚠️ Tracking: no se pudo encolar %s: %v", event, err)
	}
}
