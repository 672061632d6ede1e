package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fenixacademy/funnel-backend/internal/infra/http/middleware"
)

// PixelSender es el destino final de los eventos (Conversions API de Meta).
type PixelSender interface {
	Send(event string, data map[string]any) error
}

type Worker struct {
	Channel *amqp.Channel
	Pixel   PixelSender
}

func NewWorker(ch *amqp.Channel, pixel PixelSender) *Worker {
	return &Worker{
		Channel: ch,
		Pixel:   pixel,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual, más seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		log.Fatalf("❌ Falla al registrar consumidor RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload EventPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] JSON inválido: %s", err)
				// Mensaje podrido: se rechaza sin requeue para no trabar la fila.
				d.Nack(false, false)
				continue
			}

			if err := w.Pixel.Send(payload.Event, payload.Data); err != nil {
				log.Printf("❌ [WORKER] Meta rechazó %s: %s", payload.Event, err)
				middleware.RecordIntegrationError("meta")
				d.Nack(false, false)
			} else {
				middleware.RecordTrackingEvent(payload.Event)
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker de tracking esperando en la fila '%s'", queueName)
	<-forever
}
