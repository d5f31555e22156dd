package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"freelance_service/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrChannelClosed = errors.New("delivery channel closed")

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func New(urlForConn string, queueName string) (*RabbitMQClient, error) {
	const op = "rabbitmq.New"

	conn, err := amqp.Dial(urlForConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q, err := ch.QueueDeclare(
		queueName, true, false, false, false, nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: ch,
		queue:   q,
	}, nil
}

// Send publishes msg to the mail queue. Delivery happens in cmd/mail_sender.
func (r *RabbitMQClient) Send(ctx context.Context, msg models.Message) error {
	const op = "rabbitmq.Send"

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		"",
		r.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Handler processes one queued message. A returned error requeues it once;
// a message that fails again after redelivery is dropped (or dead-lettered
// when the queue has a DLX).
type Handler func(ctx context.Context, msg models.Message) error

// Consume reads the queue until ctx is done, acking each message handle
// accepts.
func (r *RabbitMQClient) Consume(ctx context.Context, handle Handler) error {
	const op = "rabbitmq.Consume"

	if err := r.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	deliveries, err := r.channel.ConsumeWithContext(ctx, r.queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}

				return fmt.Errorf("%s: %w", op, ErrChannelClosed)
			}

			if err := settle(ctx, d, d.Body, d.Redelivered, handle); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(ctx context.Context, ack acknowledger, body []byte, redelivered bool, handle Handler) error {
	var msg models.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		// malformed payloads would loop forever if requeued
		return ack.Nack(false, false)
	}

	if err := handle(ctx, msg); err != nil {
		// a second failure is treated as permanent so it cannot block the queue
		return ack.Nack(false, !redelivered)
	}

	return ack.Ack(false)
}

func (r *RabbitMQClient) Close() {
	_ = r.channel.Close()
	_ = r.conn.Close()
}
