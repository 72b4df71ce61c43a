package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"wishlist/internal/mail"
)

var ErrBadMessage = errors.New("malformed mail message")

// RabbitMQClient publishes mail messages to a durable queue and, in the
// mail_sender process, consumes them again.
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue

	// RetryDelay is how long a failed delivery is held before it is requeued.
	RetryDelay time.Duration
}

const DefaultRetryDelay = 5 * time.Second

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
		conn:       conn,
		channel:    ch,
		queue:      q,
		RetryDelay: DefaultRetryDelay,
	}, nil
}

// SendEmail queues msg for delivery by mail_sender.
func (r *RabbitMQClient) SendEmail(ctx context.Context, msg mail.Message) error {
	const op = "rabbitmq.SendEmail"

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

// StartReading hands every delivery to handle until ctx is done or the
// channel closes. Deliveries handle fails with ErrBadMessage are dropped.
// Other failures are requeued after RetryDelay. A failed ack ends reading.
func (r *RabbitMQClient) StartReading(ctx context.Context, handle func(ctx context.Context, body []byte) error) error {
	const op = "rabbitmq.StartReading"

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
				return nil
			}

			herr := handle(ctx, d.Body)
			if herr != nil && !errors.Is(herr, ErrBadMessage) {
				wait(ctx, r.RetryDelay)
			}
			if err := settle(d, herr); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}
}

// settle acks d when handling succeeded, drops it when it can never succeed
// and requeues it otherwise.
func settle(d amqp.Delivery, handleErr error) error {
	switch {
	case handleErr == nil:
		return d.Ack(false)
	case errors.Is(handleErr, ErrBadMessage):
		return d.Reject(false)
	default:
		return d.Nack(false, true)
	}
}

func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Decode parses a queued message.
func Decode(body []byte) (mail.Message, error) {
	var msg mail.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return mail.Message{}, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	if msg.To == "" || msg.Subject == "" {
		return mail.Message{}, fmt.Errorf("%w: missing recipient or subject", ErrBadMessage)
	}
	return msg, nil
}

func (r *RabbitMQClient) Close() {
	_ = r.channel.Close()
	_ = r.conn.Close()
}
