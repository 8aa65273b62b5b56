// Package amqp carries mirror records over RabbitMQ so the web process does
// not talk to the spreadsheet directly.
package amqp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"smartledger/internal/core"
	"smartledger/internal/log"
	ports "smartledger/internal/sheets"
)

var _ ports.EntryMirror = (*Client)(nil)

// Handler processes one decoded message.
type Handler func(ctx context.Context, msg *MirrorMessage) error

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	logger       *log.Logger

	// amqp091 channels must not interleave publishes
	pubMu sync.Mutex
}

func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name on a direct exchange
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Mirror publishes the record for the worker. Delivery to the spreadsheet
// happens later and its outcome is not reported back.
func (c *Client) Mirror(ctx context.Context, rec core.SyncRecord) error {
	body, err := NewMirrorMessage(rec).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c.pubMu.Lock()
	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	c.pubMu.Unlock()
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.DebugContext(ctx, "Published mirror message",
		log.FieldOperation, log.OpPublish,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// Consume delivers messages to handler until ctx is cancelled or the
// broker closes the channel.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming mirror messages", "queue", c.queueName)
	return ConsumeDeliveries(ctx, msgs, handler, c.logger)
}

// ConsumeDeliveries runs the ack loop over an arbitrary delivery stream.
// Every delivery is settled exactly once: acked after the handler runs,
// whatever its result, or rejected without requeue when undecodable.
func ConsumeDeliveries(ctx context.Context, msgs <-chan amqp091.Delivery, handler Handler, logger *log.Logger) error {
	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			handleDelivery(ctx, delivery, handler, logger)
		}
	}
}

func handleDelivery(ctx context.Context, delivery amqp091.Delivery, handler Handler, logger *log.Logger) {
	msg, err := MirrorMessageFromJSON(delivery.Body)
	if err != nil {
		logger.ErrorContext(ctx, "Dropping undecodable message", log.FieldOperation, log.OpConsume, log.FieldError, err)
		if nerr := delivery.Nack(false, false); nerr != nil {
			logger.ErrorContext(ctx, "Nack failed", log.FieldError, nerr)
		}
		return
	}

	if err := handler(ctx, msg); err != nil {
		// no retry: the remote log is best-effort
		logger.WarnContext(ctx, "Mirror forwarding failed, dropping message",
			log.FieldOperation, log.OpConsume, log.FieldError, err)
	}
	if err := delivery.Ack(false); err != nil {
		logger.ErrorContext(ctx, "Ack failed", log.FieldError, err)
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Ping reports whether the broker connection is still open.
func (c *Client) Ping(_ context.Context) error {
	if c.conn == nil || c.conn.IsClosed() {
		return fmt.Errorf("AMQP connection closed")
	}
	return nil
}
