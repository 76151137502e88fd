package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange is the topic exchange events are published to.
const Exchange = "certifica.events"

var errPublisherClosed = errors.New("amqp publisher closed")

// AMQPPublisher publishes events as persistent JSON messages to a topic
// exchange, keyed by event type. A channel or connection lost to a broker
// error is reopened on the next Publish.
type AMQPPublisher struct {
	url      string
	exchange string
	logger   *slog.Logger

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

// DialAMQP connects to url and declares the durable topic exchange.
func DialAMQP(url string, logger *slog.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &AMQPPublisher{url: url, exchange: Exchange, logger: logger}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.open(); err != nil {
		return nil, err
	}
	return p, nil
}

// open (re)establishes the connection when it is gone and opens a channel
// with the exchange declared. Callers hold p.mu.
func (p *AMQPPublisher) open() error {
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return fmt.Errorf("dial amqp: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		p.exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	p.ch = ch
	go p.watch(ch, ch.NotifyClose(make(chan *amqp.Error, 1)))
	return nil
}

// watch drops ch once the broker closes it so the next Publish reopens.
func (p *AMQPPublisher) watch(ch *amqp.Channel, closes <-chan *amqp.Error) {
	reason, ok := <-closes
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == ch {
		p.ch = nil
	}
	if ok && reason != nil && !p.closed {
		p.logger.Warn("amqp channel closed", "code", reason.Code, "reason", reason.Reason)
	}
}

// Publish sends e with its type as routing key.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errPublisherClosed
	}

	for attempt := 0; ; attempt++ {
		if p.ch == nil || p.ch.IsClosed() {
			if err := p.open(); err != nil {
				return fmt.Errorf("publish %s: %w", e.Type, err)
			}
		}
		err = p.ch.PublishWithContext(ctx, p.exchange, e.Type, false, false, msg)
		if err == nil {
			return nil
		}
		if !errors.Is(err, amqp.ErrClosed) || attempt > 0 {
			return fmt.Errorf("publish %s: %w", e.Type, err)
		}
		p.ch = nil
	}
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
