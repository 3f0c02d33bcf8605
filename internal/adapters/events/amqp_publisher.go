package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"missing-maps-service/internal/platform/obs"
	"missing-maps-service/internal/ports"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange = "missing_maps"

	publishTimeout = 5 * time.Second
)

var ErrPublisherClosed = errors.New("amqp publisher: closed")

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(url string) (channel, io.Closer, error)

// AMQPPublisher publishes resolution events as JSON to a topic exchange with
// routing key missingmaps.<status>.<route_id>. The connection is opened on
// first publish and reopened after a failed publish.
type AMQPPublisher struct {
	url      string
	exchange string
	dial     dialFunc

	mu     sync.RWMutex
	conn   io.Closer
	ch     channel
	closed bool
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url, exchange: DefaultExchange, dial: dialAMQP}
}

func dialAMQP(url string) (channel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, conn, nil
}

func RoutingKey(ev ports.ResolutionEvent) string {
	return "missingmaps." + ev.Status + "." + ev.RouteID
}

func (p *AMQPPublisher) PublishResolution(ctx context.Context, ev ports.ResolutionEvent) (err error) {
	defer obs.Time(ctx, "events.PublishResolution")(&err)

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("publish resolution: marshal: %w", err)
	}

	ch, err := p.channel()
	if err != nil {
		return fmt.Errorf("publish resolution: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(publishCtx, p.exchange, RoutingKey(ev), false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
	})
	if err != nil {
		p.reset(ch)
		return fmt.Errorf("publish resolution route_id=%s: %w", ev.RouteID, err)
	}
	return nil
}

func (p *AMQPPublisher) channel() (channel, error) {
	p.mu.RLock()
	ch, closed := p.ch, p.closed
	p.mu.RUnlock()

	if closed {
		return nil, ErrPublisherClosed
	}
	if ch != nil {
		return ch, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPublisherClosed
	}
	if p.ch != nil {
		return p.ch, nil
	}

	ch, conn, err := p.dial(p.url)
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}

	p.ch, p.conn = ch, conn
	return ch, nil
}

// reset drops ch if it is still the current channel.
func (p *AMQPPublisher) reset(ch channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != ch {
		return
	}
	_ = p.ch.Close()
	_ = p.conn.Close()
	p.ch, p.conn = nil, nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	p.ch, p.conn = nil, nil
	return errors.Join(errs...)
}
