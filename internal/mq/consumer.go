package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
	Keys     []string
	Prefetch int
	Tag      string
}

type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	tag   string
}

// NewConsumer declares a durable queue bound to cfg.Keys on cfg.Exchange.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	conn, ch, err := open(cfg.URL, cfg.Exchange)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	q, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("declare queue: %w", err))
	}
	for _, rk := range cfg.Keys {
		if err := ch.QueueBind(q.Name, rk, cfg.Exchange, false, nil); err != nil {
			return fail(fmt.Errorf("bind %s: %w", rk, err))
		}
	}
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 8
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fail(fmt.Errorf("set qos: %w", err))
	}
	return &Consumer{conn: conn, ch: ch, queue: q.Name, tag: cfg.Tag}, nil
}

// Deliveries starts consuming with manual acks.
func (c *Consumer) Deliveries(ctx context.Context) (<-chan amqp.Delivery, error) {
	return c.ch.ConsumeWithContext(ctx, c.queue, c.tag, false, false, false, false, nil)
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
