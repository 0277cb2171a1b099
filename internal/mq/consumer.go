package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Imanalii/yitiflow-dashboard/internal/model"
	"github.com/Imanalii/yitiflow-dashboard/internal/store"
)

// SensorConsumer drains vehicle telemetry from RabbitMQ into the store.
// IoT gateways publish readings here instead of calling the HTTP surface;
// both paths end in the same single-row insert.
type SensorConsumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	store   *store.Store
	logger  *zap.Logger
}

type ConsumerConfig struct {
	URL        string
	Exchange   string
	Queue      string
	RoutingKey string
	Prefetch   int
}

func NewSensorConsumer(cfg ConsumerConfig, st *store.Store, logger *zap.Logger) (*SensorConsumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := channel.Qos(cfg.Prefetch, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	if err := channel.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := channel.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := channel.QueueBind(cfg.Queue, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	return &SensorConsumer{
		conn:    conn,
		channel: channel,
		queue:   cfg.Queue,
		store:   st,
		logger:  logger,
	}, nil
}

// Start consumes until the context is cancelled.
func (c *SensorConsumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consume: %w", err)
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					return
				}
				c.handle(ctx, delivery)
			}
		}
	}()
	return nil
}

func (c *SensorConsumer) handle(ctx context.Context, delivery amqp.Delivery) {
	err := c.process(ctx, delivery.Body)
	if err == nil {
		_ = delivery.Ack(false)
		return
	}
	if errors.Is(err, store.ErrStoreUnavailable) {
		// Telemetry must not be lost to a missing store; leave it queued.
		c.logger.Warn("sensor reading requeued, store unavailable")
		_ = delivery.Nack(false, true)
		return
	}
	c.logger.Error("sensor reading dropped", zap.Error(err))
	_ = delivery.Nack(false, false)
}

// process decodes one published reading and inserts it. The payload is the
// same JSON document the sensors.save procedure accepts.
func (c *SensorConsumer) process(ctx context.Context, body []byte) error {
	var insert model.SensorReadingInsert
	if err := json.Unmarshal(body, &insert); err != nil {
		return fmt.Errorf("decode sensor reading: %w", err)
	}
	if insert.VehicleID == 0 || insert.DeviceID == "" || insert.Timestamp.IsZero() {
		return fmt.Errorf("incomplete sensor reading")
	}
	if _, err := c.store.SaveSensorReading(ctx, insert); err != nil {
		return err
	}
	return nil
}

func (c *SensorConsumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
