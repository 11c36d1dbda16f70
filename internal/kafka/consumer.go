package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// TicketEventHandler processes one decoded ticket event.
type TicketEventHandler func(ctx context.Context, event TicketEvent) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader messageReader
	logger *slog.Logger
}

func NewConsumer(brokers []string, groupID, topic string, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		logger: logger,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume commits each message only after handler accepted it, so a
// handler error leaves the offset in place for the next run. Messages that
// do not decode are logged and committed.
func (c *Consumer) Consume(ctx context.Context, handler TicketEventHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		event, err := DecodeTicketEvent(msg)
		if err != nil {
			c.logger.WarnContext(ctx, "skip undecodable ticket event",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		} else if err := handler(ctx, event); err != nil {
			return fmt.Errorf("handle %s event at offset %d: %w", event.Type, msg.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

func DecodeTicketEvent(msg kafka.Message) (TicketEvent, error) {
	var event TicketEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return TicketEvent{}, fmt.Errorf("decode ticket event: %w", err)
	}
	if event.Type == "" {
		return TicketEvent{}, fmt.Errorf("decode ticket event: missing type")
	}
	return event, nil
}
