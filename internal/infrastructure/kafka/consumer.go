package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/nft-marketplace/internal/infrastructure/observability"
	"github.com/segmentio/kafka-go"
)

// Consumer aggregates marketplace activity from the event topic into Prometheus counters.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
	}
}

// Consume blocks until ctx is cancelled or the reader is closed.
func (c *Consumer) Consume(ctx context.Context) {
	topic := c.reader.Config().Topic
	slog.Info("Kafka consumer started", "topic", topic)
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, context.Canceled) {
				slog.Info("Kafka consumer stopped", "topic", topic)
				return
			}
			slog.Error("failed to read Kafka message", "topic", topic, "error", err)
			continue
		}

		if err := HandleMessage(msg); err != nil {
			slog.Error("skipping Kafka message", "topic", msg.Topic, "offset", msg.Offset, "key", string(msg.Key), "error", err)
		}
	}
}

// HandleMessage decodes one event and updates the activity counters.
func HandleMessage(msg kafka.Message) error {
	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	switch event.Type {
	case EventNFTPurchased:
		if event.UserID == 0 || event.NFTID == 0 {
			return fmt.Errorf("invalid purchase event: missing user_id or nft_id")
		}
		if event.Amount.IsNegative() {
			return fmt.Errorf("invalid purchase event: negative amount %s", event.Amount)
		}
		amount, _ := event.Amount.Float64()
		observability.SalesVolume.Add(amount)
		slog.Debug("purchase event consumed", "transaction_id", event.TransactionID, "user_id", event.UserID, "nft_id", event.NFTID, "amount", event.Amount)

	case EventNFTMinted:
		if event.NFTID == 0 {
			return fmt.Errorf("invalid mint event: missing nft_id")
		}
		slog.Debug("mint event consumed", "nft_id", event.NFTID, "rarity", event.Rarity)

	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}

	observability.EventsConsumed.WithLabelValues(string(event.Type)).Inc()
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
