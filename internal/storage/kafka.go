package storage

import (
	"context"
	"encoding/json"
	"strconv"

	"mealplanner/internal/domain"

	"github.com/segmentio/kafka-go"
)

const OrderEventsTopic = "order-events"

// KafkaPublisher emits order lifecycle events. Keying by restaurant ID keeps
// one restaurant's events in order within a partition.
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, ev domain.OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(ev.RestaurantID)),
		Value: payload,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.Writer.Close()
}
