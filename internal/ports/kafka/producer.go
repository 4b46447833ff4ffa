package kafka

import "context"

// IEventProducer interface for publishing order events to Kafka
type IEventProducer interface {
	// SendOrderEvent publishes one order lifecycle event keyed by order id.
	SendOrderEvent(ctx context.Context, key string, value []byte) error
	Close() error
}
