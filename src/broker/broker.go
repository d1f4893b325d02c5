// Package broker publishes generated config sets to a message broker so that
// downstream tooling can pick up a new generation without reading the repository.
package broker

import "context"

// Broker abstracts message publishing and consumption.
type Broker interface {
	// Publish sends a message to a topic. key selects the partition on
	// Redpanda/Kafka and is carried as-is by the in-memory broker.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe returns a channel of messages on topic, starting from the
	// oldest retained message. The channel is closed when ctx is done or the
	// broker is closed. groupID names the consumer group on Redpanda/Kafka.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// ReadAll returns every retained message on topic up to the topic's end at
	// the time of the call, in offset order within each partition. It joins no
	// consumer group and commits nothing. A topic that does not exist is empty.
	ReadAll(ctx context.Context, topic string) ([]Message, error)

	// Close shuts down the broker connection gracefully.
	Close() error
}

// Message represents a consumed message from a broker.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64
}
