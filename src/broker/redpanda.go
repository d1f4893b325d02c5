package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"

	"tpgci/src/logger"
)

// ClientID identifies tpgci connections on the cluster.
const ClientID = "tpgci"

// RedpandaBroker is a Kafka-compatible broker implementation using franz-go.
type RedpandaBroker struct {
	client    *kgo.Client
	brokers   []string
	log       logger.Logger
	mu        sync.RWMutex
	consumers map[string]*kgo.Client // topic:groupID -> consumer client
	closed    bool
}

// NewRedpandaBroker connects a producer to the seed brokers
// (e.g. ["localhost:19092"]).
func NewRedpandaBroker(brokers []string, log logger.Logger) (*RedpandaBroker, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(ClientID),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}

	return &RedpandaBroker{
		client:    client,
		brokers:   brokers,
		log:       log,
		consumers: make(map[string]*kgo.Client),
	}, nil
}

// Publish produces one record and waits for it to be acknowledged.
func (b *RedpandaBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	record := &kgo.Record{Topic: topic, Key: []byte(key), Value: value}
	if err := b.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce to %s: %w", topic, err)
	}
	b.log.Debug("[RedpandaBroker] Produced %s key=%s (%d bytes)", topic, key, len(value))
	return nil
}

// Subscribe joins groupID on topic, starting at the oldest offset when the
// group has no commits yet.
func (b *RedpandaBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	consumerKey := topic + ":" + groupID
	if _, exists := b.consumers[consumerKey]; exists {
		return nil, fmt.Errorf("consumer already exists for topic %s and group %s", topic, groupID)
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(b.brokers...),
		kgo.ClientID(ClientID),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}
	b.consumers[consumerKey] = consumer

	out := make(chan Message, 100)
	go b.consume(ctx, consumer, out)
	return out, nil
}

func (b *RedpandaBroker) consume(ctx context.Context, consumer *kgo.Client, out chan<- Message) {
	defer close(out)

	for ctx.Err() == nil {
		fetches := consumer.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			b.log.Error("[RedpandaBroker] Fetch error on %s/%d: %v", topic, partition, err)
		})

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			select {
			case out <- toMessage(record):
			case <-ctx.Done():
				return
			}
		}
	}
}

// ReadAll reads topic from the log start of every partition up to the end
// offsets listed when the call starts.
func (b *RedpandaBroker) ReadAll(ctx context.Context, topic string) ([]Message, error) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	start, err := b.listOffsets(ctx, topic, offsetEarliest)
	if err != nil {
		return nil, err
	}
	end, err := b.listOffsets(ctx, topic, offsetLatest)
	if err != nil {
		return nil, err
	}

	from := make(map[int32]kgo.Offset)
	remaining := make(map[int32]int64) // partition -> end offset not yet reached
	for partition, last := range end {
		if first := start[partition]; last > first {
			from[partition] = kgo.NewOffset().At(first)
			remaining[partition] = last
		}
	}
	if len(remaining) == 0 {
		return nil, nil
	}

	reader, err := kgo.NewClient(
		kgo.SeedBrokers(b.brokers...),
		kgo.ClientID(ClientID),
		kgo.ConsumePartitions(map[string]map[int32]kgo.Offset{topic: from}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer reader.Close()

	var msgs []Message
	for len(remaining) > 0 {
		fetches := reader.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			b.log.Error("[RedpandaBroker] Fetch error on %s/%d: %v", topic, partition, err)
		})
		fetches.EachRecord(func(record *kgo.Record) {
			last, ok := remaining[record.Partition]
			if !ok || record.Offset >= last {
				return
			}
			msgs = append(msgs, toMessage(record))
			if record.Offset+1 >= last {
				delete(remaining, record.Partition)
			}
		})
	}
	b.log.Debug("[RedpandaBroker] Read %d records from %s", len(msgs), topic)
	return msgs, nil
}

// ListOffsets timestamps.
const (
	offsetLatest   int64 = -1
	offsetEarliest int64 = -2
)

// listOffsets returns the offset at ts for every partition of topic. A topic
// that does not exist has no partitions.
func (b *RedpandaBroker) listOffsets(ctx context.Context, topic string, ts int64) (map[int32]int64, error) {
	metaReq := kmsg.NewPtrMetadataRequest()
	metaReq.AllowAutoTopicCreation = false
	metaTopic := kmsg.NewMetadataRequestTopic()
	metaTopic.Topic = kmsg.StringPtr(topic)
	metaReq.Topics = append(metaReq.Topics, metaTopic)

	meta, err := metaReq.RequestWith(ctx, b.client)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", topic, err)
	}
	if len(meta.Topics) != 1 {
		return nil, fmt.Errorf("failed to describe %s: got %d topics", topic, len(meta.Topics))
	}
	if err := kerr.ErrorForCode(meta.Topics[0].ErrorCode); err != nil {
		if errors.Is(err, kerr.UnknownTopicOrPartition) {
			return map[int32]int64{}, nil
		}
		return nil, fmt.Errorf("failed to describe %s: %w", topic, err)
	}

	req := kmsg.NewPtrListOffsetsRequest()
	reqTopic := kmsg.NewListOffsetsRequestTopic()
	reqTopic.Topic = topic
	for _, p := range meta.Topics[0].Partitions {
		reqPartition := kmsg.NewListOffsetsRequestTopicPartition()
		reqPartition.Partition = p.Partition
		reqPartition.Timestamp = ts
		reqTopic.Partitions = append(reqTopic.Partitions, reqPartition)
	}
	req.Topics = append(req.Topics, reqTopic)

	resp, err := req.RequestWith(ctx, b.client)
	if err != nil {
		return nil, fmt.Errorf("failed to list offsets of %s: %w", topic, err)
	}
	offsets := make(map[int32]int64)
	for _, t := range resp.Topics {
		for _, p := range t.Partitions {
			if err := kerr.ErrorForCode(p.ErrorCode); err != nil {
				return nil, fmt.Errorf("failed to list offsets of %s/%d: %w", topic, p.Partition, err)
			}
			offsets[p.Partition] = p.Offset
		}
	}
	return offsets, nil
}

func toMessage(record *kgo.Record) Message {
	return Message{
		Topic:     record.Topic,
		Key:       string(record.Key),
		Value:     record.Value,
		Offset:    record.Offset,
		Partition: record.Partition,
		Timestamp: record.Timestamp.UnixMilli(),
	}
}

// Close shuts down the producer and all consumers.
func (b *RedpandaBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for key, consumer := range b.consumers {
		consumer.Close()
		delete(b.consumers, key)
	}
	b.client.Close()
	return nil
}
