package broker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by operations on a closed broker.
var ErrClosed = errors.New("broker is closed")

// InMemoryBroker keeps every published message per topic and replays the log
// to each new subscriber, like a consumer group reading from the start.
type InMemoryBroker struct {
	mu     sync.Mutex
	logs   map[string][]Message
	subs   map[string][]*subscriber
	closed bool
}

type subscriber struct {
	ch   chan Message
	done <-chan struct{}
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		logs: make(map[string][]Message),
		subs: make(map[string][]*subscriber),
	}
}

// Publish appends the message to the topic log and delivers it to every live
// subscriber. It blocks while a subscriber's buffer is full.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	msg := Message{
		Topic:     topic,
		Key:       key,
		Value:     append([]byte(nil), value...),
		Offset:    int64(len(b.logs[topic])),
		Timestamp: time.Now().UnixMilli(),
	}
	b.logs[topic] = append(b.logs[topic], msg)

	for _, sub := range b.subs[topic] {
		select {
		case sub.ch <- msg:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe replays the topic log and then follows new messages until ctx is done.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	history := b.logs[topic]
	sub := &subscriber{
		ch:   make(chan Message, len(history)+100),
		done: ctx.Done(),
	}
	for _, msg := range history {
		sub.ch <- msg
	}
	b.subs[topic] = append(b.subs[topic], sub)

	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			b.unsubscribe(topic, sub)
		}()
	}

	return sub.ch, nil
}

// ReadAll returns a copy of the topic log.
func (b *InMemoryBroker) ReadAll(ctx context.Context, topic string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	return append([]Message(nil), b.logs[topic]...), nil
}

func (b *InMemoryBroker) unsubscribe(topic string, sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s == sub {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			close(sub.ch)
			return
		}
	}
}

// Close closes every subscriber channel.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for topic, subs := range b.subs {
		for _, sub := range subs {
			close(sub.ch)
		}
		delete(b.subs, topic)
	}
	return nil
}
