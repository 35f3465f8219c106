package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mentormatch/mentormatch/core"
)

const writeTimeout = 10 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes domain events to a kafka topic in the background.
type KafkaPublisher struct {
	writer messageWriter
	logger core.Logger
	source string
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

var _ core.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(conf *core.Config, logger core.Logger) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(conf.Kafka.Brokers...),
		Topic:        conf.Kafka.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}, conf.AppName, logger)
}

func newKafkaPublisher(w messageWriter, source string, logger core.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logger, source: source}
}

// New returns a kafka publisher when brokers are configured, a no-op one otherwise.
// The returned func flushes pending events and closes the connection.
func New(conf *core.Config, logger core.Logger) (core.EventPublisher, func() error) {
	if len(conf.Kafka.Brokers) == 0 {
		return core.NewNoopPublisher(), func() error { return nil }
	}
	p := NewKafkaPublisher(conf, logger)
	return p, p.Close
}

func (p *KafkaPublisher) message(ev core.Event) (kafka.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.Itoa(ev.UserID)), // keeps a user's events ordered
		Value: data,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
			{Key: "source", Value: []byte(p.source)},
		},
	}, nil
}

// Publish never blocks the caller: failures are logged.
func (p *KafkaPublisher) Publish(_ context.Context, events ...core.Event) {
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		msg, err := p.message(ev)
		if err != nil {
			p.logger.Error(fmt.Sprintf("marshalling event %s: %v", ev.Type, err), err)
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn(fmt.Sprintf("dropping %d event(s): publisher closed", len(msgs)))
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			p.logger.Error(fmt.Sprintf("publishing %d event(s): %v", len(msgs), err), err)
		}
	}()
}

// Close waits for pending events then closes the writer.
// Events published afterwards are dropped.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
	return p.writer.Close()
}
