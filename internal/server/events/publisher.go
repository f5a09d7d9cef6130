package events

import (
	"context"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/y2k2/globa/internal/server/config"
)

// writer is the subset of *kafka.Writer used by Publisher.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits pipeline events. Messages are keyed by record id so that
// every event of a record lands on the same partition.
type Publisher struct {
	w      writer
	topics map[Kind]string
}

func NewPublisher(cfg *config.Config) *Publisher {
	return &Publisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		topics: map[Kind]string{
			KindSucceeded: cfg.KafkaSuccessTopic,
			KindFailed:    cfg.KafkaFailureTopic,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, kind Kind, ev Event) error {
	topic, ok := p.topics[kind]
	if !ok {
		return fmt.Errorf("no topic for %s events", kind)
	}
	value, err := Encode(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(strconv.FormatInt(ev.RecordID, 10)),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
