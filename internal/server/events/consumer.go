package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/y2k2/globa/internal/common"
	"github.com/y2k2/globa/internal/logging"
	"github.com/y2k2/globa/internal/server/config"
)

const maxRetryBackoff = 5 * time.Second

// Handler processes decoded pipeline events. Returned errors are retried.
type Handler interface {
	Succeeded(ctx context.Context, ev Event) error
	Failed(ctx context.Context, ev Event) error
}

// reader is the subset of *kafka.Reader used by the consumer.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads both pipeline topics in one consumer group. Each worker owns
// a reader, so a partition (and therefore a record) is served by exactly one
// goroutine at a time.
type Consumer struct {
	handler      Handler
	logger       logging.Logger
	workers      int
	retries      int
	retryBackoff time.Duration
	topics       map[string]Kind
	newReader    func() reader
}

func NewConsumer(cfg *config.Config, h Handler, logger logging.Logger) *Consumer {
	topics := []string{cfg.KafkaSuccessTopic, cfg.KafkaFailureTopic}
	return &Consumer{
		handler:      h,
		logger:       logger.With("module", "consumer"),
		workers:      max(cfg.KafkaWorkers, 1),
		retries:      cfg.HandlerRetries,
		retryBackoff: cfg.HandlerRetryBackoff,
		topics: map[string]Kind{
			cfg.KafkaSuccessTopic: KindSucceeded,
			cfg.KafkaFailureTopic: KindFailed,
		},
		newReader: func() reader {
			return kafka.NewReader(kafka.ReaderConfig{
				Brokers:     cfg.KafkaBrokers,
				GroupID:     cfg.KafkaGroupID,
				GroupTopics: topics,
			})
		},
	}
}

// Run blocks until ctx is cancelled or a reader fails.
func (c *Consumer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	c.logger.Info(ctx, "Starting consumer", "workers", c.workers)

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			if err := c.work(ctx, worker); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancel()
			}
		}(i)
	}

	wg.Wait()
	c.logger.Info(context.Background(), "Consumer stopped")
	return firstErr
}

func (c *Consumer) work(ctx context.Context, worker int) error {
	r := c.newReader()
	defer func() {
		if err := r.Close(); err != nil {
			c.logger.Warn(ctx, "reader close failed", "worker", worker, "error", err)
		}
	}()

	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("worker %d fetch: %w", worker, err)
		}

		if err := c.handle(ctx, msg); err != nil {
			// cancelled mid-handling; leave uncommitted for redelivery
			return nil
		}

		if err := r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("worker %d commit: %w", worker, err)
		}
	}
}

// handle returns an error only when ctx was cancelled. Every other outcome,
// including exhausted retries, lets the message be committed.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	log := c.logger.With(
		"correlationId", uuid.NewString(),
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
	)

	kind, ok := c.topics[msg.Topic]
	if !ok {
		log.Warn(ctx, "message from unknown topic dropped")
		return nil
	}

	ev, err := Decode(msg.Value)
	if err != nil {
		log.Warn(ctx, "malformed event dropped", "error", err)
		return nil
	}

	handle := c.handler.Succeeded
	if kind == KindFailed {
		handle = c.handler.Failed
	}

	err = retry(ctx, c.retries, c.retryBackoff, func() error {
		return handle(ctx, ev)
	})
	switch {
	case err == nil:
		log.Debug(ctx, "event handled", "kind", kind.String(), "userId", ev.UserID, "recordId", ev.RecordID)
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, common.ErrorInvalidEvent):
		log.Warn(ctx, "invalid event dropped", "userId", ev.UserID, "recordId", ev.RecordID, "error", err)
	default:
		log.Error(ctx, "event handling failed", "kind", kind.String(), "userId", ev.UserID, "recordId", ev.RecordID,
			"attempts", c.retries+1, "error", err)
	}
	return nil
}

// retry runs op up to retries+1 times with doubling delays capped at maxRetryBackoff.
func retry(ctx context.Context, retries int, backoff time.Duration, op func() error) error {
	delay := backoff
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, common.ErrorInvalidEvent) || attempt == retries {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= maxRetryBackoff {
			delay = next
		}
	}
	return lastErr
}
