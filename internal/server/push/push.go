// Package push delivers device notifications.
//
// Delivery is best-effort: callers inspect the returned values and log, they
// never abort their own work because a push could not be delivered.
package push

import (
	"context"
)

// Message is one notification addressed to one device token.
type Message struct {
	Token string
	Title string
	Body  string
}

// BatchResult counts per-message outcomes of a batch submission.
type BatchResult struct {
	SuccessCount int
	FailureCount int
}

// Gateway is a push transport.
//
// SendBatch returns an error only when the batch as a whole could not be
// submitted; individual delivery failures are counted in BatchResult.
type Gateway interface {
	Send(ctx context.Context, m Message) error
	SendBatch(ctx context.Context, msgs []Message) (BatchResult, error)
}

// Result is the outcome of a dispatch attempt as seen by the caller.
type Result struct {
	Sent    int
	Failed  int
	Skipped bool
	Err     error
}

// Delivered reports whether at least one message reached the transport successfully.
func (r Result) Delivered() bool {
	return r.Err == nil && r.Sent > 0
}

// Noop discards every message. It is used when no push credentials are configured.
type Noop struct{}

func (Noop) Send(context.Context, Message) error { return nil }

func (Noop) SendBatch(_ context.Context, msgs []Message) (BatchResult, error) {
	return BatchResult{SuccessCount: len(msgs)}, nil
}
