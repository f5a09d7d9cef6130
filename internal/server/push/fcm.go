package push

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/y2k2/globa/internal/server/config"
)

// maxBatchSize is the FCM limit for a single SendEach call.
const maxBatchSize = 500

// messagingClient is the subset of *messaging.Client used by FCMGateway.
type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendDryRun(ctx context.Context, message *messaging.Message) (string, error)
	SendEach(ctx context.Context, messages []*messaging.Message) (*messaging.BatchResponse, error)
	SendEachDryRun(ctx context.Context, messages []*messaging.Message) (*messaging.BatchResponse, error)
}

// FCMGateway sends through Firebase Cloud Messaging.
type FCMGateway struct {
	client  messagingClient
	dryRun  bool
	timeout time.Duration
}

// newMessagingClient is a seam for tests.
var newMessagingClient = func(ctx context.Context, projectID, credentialsFile string) (messagingClient, error) {
	var fbCfg *firebase.Config
	if projectID != "" {
		fbCfg = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, fbCfg, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}
	return client, nil
}

func NewFCMGateway(ctx context.Context, cfg *config.Config) (*FCMGateway, error) {
	client, err := newMessagingClient(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	if err != nil {
		return nil, err
	}
	return &FCMGateway{client: client, dryRun: cfg.PushDryRun, timeout: cfg.PushTimeout}, nil
}

// NewGateway returns an FCM gateway when credentials are configured and Noop otherwise.
func NewGateway(ctx context.Context, cfg *config.Config) (Gateway, error) {
	if !cfg.PushEnabled() {
		return Noop{}, nil
	}
	return NewFCMGateway(ctx, cfg)
}

func (g *FCMGateway) Send(ctx context.Context, m Message) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	send := g.client.Send
	if g.dryRun {
		send = g.client.SendDryRun
	}
	if _, err := send(ctx, toFCM(m)); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}

// SendBatch submits msgs in chunks of at most 500. A chunk-level error aborts
// the remaining chunks and is returned along with the counts gathered so far.
func (g *FCMGateway) SendBatch(ctx context.Context, msgs []Message) (BatchResult, error) {
	var res BatchResult
	if len(msgs) == 0 {
		return res, nil
	}

	sendEach := g.client.SendEach
	if g.dryRun {
		sendEach = g.client.SendEachDryRun
	}

	for start := 0; start < len(msgs); start += maxBatchSize {
		end := min(start+maxBatchSize, len(msgs))

		chunk := make([]*messaging.Message, 0, end-start)
		for _, m := range msgs[start:end] {
			chunk = append(chunk, toFCM(m))
		}

		cctx, cancel := g.withTimeout(ctx)
		resp, err := sendEach(cctx, chunk)
		cancel()
		if err != nil {
			return res, fmt.Errorf("fcm send batch: %w", err)
		}
		res.SuccessCount += resp.SuccessCount
		res.FailureCount += resp.FailureCount
	}
	return res, nil
}

func (g *FCMGateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func toFCM(m Message) *messaging.Message {
	return &messaging.Message{
		Token: m.Token,
		Notification: &messaging.Notification{
			Title: m.Title,
			Body:  m.Body,
		},
	}
}
