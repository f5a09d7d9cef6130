// Package server wires the notifier together: database and migrations, push
// and object-storage clients, the Kafka consumer and the gRPC/HTTP endpoints.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/y2k2/globa/internal/logging"
	"github.com/y2k2/globa/internal/server/config"
	"github.com/y2k2/globa/internal/server/events"
	gs "github.com/y2k2/globa/internal/server/grpc"
	"github.com/y2k2/globa/internal/server/httpapi"
	"github.com/y2k2/globa/internal/server/push"
	"github.com/y2k2/globa/internal/server/repositories/repomanager"
	"github.com/y2k2/globa/internal/server/services"
	"github.com/y2k2/globa/internal/server/storage"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	consumer   *events.Consumer
	grpcServer *gs.GRPCServer
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	gateway, err := push.NewGateway(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("push gateway init error: %w", err)
	}
	if !c.PushEnabled() {
		logger.Warn(ctx, "push credentials not configured, notifications will not be delivered")
	}

	store, err := storage.NewObjectStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	dispatcher := services.NewDispatcher(db, rm, gateway, logger)
	completion := services.NewCompletionService(db, rm, dispatcher, store, logger)
	notifications := services.NewNotificationService(db, rm)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		consumer:   events.NewConsumer(c, completion, logger),
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger),
		httpServer: httpapi.NewServer(c.EndpointAddrHTTP, logger, notifications, c.SecretKey),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until a signal arrives or one of the components fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.consumer.Run(ctx); err != nil {
			app.logger.Error(ctx, "consumer stopped", "error", err)
		}
		app.grpcServer.SetServing(false)
		cancelFunc()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.grpcServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "db close failed", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
