package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/y2k2/globa/internal/server/config"
	"github.com/y2k2/globa/internal/server/events"
	"github.com/y2k2/globa/internal/server/models"
	"github.com/y2k2/globa/internal/server/push"
	"github.com/y2k2/globa/internal/server/repositories/repomanager"
)

// eventPublisher is satisfied by *events.Publisher.
type eventPublisher interface {
	Publish(ctx context.Context, kind events.Kind, ev events.Event) error
	Close() error
}

type notificationLister interface {
	List(ctx context.Context, userID int64, count, page int) ([]models.Notification, error)
}

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// seams replaced in tests
	newPublisher func(*config.Config) eventPublisher
	openDB       func(*config.Config) (*sql.DB, error)
	newGateway   func(context.Context, *config.Config) (push.Gateway, error)
	repomanager  repomanager.RepositoryManager
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		newPublisher: func(cfg *config.Config) eventPublisher {
			return events.NewPublisher(cfg)
		},
		openDB: func(cfg *config.Config) (*sql.DB, error) {
			return sql.Open("pgx", cfg.DatabaseDSN)
		},
		newGateway:  push.NewGateway,
		repomanager: repomanager.NewPostgresRepositoryManager(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var args []string
		if c.configFlag != nil {
			if path := strings.TrimSpace(*c.configFlag); path != "" {
				args = []string{"-c", path}
			}
		}
		cfg, err := config.Load(args)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) withDB(fn func(cfg *config.Config, db *sql.DB) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	db, err := c.openDB(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	return fn(cfg, db)
}
