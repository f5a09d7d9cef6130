package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/y2k2/globa/internal/server"
	"github.com/y2k2/globa/internal/server/config"
)

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
