package main

import (
	"context"
	"log"
	"os"

	// keep the timezone database inside the binary so community timezones
	// resolve on scratch containers
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/hearthbot/hearth/internal/bot"
	"github.com/hearthbot/hearth/internal/bot/config"
)

func main() {
	// optional .env for local development
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	if cfg.Token == "" {
		log.Printf("missing %s environment variable", config.TokenEnv)
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := bot.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
