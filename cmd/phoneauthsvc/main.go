package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/you/phoneauthsvc/internal/app"
	"github.com/you/phoneauthsvc/internal/config"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}
	if err := app.Run(cfg); err != nil {
		logger.Fatal().Err(err).Msg("app")
	}
}
