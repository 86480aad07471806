package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/volo-impact/backend/internal/config"
	"github.com/volo-impact/backend/internal/engine"
	"github.com/volo-impact/backend/internal/models"
	"github.com/volo-impact/backend/internal/router"
)

func main() {
	// A .env file is optional, local development convenience only
	_ = godotenv.Load()

	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	// Create data directory
	dataDir := filepath.Join(".", "data")
	err := os.MkdirAll(dataDir, os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Connect to the database and migrate the schema
	err = models.Connect("data/gorm.db")
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	e := engine.New(models.DB, config.Load())

	// Sweep expired credits once an hour. The sweep is idempotent, a
	// missed or doubled run does no harm.
	c := cron.New()
	_, err = c.AddFunc("@hourly", func() {
		count, err := e.ExpireOverdueCredits(time.Now().In(time.UTC))
		if err != nil {
			log.Error().Err(err).Msg("credit expiry sweep failed")
			return
		}

		if count > 0 {
			log.Info().Int("count", count).Msg("expired overdue credits")
		}
	})
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	c.Start()
	defer c.Stop()

	r, err := router.Router(e)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	if err := r.Run(); err != nil {
		log.Fatal().Msg(err.Error())
	}
}
