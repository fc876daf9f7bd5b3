package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"

	"bookshelf/api"
	"bookshelf/books"
	"bookshelf/storage"
	"bookshelf/userconfig"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Log with filename and line number. This writes to stderr, so it should
	// be thread safe.
	// https://github.com/rs/zerolog/blob/7ccd4c940bf8a02fcc5f10e5475f9d3daff04d57/log/log.go#L13
	log.Logger = log.With().Caller().Logger()

	configPath := flag.String(
		"config",
		"./config.yaml",
		"path to a JSON or YAML file containing your configuration",
	)
	level := flag.String(
		"level",
		"info",
		`log level: "info", "debug", or "warn"`,
	)
	flag.Parse()

	switch *level {
	case "debug":
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	case "warn":
		log.Logger = log.Logger.Level(zerolog.WarnLevel)
	default:
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	log.Info().
		Str("configPath", *configPath).
		Msg("starting the application")

	f, err := os.Open(*configPath)

	if err != nil {
		log.Error().
			Str("config-path", *configPath).
			Err(err).
			Msg("We can't open the application config file")
		os.Exit(1)
	}

	config, err := userconfig.Parse(f)
	f.Close()

	if err != nil {
		log.Error().
			Err(err).
			Msg("Problem parsing your config")
		os.Exit(1)
	}

	checkedConfig, err := config.CheckAndSetDefaults()
	if err != nil {
		log.Error().
			Err(err).
			Msg("Problem validating your config")
		os.Exit(1)
	}

	log.Info().Str("configPath", *configPath).Msg("successfully validated the config")

	db, err := storage.NewBadgerDB(&checkedConfig.Storage)

	if err != nil {
		log.Error().
			Str("storageDir", checkedConfig.Storage.StorageDirPath).
			Err(err).
			Msg("We can't open the book database")
		os.Exit(1)
	}

	// Intercept interrupts so we can close the database cleanly before
	// exiting. One goroutine listens exclusively for interrupts so we can
	// handle them while the HTTP server blocks the main goroutine.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func(c chan os.Signal) {
		<-c
		log.Info().Msg("interrupt: closing the database and exiting")
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("could not close the database")
			os.Exit(1)
		}
		os.Exit(0)
	}(sigCh)

	svc := books.NewService(db, nil)

	log.Info().
		Str("listenAddr", checkedConfig.Server.ListenAddr).
		Msg("serving the book API")

	err = http.ListenAndServe(checkedConfig.Server.ListenAddr, api.NewHandler(svc))

	// ListenAndServe only ever returns a non-nil error
	log.Error().Err(err).Msg("the HTTP server stopped")
	db.Close()
	os.Exit(1)
}
