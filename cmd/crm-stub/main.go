package main

import (
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ma-crm/crm-go/internal/config"
	"github.com/ma-crm/crm-go/internal/stubserver"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	server := stubserver.New(stubserver.Config{})

	log.Info().Str("addr", cfg.StubAddr).Msg("stub CRM backend starting")
	if err := http.ListenAndServe(cfg.StubAddr, server); err != nil {
		log.Fatal().Err(err).Msg("ListenAndServe error")
	}
}
