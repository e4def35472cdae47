// Package services wires the configuration, session storage, auth store, API
// client and the per-resource services into one ready-to-use bundle.
package services

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ma-crm/crm-go/internal/api"
	"github.com/ma-crm/crm-go/internal/auth"
	"github.com/ma-crm/crm-go/internal/config"
	"github.com/ma-crm/crm-go/internal/infrastructure/redis"
	"github.com/ma-crm/crm-go/internal/services/companies"
	"github.com/ma-crm/crm-go/internal/services/contacts"
	"github.com/ma-crm/crm-go/internal/services/deals"
	"github.com/ma-crm/crm-go/internal/services/documents"
	"github.com/ma-crm/crm-go/internal/services/interactions"
	"github.com/ma-crm/crm-go/internal/services/ndas"
	"github.com/ma-crm/crm-go/internal/services/stages"
	"github.com/ma-crm/crm-go/internal/services/tasks"
	"github.com/ma-crm/crm-go/internal/services/users"
)

type Services struct {
	Auth         *auth.Store
	Deals        *deals.Service
	Companies    *companies.Service
	Contacts     *contacts.Service
	Stages       *stages.Service
	Tasks        *tasks.Service
	Interactions *interactions.Service
	Documents    *documents.Service
	NDAs         *ndas.Service
	Users        *users.Service
}

// Initialize builds all services from the configuration.
func Initialize(cfg *config.Config) (*Services, error) {
	log.Info().Msg("Initializing core services")

	storage := newSessionStorage(cfg)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	authService := auth.NewService(cfg.AuthURL, cfg.APIURL, httpClient)
	store, err := auth.NewStore(authService, storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth store: %w", err)
	}

	client := api.NewClient(cfg.APIURL, store, httpClient)
	log.Info().
		Str("api_url", cfg.APIURL).
		Str("auth_url", cfg.AuthURL).
		Msg("API client initialized")

	return &Services{
		Auth:         store,
		Deals:        deals.NewService(client),
		Companies:    companies.NewService(client),
		Contacts:     contacts.NewService(client),
		Stages:       stages.NewService(client),
		Tasks:        tasks.NewService(client),
		Interactions: interactions.NewService(client),
		Documents:    documents.NewService(client),
		NDAs:         ndas.NewService(client),
		Users:        users.NewService(client),
	}, nil
}

// newSessionStorage picks the storage backend: Redis when configured and
// reachable, otherwise the session file, otherwise memory only.
func newSessionStorage(cfg *config.Config) auth.Storage {
	if cfg.RedisURL != "" {
		if redisService := redis.NewService(cfg.RedisURL, cfg.RedisPassword); redisService != nil {
			log.Info().Str("key", cfg.SessionKey).Msg("Using Redis session storage")
			return auth.NewRedisStorage(redisService, cfg.SessionKey)
		}
		log.Warn().Msg("Redis configured but unreachable - falling back to local storage")
	}

	if cfg.SessionFile != "" {
		log.Info().Str("path", cfg.SessionFile).Msg("Using file session storage")
		return auth.NewFileStorage(cfg.SessionFile)
	}

	log.Info().Msg("No session storage configured - sessions will not survive restarts")
	return auth.NewMemoryStorage()
}
