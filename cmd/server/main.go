package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ruralcare/telemed/internal/config"
	assistHandler "github.com/ruralcare/telemed/internal/handler/assist"
	messageHandler "github.com/ruralcare/telemed/internal/handler/message"
	syncHandler "github.com/ruralcare/telemed/internal/handler/sync"
	triageHandler "github.com/ruralcare/telemed/internal/handler/triage"
	"github.com/ruralcare/telemed/internal/middleware"
	"github.com/ruralcare/telemed/internal/router"
	"github.com/ruralcare/telemed/internal/store"
	"github.com/ruralcare/telemed/pkg/messaging"
	redisbroker "github.com/ruralcare/telemed/pkg/messaging/redis"
	"github.com/ruralcare/telemed/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	m := metrics.NewMetrics("telemed", "server")
	broker := newBroker(cfg)
	defer broker.Close()

	packets := store.NewPacketStore(m)
	messages := store.NewMessageStore()

	r := router.NewRouter(
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORSConfig:     middleware.DefaultCORSConfig(),
		},
		syncHandler.NewHandler(packets, broker, m),
		triageHandler.NewHandler(m),
		messageHandler.NewHandler(messages, broker),
		assistHandler.NewHandler(),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

// newBroker connects to Redis when configured and falls back to the
// no-op broker otherwise, so a clinic box without Redis still serves.
func newBroker(cfg *config.Config) messaging.Broker {
	if cfg.Redis.URL == "" {
		log.Info().Msg("redis not configured, events disabled")
		return messaging.NewNopBroker()
	}

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, events disabled")
		return messaging.NewNopBroker()
	}
	return broker
}
