package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dreamina/aigateway/internal/config"
	"github.com/dreamina/aigateway/internal/domain/gateway"
	"github.com/dreamina/aigateway/internal/domain/generation"
	"github.com/dreamina/aigateway/internal/domain/quota"
	"github.com/dreamina/aigateway/internal/domain/task"
	"github.com/dreamina/aigateway/internal/domain/upload"
	"github.com/dreamina/aigateway/internal/middleware"
	"github.com/dreamina/aigateway/internal/pkg/logger"
	"github.com/dreamina/aigateway/internal/pkg/upstream"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting AI generation gateway")

	ledger, err := newLedger(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize quota ledger")
	}
	defer ledger.Close()

	httpClient, err := upstream.NewHTTPClient(toUpstreamProxyConfig(cfg.Proxy), 30*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build upstream HTTP client")
	}

	credCache := newCredentialCache(cfg)

	overrides := upstream.MirrorOverrides{
		DreaminaUS: cfg.DreaminaUSMirror,
		DreaminaHK: cfg.DreaminaHKMirror,
		ImagexUS:   cfg.ImagexUSMirror,
		ImagexHK:   cfg.ImagexHKMirror,
		ImagexCN:   cfg.ImagexCNMirror,
		JimengCN:   cfg.JimengCNMirror,
		CommerceUS: cfg.CommerceUSMirror,
		CommerceHK: cfg.CommerceHKMirror,
	}

	imageHost := upstream.NewImageHost(httpClient, credCache, overrides, 3, 30*time.Second)
	uploader := upload.NewPipeline(imageHost)

	controller := generation.NewController(uploader, ledger, httpClient, overrides)
	runner := generation.NewRunner(controller)

	store := task.NewStore(cfg.TaskRetention)

	timeouts := task.Timeouts{
		task.TypeImageGeneration:  cfg.TaskImageTimeout,
		task.TypeImageComposition: cfg.TaskImageTimeout,
		task.TypeVideoGeneration:  cfg.TaskVideoTimeout,
	}
	scheduler := task.NewScheduler(store, runner, cfg.TaskMaxConcurrent, cfg.TaskTickInterval, timeouts)

	ctx, cancelReaper := context.WithCancel(context.Background())
	store.StartReaper(ctx, time.Hour)
	scheduler.Start()

	handler := gateway.NewHandler(controller, store, scheduler, ledger)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))
	r.Mount("/", handler.Routes())

	rootHandler := middleware.Logger(middleware.Recover(r))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute, // sync generation requests can run long
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quitCh := make(chan os.Signal, 1)
	signal.Notify(quitCh, syscall.SIGINT, syscall.SIGTERM)
	<-quitCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	scheduler.Stop()
	store.StopReaper()
	cancelReaper()

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	loggerCfg := logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	}
	if err := logger.Init(loggerCfg); err != nil {
		log.Error().Err(err).Msg("Failed to initialize logger")
	}
}

func newLedger(cfg *config.Config) (quota.Ledger, error) {
	limits := quota.Limits{
		quota.ServiceImage:  cfg.QuotaImageLimit,
		quota.ServiceVideo:  cfg.QuotaVideoLimit,
		quota.ServiceAvatar: cfg.QuotaAvatarLimit,
	}

	if cfg.QuotaBackend == "postgres" {
		return quota.NewPostgresLedger(cfg.QuotaDatabaseURL, limits)
	}
	return quota.NewJSONLedger(cfg.QuotaDataPath, limits)
}

// newCredentialCache builds the optional Redis-backed upload credential
// cache. Its absence never fails startup: ImageHost treats a nil cache as
// "always re-acquire".
func newCredentialCache(cfg *config.Config) *upstream.CredentialCache {
	if cfg.RedisURL == "" {
		return upstream.NewCredentialCache(nil)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid REDIS_URL, running without upload credential cache")
		return upstream.NewCredentialCache(nil)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Msg("Could not reach Redis, running without upload credential cache")
		return upstream.NewCredentialCache(nil)
	}

	return upstream.NewCredentialCache(client)
}

// toUpstreamProxyConfig narrows config.ProxyConfig to the fields
// internal/pkg/upstream actually dials with.
func toUpstreamProxyConfig(p config.ProxyConfig) upstream.ProxyConfig {
	return upstream.ProxyConfig{
		Enabled: p.Enabled,
		Host:    p.Host,
		Port:    p.Port,
		Type:    p.Type,
		Auth:    p.Auth,
		Bypass:  p.Bypass,
		Timeout: p.Timeout,
	}
}
