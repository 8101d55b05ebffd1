// @title                      Registrar API
// @version                    1.0
// @description                Account registration anchored on IPFS and an EVM ledger.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	_ "github.com/recordlink/registrar/docs"
	"github.com/recordlink/registrar/internal/api"
	"github.com/recordlink/registrar/internal/api/handler"
	"github.com/recordlink/registrar/internal/core/service"
	"github.com/recordlink/registrar/internal/infrastructure/config"
	mongodb "github.com/recordlink/registrar/internal/infrastructure/db/mongo"
	redisdb "github.com/recordlink/registrar/internal/infrastructure/db/redis"
	"github.com/recordlink/registrar/internal/infrastructure/ipfs"
	"github.com/recordlink/registrar/internal/infrastructure/ledger"
	"github.com/recordlink/registrar/internal/infrastructure/queue"
	"github.com/recordlink/registrar/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Used until the configured logger exists.
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		boot.Warn().Err(err).Msg("could not read .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, Env: cfg.Env, Service: "registrar"})
	log := logger.Get()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "registrar",
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	accounts := mongodb.NewAccountRepository(db)
	if err := accounts.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- External systems of record ---
	ledgerClient, err := ledger.Dial(ctx, ledger.Config{
		RPCURL:          cfg.Ledger.RPCURL,
		ChainID:         cfg.Ledger.ChainID,
		PrivateKey:      cfg.Ledger.PrivateKey,
		ContractAddress: cfg.Ledger.ContractAddress,
		GasLimit:        cfg.Ledger.GasLimit,
		SubmitTimeout:   cfg.Ledger.SubmitTimeout,
		ConfirmTimeout:  cfg.Ledger.ConfirmTimeout,
	}, log.With().Str("component", "ledger").Logger())
	if err != nil {
		return err
	}
	defer ledgerClient.Close()

	pinata := ipfs.NewPinataClient(ipfs.Config{
		BaseURL:   cfg.Pinata.BaseURL,
		APIKey:    cfg.Pinata.APIKey,
		SecretKey: cfg.Pinata.SecretKey,
		Timeout:   cfg.Pinata.Timeout,
	}, log.With().Str("component", "ipfs").Logger())

	// --- Core ---
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTTTL)
	registration := service.NewRegistrationService(accounts, tokens, pinata, ledgerClient, service.PipelineConfig{
		BcryptCost:     cfg.Auth.BcryptCost,
		PublishTimeout: cfg.Pinata.Timeout,
		GasCeiling:     cfg.Ledger.GasLimit,
	}, log.With().Str("component", "registration").Logger())
	dispatcher := queue.NewDispatcher(cfg.Relink.Workers, cfg.Relink.QueueSize, registration,
		log.With().Str("component", "relink").Logger())

	// --- HTTP ---
	health := handler.NewHealthHandler(
		handler.HealthOptions{Debug: cfg.Development(), Log: log.With().Str("component", "health").Logger()},
		handler.Check{Name: "mongodb", Probe: func(ctx context.Context) error { return mongodb.Ping(ctx, db) }},
		cfg.Mongo.Database,
		handler.Check{Name: "redis", Probe: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		handler.Check{Name: "ledger", Probe: ledgerClient.Ping},
		handler.Check{Name: "ipfs", Probe: pinata.Ping},
	)
	e := api.NewRouter(api.Dependencies{
		Registration: registration,
		Linkage:      registration,
		Tokens:       tokens,
		Publisher:    pinata,
		Ledger:       ledgerClient,
		Records:      ledgerClient,
		RelinkQueue:  dispatcher,
		Health:       health,
		Limiter:      redisdb.NewFixedWindowLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window),
	}, api.Options{
		Log:            log,
		Debug:          cfg.Development(),
		BodyLimit:      cfg.BodyLimit,
		CORSOrigin:     cfg.CORSOrigin,
		Metrics:        true,
		TrustedProxies: cfg.TrustedProxyNets(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})
	return g.Wait()
}
