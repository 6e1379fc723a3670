// Package main provides the entrypoint for a faultmesh service instance.
// One binary serves every role; SERVICE_ROLE selects which service this
// process runs as.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/faultmesh/faultmesh/internal/api"
	"github.com/faultmesh/faultmesh/internal/cache"
	"github.com/faultmesh/faultmesh/internal/cart"
	"github.com/faultmesh/faultmesh/internal/config"
	"github.com/faultmesh/faultmesh/internal/database"
	"github.com/faultmesh/faultmesh/internal/fault"
	"github.com/faultmesh/faultmesh/internal/health"
	"github.com/faultmesh/faultmesh/internal/inventory"
	"github.com/faultmesh/faultmesh/internal/metrics"
	"github.com/faultmesh/faultmesh/internal/orders"
	"github.com/faultmesh/faultmesh/internal/payment"
	"github.com/faultmesh/faultmesh/internal/resilience"
	"github.com/faultmesh/faultmesh/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", cfg.ServiceName()).
		Str("version", Version).
		Logger()

	log.Info().
		Str("role", string(cfg.Role)).
		Str("build_time", BuildTime).
		Msg("starting faultmesh service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName(),
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	faults := fault.NewRegistry(log)

	m := metrics.New(cfg.ServiceName())
	m.StartUpdater(ctx, faults, cfg.MetricsInterval)

	peerClient := resilience.NewClient(resilience.NoRetryClientConfig(cfg.ServiceName(), 10*time.Second))

	routerCfg := api.RouterConfig{
		ServiceName: cfg.ServiceName(),
		Logger:      log,
		Metrics:     m,
		Faults:      faults,
		Baseline:    health.RuntimeBaseline(),
	}

	switch cfg.Role {
	case config.RoleCart:
		wireCart(ctx, cfg, log, faults, peerClient, &routerCfg)
	case config.RolePayment:
		routerCfg.PaymentService = payment.NewService(cfg.InventoryURL, peerClient, log)
	case config.RoleInventory:
		wireInventory(ctx, cfg, log, faults, &routerCfg)
	case config.RoleFrontend:
		routerCfg.FrontendPeers = map[string]string{
			"cart":      cfg.CartURL,
			"payment":   cfg.PaymentURL,
			"inventory": cfg.InventoryURL,
		}
		routerCfg.PeerClient = peerClient
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// wireCart connects the cart role's Redis store and order database.
// Either dependency may be down in a chaos demo, so connection failure
// degrades to an in-memory fallback instead of refusing to start.
func wireCart(ctx context.Context, cfg config.Config, log zerolog.Logger, faults *fault.Registry, peerClient *resilience.Client, routerCfg *api.RouterConfig) {
	var store cart.Store
	redisClient, err := cache.Connect(ctx, cache.Config{Addr: cfg.RedisAddr})
	if err != nil {
		log.Warn().Err(err).Msg("redis unreachable, falling back to in-memory cart store")
		store = cart.NewInMemoryStore()
	} else {
		store = cart.NewRedisStore(redisClient, faults)
		routerCfg.CheckRedis = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
	}

	var orderRepo orders.Repository
	dbCfg := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbCfg)
	if err != nil {
		log.Warn().Err(err).Msg("database unreachable, falling back to in-memory order store")
		orderRepo = orders.NewInMemoryRepository()
	} else {
		pgRepo := orders.NewPostgresRepository(pool)
		if err := pgRepo.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize order schema")
		}
		orderRepo = pgRepo
		routerCfg.CheckDatabase = pool.Ping
		log.Info().Str("host", dbCfg.Host).Str("database", dbCfg.Database).Msg("database connected")
	}

	routerCfg.CartService = cart.NewService(store, orderRepo, faults, peerClient, cfg.InventoryURL, cfg.PaymentURL, log)
}

// wireInventory connects the inventory role's product database, seeding
// the catalog on first start.
func wireInventory(ctx context.Context, cfg config.Config, log zerolog.Logger, faults *fault.Registry, routerCfg *api.RouterConfig) {
	var repo inventory.Repository
	dbCfg := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbCfg)
	if err != nil {
		log.Warn().Err(err).Msg("database unreachable, falling back to in-memory catalog")
		repo = inventory.NewInMemoryRepository()
	} else {
		pgRepo := inventory.NewPostgresRepository(pool)
		if err := pgRepo.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize product schema")
		}
		repo = pgRepo
		routerCfg.CheckDatabase = pool.Ping
		log.Info().Str("host", dbCfg.Host).Str("database", dbCfg.Database).Msg("database connected")
	}

	routerCfg.InventoryService = inventory.NewService(repo, faults)
}
