// Package api provides the HTTP surface for the faultmesh services.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/faultmesh/faultmesh/internal/api/handler"
	"github.com/faultmesh/faultmesh/internal/api/middleware"
	"github.com/faultmesh/faultmesh/internal/cart"
	"github.com/faultmesh/faultmesh/internal/fault"
	"github.com/faultmesh/faultmesh/internal/health"
	"github.com/faultmesh/faultmesh/internal/inventory"
	"github.com/faultmesh/faultmesh/internal/metrics"
	"github.com/faultmesh/faultmesh/internal/payment"
	"github.com/faultmesh/faultmesh/internal/resilience"
)

// RouterConfig holds configuration for the router. Exactly one of the
// role service fields is set per process; the chaos, health and metrics
// surface is present on every role.
type RouterConfig struct {
	ServiceName string
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	Faults      *fault.Registry
	Baseline    health.Baseline

	CheckRedis    handler.DependencyCheck
	CheckDatabase handler.DependencyCheck

	// Role services, nil when the role does not serve them.
	CartService      *cart.Service
	PaymentService   *payment.Service
	InventoryService *inventory.Service

	// Frontend role only: peers to aggregate in /api/status.
	FrontendPeers map[string]string
	PeerClient    *resilience.Client
}

// NewRouter creates a new chi router with all routes configured.
// Fault injection applies to business routes only: the chaos, health
// and metrics endpoints stay reachable during an injected failure so
// the operator can always observe and restore the target.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "faultmesh"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics)) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	opsHandler := handler.NewOpsHandler(serviceName, cfg.Faults, cfg.Baseline, cfg.CheckRedis, cfg.CheckDatabase)
	chaosHandler := handler.NewChaosHandler(cfg.Faults, cfg.Logger)

	chaosRateLimit := middleware.RateLimitByIP(middleware.ChaosRateLimit)       // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 600 req/min

	// Control surface: never subject to fault injection.
	r.Get("/health", opsHandler.HealthCheck)
	if cfg.Metrics != nil {
		r.Method("GET", "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/chaos", func(r chi.Router) {
		r.Use(chaosRateLimit)
		r.Post("/stress-cpu", chaosHandler.StressCPU)
		r.Post("/slow-response", chaosHandler.SlowResponse)
		r.Post("/trigger-error", chaosHandler.TriggerError)
		r.Post("/memory-leak", chaosHandler.MemoryLeak)
		r.Post("/simulate-db-failure", chaosHandler.SimulateDBFailure)
		r.Post("/simulate-redis-latency", chaosHandler.SimulateRedisLatency)
		r.Post("/restore-db", chaosHandler.RestoreDB)
		r.Post("/restore-redis", chaosHandler.RestoreRedis)
	})

	// Business surface: injected faults apply here.
	r.Group(func(r chi.Router) {
		r.Use(standardRateLimit)
		r.Use(middleware.FaultInjection(cfg.Faults))

		if cfg.CartService != nil {
			cartHandler := handler.NewCartHandler(cfg.CartService, cfg.Logger)
			r.Get("/products", cartHandler.Products)
			r.Post("/cart/add", cartHandler.Add)
			r.Post("/cart/checkout", cartHandler.Checkout)
			r.Route("/cart/{userID}", func(r chi.Router) {
				r.Get("/", cartHandler.Get)
				r.Delete("/", cartHandler.Clear)
				r.Delete("/item/{itemID}", cartHandler.RemoveItem)
			})
			r.Get("/orders/{userID}", cartHandler.Orders)
		}

		if cfg.PaymentService != nil {
			paymentHandler := handler.NewPaymentHandler(cfg.PaymentService, cfg.Logger)
			r.Post("/payment/process", paymentHandler.Process)
			r.Post("/payment/refund", paymentHandler.Refund)
		}

		if cfg.InventoryService != nil {
			inventoryHandler := handler.NewInventoryHandler(cfg.InventoryService, cfg.Logger)
			r.Get("/inventory", inventoryHandler.List)
			r.Get("/inventory/{itemID}", inventoryHandler.Get)
			r.Post("/inventory/reserve", inventoryHandler.Reserve)
			r.Post("/inventory/restock", inventoryHandler.Restock)
		}

		if cfg.FrontendPeers != nil {
			frontendHandler := handler.NewFrontendHandler(cfg.FrontendPeers, cfg.PeerClient, cfg.Logger)
			r.Get("/api/status", frontendHandler.Status)
		}
	})

	return r
}
