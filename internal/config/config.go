// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Role identifies which service a faultmesh process runs as.
type Role string

const (
	RoleCart      Role = "cart"
	RolePayment   Role = "payment"
	RoleInventory Role = "inventory"
	RoleFrontend  Role = "frontend"
)

// Valid reports whether the role names a known service.
func (r Role) Valid() bool {
	switch r {
	case RoleCart, RolePayment, RoleInventory, RoleFrontend:
		return true
	}
	return false
}

// Config holds the runtime configuration for one service instance.
type Config struct {
	// Role selects which service this process runs as.
	Role Role

	// Port is the HTTP listen port.
	Port string

	// Environment is the deployment environment name.
	Environment string

	// RedisAddr is the host:port of the Redis instance backing carts.
	RedisAddr string

	// JaegerURL is the base URL of the Jaeger query API.
	JaegerURL string

	// OTLPEndpoint is the OTLP gRPC collector endpoint for trace export.
	OTLPEndpoint string

	// TracingEnabled toggles OTLP trace export.
	TracingEnabled bool

	// Peer service base URLs. A service only dials peers its role needs.
	CartURL      string
	PaymentURL   string
	InventoryURL string

	// MetricsInterval is how often derived gauges are refreshed.
	MetricsInterval time.Duration
}

// FromEnv loads configuration from environment variables, applying
// development defaults for anything unset.
func FromEnv() (Config, error) {
	role := Role(getEnvOrDefault("SERVICE_ROLE", string(RoleFrontend)))
	if !role.Valid() {
		return Config{}, fmt.Errorf("unknown SERVICE_ROLE %q", role)
	}

	interval, err := time.ParseDuration(getEnvOrDefault("METRICS_INTERVAL", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_INTERVAL: %w", err)
	}

	return Config{
		Role:            role,
		Port:            getEnvOrDefault("APP_PORT", defaultPort(role)),
		Environment:     getEnvOrDefault("APP_ENV", "development"),
		RedisAddr:       getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		JaegerURL:       getEnvOrDefault("JAEGER_URL", "http://localhost:16686"),
		OTLPEndpoint:    getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TracingEnabled:  os.Getenv("OTEL_ENABLED") == "true",
		CartURL:         getEnvOrDefault("CART_URL", "http://localhost:8081"),
		PaymentURL:      getEnvOrDefault("PAYMENT_URL", "http://localhost:8082"),
		InventoryURL:    getEnvOrDefault("INVENTORY_URL", "http://localhost:8083"),
		MetricsInterval: interval,
	}, nil
}

// ServiceName returns the fully qualified service name for logs and traces.
func (c Config) ServiceName() string {
	return "faultmesh-" + string(c.Role)
}

func defaultPort(role Role) string {
	switch role {
	case RoleCart:
		return "8081"
	case RolePayment:
		return "8082"
	case RoleInventory:
		return "8083"
	default:
		return "8080"
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
