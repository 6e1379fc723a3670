// Package topology describes the set of services under test.
package topology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Service is one chaos target.
type Service struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`

	// ReadPath is the business endpoint used for load and traffic
	// generation. Defaults to /health.
	ReadPath string `yaml:"read_path"`
}

// Topology is the full set of services under test.
type Topology struct {
	Services []Service `yaml:"services"`

	// JaegerURL is the trace query API base URL.
	JaegerURL string `yaml:"jaeger_url"`
}

// Load reads a topology from a YAML file.
func Load(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology: %w", err)
	}

	var topo Topology
	if err := yaml.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}
	if len(topo.Services) == 0 {
		return nil, fmt.Errorf("topology %s defines no services", path)
	}

	for i := range topo.Services {
		if topo.Services[i].ReadPath == "" {
			topo.Services[i].ReadPath = "/health"
		}
	}

	return &topo, nil
}

// Default builds the local four-service topology, honoring the
// service URL environment variables when set.
func Default() *Topology {
	return &Topology{
		Services: []Service{
			{Name: "cart", URL: envOr("CART_URL", "http://localhost:8081"), ReadPath: "/products"},
			{Name: "payment", URL: envOr("PAYMENT_URL", "http://localhost:8082"), ReadPath: "/health"},
			{Name: "inventory", URL: envOr("INVENTORY_URL", "http://localhost:8083"), ReadPath: "/inventory"},
			{Name: "frontend", URL: envOr("FRONTEND_URL", "http://localhost:8080"), ReadPath: "/api/status"},
		},
		JaegerURL: envOr("JAEGER_URL", "http://localhost:16686"),
	}
}

// Find returns the named service.
func (t *Topology) Find(name string) (Service, bool) {
	for _, s := range t.Services {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}

// Names returns the service names in topology order.
func (t *Topology) Names() []string {
	names := make([]string, 0, len(t.Services))
	for _, s := range t.Services {
		names = append(names, s.Name)
	}
	return names
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
