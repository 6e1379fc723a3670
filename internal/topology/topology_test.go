package topology_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultmesh/faultmesh/internal/topology"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.yaml")
	content := `services:
  - name: cart
    url: http://localhost:8081
    read_path: /products
  - name: payment
    url: http://localhost:8082
jaeger_url: http://localhost:16686
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	topo, err := topology.Load(path)
	require.NoError(t, err)

	require.Len(t, topo.Services, 2)
	assert.Equal(t, []string{"cart", "payment"}, topo.Names())
	assert.Equal(t, "http://localhost:16686", topo.JaegerURL)

	cart, ok := topo.Find("cart")
	require.True(t, ok)
	assert.Equal(t, "/products", cart.ReadPath)

	// Omitted read paths fall back to the health endpoint.
	payment, ok := topo.Find("payment")
	require.True(t, ok)
	assert.Equal(t, "/health", payment.ReadPath)

	_, ok = topo.Find("ghost")
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	_, err := topology.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("services: []\n"), 0o600))
	_, err = topology.Load(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no services")
}

func TestDefault(t *testing.T) {
	t.Setenv("CART_URL", "http://cart.test:9000")

	topo := topology.Default()
	cart, ok := topo.Find("cart")
	require.True(t, ok)
	assert.Equal(t, "http://cart.test:9000", cart.URL)

	assert.Equal(t, []string{"cart", "payment", "inventory", "frontend"}, topo.Names())
}
