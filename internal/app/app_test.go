package app

import (
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/apidemo/internal/config"
)

func TestNewWiresTheAPI(t *testing.T) {
	t.Setenv("PRODUCT_ID_POLICY", "sequence")
	t.Setenv("GRPC_ADDRESS", "localhost:0")

	app, err := New(config.WithDisableFlagsParsing(true))
	require.NoError(t, err)
	defer app.Close()
	require.NotNil(t, app.healthServer)
	defer app.healthServer.Stop()

	_, port, err := net.SplitHostPort(app.healthServer.Addr().String())
	require.NoError(t, err)
	assert.NotEqual(t, "0", port, "port 0 is resolved to a free port")

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, err := resty.New().R().Get(srv.URL + "/v1/hello")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.JSONEq(t, `{"message":"hello world"}`, string(resp.Body()))

	resp, err = resty.New().R().Delete(srv.URL + "/v1/products/1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())

	resp, err = resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"name":"Lamp","price":10,"category":"Home"}`).
		Post(srv.URL + "/v1/products")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), `"id":2`, "the sequence policy does not reuse id 1")
}

func TestNewLoadsSeedFile(t *testing.T) {
	seedFile := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte("users:\n  - id: 10\n    name: Grace\nproducts: []\n"), 0o644))
	t.Setenv("SEED_FILE", seedFile)

	app, err := New(config.WithDisableFlagsParsing(true))
	require.NoError(t, err)
	defer app.Close()

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, err := resty.New().R().Get(srv.URL + "/users/10")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.JSONEq(t, `{"id":10,"name":"Grace"}`, string(resp.Body()))

	resp, err = resty.New().R().Get(srv.URL + "/v1/products")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(resp.Body()))
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	_, err := New(config.WithDisableFlagsParsing(true))
	assert.Error(t, err)
}
