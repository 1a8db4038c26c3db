package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/onboardtransit/onboard/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDownloadsAndCaches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bundle-bytes"))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "cache", "gtfs.zip")
	manager := NewManager(config.StaticConfig{
		BundleURL: server.URL,
		CachePath: cachePath,
	})

	data, err := manager.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("bundle-bytes"), data)

	cached, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("bundle-bytes"), cached)
}

func TestFetchFallsBackToCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "gtfs.zip")
	require.NoError(t, os.WriteFile(cachePath, []byte("stale-bundle"), 0644))

	manager := NewManager(config.StaticConfig{
		BundleURL: server.URL,
		CachePath: cachePath,
	})

	data, err := manager.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("stale-bundle"), data)
}

func TestFetchNoBundleAnywhere(t *testing.T) {
	manager := NewManager(config.StaticConfig{
		CachePath: filepath.Join(t.TempDir(), "missing.zip"),
	})

	_, err := manager.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoBundle)
}
