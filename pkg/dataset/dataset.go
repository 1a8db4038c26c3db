// Package dataset acquires the static timetable bundle: HTTP download with
// an on-disk cache of the raw archive, falling back to the cached copy when
// the network is unavailable.
package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/onboardtransit/onboard/pkg/config"
	"github.com/onboardtransit/onboard/pkg/timetable"
	"github.com/rs/zerolog/log"
)

var ErrNoBundle = errors.New("no bundle available from network or cache")

type Manager struct {
	config config.StaticConfig
	client *http.Client
}

func NewManager(staticConfig config.StaticConfig) *Manager {
	return &Manager{
		config: staticConfig,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch returns the raw bundle bytes, preferring a fresh download and
// falling back to the cached archive. A successful download refreshes the
// cache before returning.
func (manager *Manager) Fetch(ctx context.Context) ([]byte, error) {
	data, err := manager.download(ctx)
	if err == nil {
		manager.writeCache(data)
		return data, nil
	}

	log.Warn().Err(err).Msg("Bundle download failed, trying cached copy")

	cached, cacheErr := os.ReadFile(manager.config.CachePath)
	if cacheErr != nil {
		return nil, ErrNoBundle
	}

	log.Info().Str("path", manager.config.CachePath).Msg("Using cached bundle")

	return cached, nil
}

// Load fetches the bundle and parses it into a schedule.
func (manager *Manager) Load(ctx context.Context) (*timetable.Schedule, error) {
	data, err := manager.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	return timetable.ParseBundle(bytes.NewReader(data))
}

func (manager *Manager) download(ctx context.Context) ([]byte, error) {
	if manager.config.BundleURL == "" {
		return nil, errors.New("no bundle url configured")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", manager.config.BundleURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := manager.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bundle download returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// writeCache replaces the cached archive. Write then rename so a crashed
// write never leaves a truncated cache behind.
func (manager *Manager) writeCache(data []byte) {
	path := manager.config.CachePath
	if path == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Warn().Err(err).Msg("Failed to create cache directory")
		return
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		log.Warn().Err(err).Msg("Failed to write bundle cache")
		return
	}

	if err := os.Rename(tempPath, path); err != nil {
		log.Warn().Err(err).Msg("Failed to replace bundle cache")
		return
	}

	log.Info().Str("path", path).Int("bytes", len(data)).Msg("Cached bundle")
}
