package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/onboardtransit/onboard/pkg/planner"
	"github.com/onboardtransit/onboard/pkg/timetable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, ":3333", config.Server.ListenAddress)
	assert.Equal(t, 15*time.Second, config.Realtime.VehicleInterval)
	assert.Equal(t, 24*time.Hour, config.Static.RefreshInterval)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	contents := `
server:
  listenAddress: ":8080"
static:
  bundleURL: "https://transit.example.com/gtfs.zip"
realtime:
  vehiclePositionsURL: "https://transit.example.com/vehicles.pb"
  vehicleInterval: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", config.Server.ListenAddress)
	assert.Equal(t, "https://transit.example.com/gtfs.zip", config.Static.BundleURL)
	assert.Equal(t, 10*time.Second, config.Realtime.VehicleInterval)

	// Unset values keep their defaults.
	assert.Equal(t, 30*time.Second, config.Realtime.TripUpdateInterval)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("ONBOARD_LISTEN_ADDRESS", ":9999")
	t.Setenv("ONBOARD_VEHICLE_INTERVAL", "5s")
	t.Setenv("ONBOARD_ALERT_INTERVAL", "90")

	config, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, ":9999", config.Server.ListenAddress)
	assert.Equal(t, 5*time.Second, config.Realtime.VehicleInterval)
	assert.Equal(t, 90*time.Second, config.Realtime.AlertInterval)
}

func TestPlannerTunablesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	contents := `
planner:
  maxRounds: 3
  walkRadius: 800
  walkSpeed: 1.4
  walkMultiplier: 2
  maxItineraries: 5
  diversityPasses: 8
  transferRadius: 250
  arriveByOffsets: [15, 45]
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	config, err := Load(path)
	require.NoError(t, err)

	options := config.Planner.Options()
	assert.Equal(t, 3, options.MaxRounds)
	assert.Equal(t, 800.0, options.WalkRadius)
	assert.Equal(t, 1.4, options.WalkSpeed)
	assert.Equal(t, 2.0, options.WalkMultiplier)
	assert.Equal(t, 5, options.MaxItineraries)
	assert.Equal(t, 8, options.MaxDiversityPasses)
	assert.Equal(t, []int{15, 45}, options.ArriveByOffsets)

	// Unset values keep the planner defaults.
	assert.Equal(t, 60, options.MinTransferSeconds)

	indexOptions := config.Planner.IndexOptions()
	assert.Equal(t, 1.4, indexOptions.WalkSpeed)
	assert.Equal(t, 250.0, indexOptions.TransferRadius)
}

func TestPlannerTunablesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, planner.DefaultOptions(), config.Planner.Options())
	assert.Equal(t, timetable.DefaultIndexOptions(), config.Planner.IndexOptions())
}

func TestPlannerEnvironmentOverrides(t *testing.T) {
	t.Setenv("ONBOARD_PLANNER_MAX_ROUNDS", "2")
	t.Setenv("ONBOARD_PLANNER_WALK_RADIUS", "1000")

	config, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	options := config.Planner.Options()
	assert.Equal(t, 2, options.MaxRounds)
	assert.Equal(t, 1000.0, options.WalkRadius)
}

func TestLoadRejectsBadURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	contents := `
static:
  bundleURL: "not a url"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
