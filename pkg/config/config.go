// Package config loads the engine configuration from a YAML file with
// ONBOARD_* environment variable overrides.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/onboardtransit/onboard/pkg/planner"
	"github.com/onboardtransit/onboard/pkg/timetable"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	ListenAddress string `yaml:"listenAddress"`
}

type StaticConfig struct {
	BundleURL string `yaml:"bundleURL" validate:"omitempty,url"`

	// CachePath is where the raw zip is kept for offline fallback.
	CachePath       string        `yaml:"cachePath"`
	RefreshInterval time.Duration `yaml:"refreshInterval"`
}

type RealtimeConfig struct {
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	TripUpdatesURL      string `yaml:"tripUpdatesURL" validate:"omitempty,url"`
	ServiceAlertsURL    string `yaml:"serviceAlertsURL" validate:"omitempty,url"`

	VehicleInterval    time.Duration `yaml:"vehicleInterval"`
	TripUpdateInterval time.Duration `yaml:"tripUpdateInterval"`
	AlertInterval      time.Duration `yaml:"alertInterval"`

	FetchTimeout time.Duration `yaml:"fetchTimeout"`
}

// PlannerConfig tunes the journey search and the derived index. Zero values
// fall through to the built-in defaults.
type PlannerConfig struct {
	MaxRounds       int     `yaml:"maxRounds" validate:"omitempty,min=1"`
	WalkRadius      float64 `yaml:"walkRadius" validate:"omitempty,gt=0"`
	WalkSpeed       float64 `yaml:"walkSpeed" validate:"omitempty,gt=0"`
	WalkMultiplier  float64 `yaml:"walkMultiplier" validate:"omitempty,gte=1"`
	MaxItineraries  int     `yaml:"maxItineraries" validate:"omitempty,min=1"`
	DiversityPasses int     `yaml:"diversityPasses"`

	MinTransferSeconds int     `yaml:"minTransferSeconds"`
	TransferRadius     float64 `yaml:"transferRadius" validate:"omitempty,gt=0"`

	// ArriveByOffsets are earlier-departure probe offsets in minutes.
	ArriveByOffsets []int `yaml:"arriveByOffsets"`
}

// Options folds the configured overrides onto the planner defaults.
func (pc PlannerConfig) Options() planner.Options {
	options := planner.DefaultOptions()

	if pc.MaxRounds > 0 {
		options.MaxRounds = pc.MaxRounds
	}
	if pc.WalkRadius > 0 {
		options.WalkRadius = pc.WalkRadius
	}
	if pc.WalkSpeed > 0 {
		options.WalkSpeed = pc.WalkSpeed
	}
	if pc.WalkMultiplier > 0 {
		options.WalkMultiplier = pc.WalkMultiplier
	}
	if pc.MaxItineraries > 0 {
		options.MaxItineraries = pc.MaxItineraries
	}
	if pc.DiversityPasses > 0 {
		options.MaxDiversityPasses = pc.DiversityPasses
	}
	if pc.MinTransferSeconds > 0 {
		options.MinTransferSeconds = pc.MinTransferSeconds
	}
	if len(pc.ArriveByOffsets) > 0 {
		options.ArriveByOffsets = pc.ArriveByOffsets
	}

	return options
}

// IndexOptions folds the configured overrides onto the index defaults. Walk
// speed is shared with the planner so transfer edges stay consistent.
func (pc PlannerConfig) IndexOptions() timetable.IndexOptions {
	options := timetable.DefaultIndexOptions()

	if pc.WalkSpeed > 0 {
		options.WalkSpeed = pc.WalkSpeed
	}
	if pc.TransferRadius > 0 {
		options.TransferRadius = pc.TransferRadius
	}

	return options
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Static   StaticConfig   `yaml:"static"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Planner  PlannerConfig  `yaml:"planner"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddress: ":3333",
		},
		Static: StaticConfig{
			CachePath:       "data/gtfs.zip",
			RefreshInterval: 24 * time.Hour,
		},
		Realtime: RealtimeConfig{
			VehicleInterval:    15 * time.Second,
			TripUpdateInterval: 30 * time.Second,
			AlertInterval:      60 * time.Second,
			FetchTimeout:       30 * time.Second,
		},
	}
}

// Load reads the config file at path, falling back to defaults when the file
// is absent, and applies environment overrides last.
func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, err
		}
	} else if !os.IsNotExist(err) {
		return config, err
	} else {
		log.Info().Str("path", path).Msg("No config file found, using defaults")
	}

	applyEnvironment(&config)

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return config, err
	}

	return config, nil
}

func applyEnvironment(config *Config) {
	overrideString(&config.Server.ListenAddress, "ONBOARD_LISTEN_ADDRESS")
	overrideString(&config.Static.BundleURL, "ONBOARD_STATIC_BUNDLE_URL")
	overrideString(&config.Static.CachePath, "ONBOARD_STATIC_CACHE_PATH")
	overrideString(&config.Realtime.VehiclePositionsURL, "ONBOARD_VEHICLE_POSITIONS_URL")
	overrideString(&config.Realtime.TripUpdatesURL, "ONBOARD_TRIP_UPDATES_URL")
	overrideString(&config.Realtime.ServiceAlertsURL, "ONBOARD_SERVICE_ALERTS_URL")

	overrideDuration(&config.Static.RefreshInterval, "ONBOARD_STATIC_REFRESH_INTERVAL")
	overrideDuration(&config.Realtime.VehicleInterval, "ONBOARD_VEHICLE_INTERVAL")
	overrideDuration(&config.Realtime.TripUpdateInterval, "ONBOARD_TRIP_UPDATE_INTERVAL")
	overrideDuration(&config.Realtime.AlertInterval, "ONBOARD_ALERT_INTERVAL")
	overrideDuration(&config.Realtime.FetchTimeout, "ONBOARD_FETCH_TIMEOUT")

	overrideInt(&config.Planner.MaxRounds, "ONBOARD_PLANNER_MAX_ROUNDS")
	overrideInt(&config.Planner.MaxItineraries, "ONBOARD_PLANNER_MAX_ITINERARIES")
	overrideInt(&config.Planner.DiversityPasses, "ONBOARD_PLANNER_DIVERSITY_PASSES")
	overrideInt(&config.Planner.MinTransferSeconds, "ONBOARD_PLANNER_MIN_TRANSFER_SECONDS")
	overrideFloat(&config.Planner.WalkRadius, "ONBOARD_PLANNER_WALK_RADIUS")
	overrideFloat(&config.Planner.WalkSpeed, "ONBOARD_PLANNER_WALK_SPEED")
	overrideFloat(&config.Planner.WalkMultiplier, "ONBOARD_PLANNER_WALK_MULTIPLIER")
	overrideFloat(&config.Planner.TransferRadius, "ONBOARD_PLANNER_TRANSFER_RADIUS")
}

func overrideString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func overrideInt(target *int, key string) {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*target = value
	}
}

func overrideFloat(target *float64, key string) {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		*target = value
	}
}

func overrideDuration(target *time.Duration, key string) {
	value := os.Getenv(key)
	if value == "" {
		return
	}

	if parsed, err := time.ParseDuration(value); err == nil {
		*target = parsed
		return
	}

	// Bare numbers are treated as seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		*target = time.Duration(seconds) * time.Second
	}
}
