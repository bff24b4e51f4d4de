// Package config loads the YAML configuration that drives one run of the
// IPS CLI: input/output paths, worker count, and the MCDA tuning knobs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/runziggurat/ips/pkg/ips"
)

// GeoIPConfig configures the geolocation cache/provider chain.
type GeoIPConfig struct {
	CacheFilePath   string   `yaml:"cache_file_path,omitempty"`
	KeepInCacheDays int      `yaml:"keep_in_cache_days"`
	Providers       []string `yaml:"providers"`
}

// Weights mirrors ips.Weights with YAML tags.
type Weights struct {
	Location    float64 `yaml:"location"`
	Degree      float64 `yaml:"degree"`
	Eigenvector float64 `yaml:"eigenvector"`
	Betweenness float64 `yaml:"betweenness"`
	Closeness   float64 `yaml:"closeness"`
}

// Configuration is the full on-disk shape of an IPS run.
type Configuration struct {
	InputFilePath         string      `yaml:"input_file_path"`
	PeerFilePath          string      `yaml:"peer_file_path"`
	VanillaPeerFilePath   string      `yaml:"vanilla_peer_file_path,omitempty"`
	StateFilePath         string      `yaml:"state_file_path"`
	LogPath               string      `yaml:"log_path,omitempty"`
	NetworkType           string      `yaml:"network_type,omitempty"`
	WorkerCount           int         `yaml:"worker_count"`
	Geolocation           string      `yaml:"geolocation"`
	GeolocationMinMaxKm   float64     `yaml:"geolocation_minmax_distance_km"`
	ChangeAtLeast         int         `yaml:"change_at_least"`
	ChangeNoMore          int         `yaml:"change_no_more"`
	BridgeThresholdAdjust float64     `yaml:"bridge_threshold_adjustment"`
	Weights               Weights     `yaml:"mcda_weights"`
	GeoIP                 GeoIPConfig `yaml:"geoip"`
}

// Default returns the configuration the reference implementation ships
// with by default.
func Default() Configuration {
	d := ips.DefaultConfig()
	return Configuration{
		Geolocation:           "prefer_closer",
		GeolocationMinMaxKm:   d.GeolocationMinMaxDistanceKm,
		ChangeAtLeast:         d.ChangeAtLeast,
		ChangeNoMore:          d.ChangeNoMore,
		BridgeThresholdAdjust: d.BridgeThresholdAdjustment,
		Weights: Weights{
			Location:    d.Weights.Location,
			Degree:      d.Weights.Degree,
			Eigenvector: d.Weights.Eigenvector,
			Betweenness: d.Weights.Betweenness,
			Closeness:   d.Weights.Closeness,
		},
		GeoIP: GeoIPConfig{
			KeepInCacheDays: 30,
			Providers:       []string{"ipapi"},
		},
	}
}

// Load reads and parses a YAML configuration file, starting from Default()
// so a config file only needs to override what it cares about.
func Load(path string) (Configuration, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Configuration{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ToIpsConfig translates the on-disk shape into the algorithm-facing
// ips.Config, resolving the geolocation mode string.
func (c Configuration) ToIpsConfig() (ips.Config, error) {
	mode, err := parseGeolocationMode(c.Geolocation)
	if err != nil {
		return ips.Config{}, err
	}
	return ips.Config{
		Geolocation:                 mode,
		GeolocationMinMaxDistanceKm: c.GeolocationMinMaxKm,
		ChangeAtLeast:               c.ChangeAtLeast,
		ChangeNoMore:                c.ChangeNoMore,
		BridgeThresholdAdjustment:   c.BridgeThresholdAdjust,
		Workers:                     c.WorkerCount,
		Weights: ips.Weights{
			Location:    c.Weights.Location,
			Degree:      c.Weights.Degree,
			Eigenvector: c.Weights.Eigenvector,
			Betweenness: c.Weights.Betweenness,
			Closeness:   c.Weights.Closeness,
		},
	}, nil
}

func parseGeolocationMode(s string) (ips.GeolocationMode, error) {
	switch s {
	case "", "off":
		return ips.GeolocationOff, nil
	case "prefer_closer":
		return ips.GeolocationPreferCloser, nil
	case "prefer_distant":
		return ips.GeolocationPreferDistant, nil
	default:
		return 0, fmt.Errorf("config: unknown geolocation mode %q", s)
	}
}
