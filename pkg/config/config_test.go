package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runziggurat/ips/pkg/ips"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "prefer_closer", cfg.Geolocation)
	assert.Equal(t, 1000.0, cfg.GeolocationMinMaxKm)
	assert.Equal(t, 1, cfg.ChangeAtLeast)
	assert.Equal(t, 2, cfg.ChangeNoMore)
	assert.Equal(t, 1.25, cfg.BridgeThresholdAdjust)
	assert.Equal(t, 0.3, cfg.Weights.Location)
	assert.Equal(t, 0.25, cfg.Weights.Degree)
	assert.Equal(t, 0.1, cfg.Weights.Eigenvector)
	assert.Equal(t, 0.25, cfg.Weights.Betweenness)
	assert.Equal(t, 0.1, cfg.Weights.Closeness)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
input_file_path: crawl.json
peer_file_path: peers.json
state_file_path: state.json
worker_count: 4
bridge_threshold_adjustment: 2.0
mcda_weights:
  location: 0.5
  degree: 0.2
  eigenvector: 0.1
  betweenness: 0.1
  closeness: 0.1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "crawl.json", cfg.InputFilePath)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 2.0, cfg.BridgeThresholdAdjust)
	assert.Equal(t, 0.5, cfg.Weights.Location)
	// Unset fields keep Default()'s values.
	assert.Equal(t, "prefer_closer", cfg.Geolocation)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestToIpsConfig(t *testing.T) {
	cfg := Default()
	ipsCfg, err := cfg.ToIpsConfig()
	require.NoError(t, err)
	assert.Equal(t, ips.GeolocationPreferCloser, ipsCfg.Geolocation)
	assert.Equal(t, cfg.ChangeAtLeast, ipsCfg.ChangeAtLeast)
}

func TestToIpsConfigUnknownMode(t *testing.T) {
	cfg := Default()
	cfg.Geolocation = "sideways"
	_, err := cfg.ToIpsConfig()
	assert.Error(t, err)
}

func TestParseGeolocationModeOff(t *testing.T) {
	cfg := Default()
	cfg.Geolocation = "off"
	ipsCfg, err := cfg.ToIpsConfig()
	require.NoError(t, err)
	assert.Equal(t, ips.GeolocationOff, ipsCfg.Geolocation)
}
