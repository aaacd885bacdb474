package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sweeney/pin-blinker/internal/state"
)

// TestDefaultIsValid makes sure the built-in settings pass validation.
func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))
	require.Equal(t, 4, cfg.PinA)
	require.Equal(t, 18, cfg.PinB)
	require.Equal(t, 500, cfg.PeriodMs)
	require.Equal(t, 100, cfg.PollMs)
	require.Equal(t, 500, cfg.ReportThresholdMs)
}

// TestValidate checks required fields and range validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	cases := map[string]func(c *Config){
		"no chip":         func(c *Config) { c.Chip = "" },
		"same pins":       func(c *Config) { c.PinB = c.PinA },
		"negative pin":    func(c *Config) { c.PinA = -1 },
		"period zero":     func(c *Config) { c.PeriodMs = 0 },
		"period too big":  func(c *Config) { c.PeriodMs = 10001 },
		"poll zero":       func(c *Config) { c.PollMs = 0 },
		"threshold zero":  func(c *Config) { c.ReportThresholdMs = 0 },
		"bad log level":   func(c *Config) { c.LogLevel = "loud" },
		"bad broker":      func(c *Config) { c.Broker = "localhost" },
		"bad http socket": func(c *Config) { c.HTTPAddr = "8080" },
	}

	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		require.Error(t, Validate(cfg), name)
	}

	require.Error(t, Validate(nil))
}

// TestValidatePeriodBounds accepts both ends of the period range.
func TestValidatePeriodBounds(t *testing.T) {
	t.Parallel()

	for _, ms := range []int{state.MinPeriodMs, state.MaxPeriodMs} {
		cfg := Default()
		cfg.PeriodMs = ms
		require.NoError(t, Validate(cfg))
	}

	cfg := Default()
	cfg.PeriodMs = 0
	require.True(t, errors.Is(Validate(cfg), state.ErrPeriodOutOfRange))
}

// TestValidateFillsClientID sets the default MQTT client ID when empty.
func TestValidateFillsClientID(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.ClientID = ""
	cfg.Broker = "tcp://127.0.0.1:1883"
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultClientID, cfg.ClientID)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := Default()
	cfg.PinA = 17
	cfg.PeriodMs = 250
	cfg.Broker = "tcp://192.168.1.200:1883"
	cfg.ActiveLow = true

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadPartialFileKeepsDefaults lets a file override only some fields.
func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("period_ms: 1000\nhttp_addr: \"\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1000, cfg.PeriodMs)
	require.Equal(t, "", cfg.HTTPAddr)
	require.Equal(t, Default().PinB, cfg.PinB)
}

// TestLoadRejectsBadFile covers missing files, bad YAML and invalid values.
func TestLoadRejectsBadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("period_ms: [1"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("period_ms: 20000\n"), 0o600))
	_, err = Load(invalid)
	require.ErrorIs(t, err, state.ErrPeriodOutOfRange)
}

// TestSaveNil rejects a nil config.
func TestSaveNil(t *testing.T) {
	t.Parallel()

	require.Error(t, Save(filepath.Join(t.TempDir(), "x.yaml"), nil))
}
