package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/pin-blinker/internal/gpio"
	"github.com/sweeney/pin-blinker/internal/logger"
	"github.com/sweeney/pin-blinker/internal/logic"
	"github.com/sweeney/pin-blinker/internal/state"
)

// Config holds every setting of the daemon.
type Config struct {
	// Chip is the GPIO character device, e.g. "gpiochip0".
	Chip string `yaml:"chip"`
	// PinA is the line offset of the primary actuator.
	PinA int `yaml:"pin_a"`
	// PinB is the line offset of the secondary actuator.
	PinB int `yaml:"pin_b"`
	// ActiveLow inverts both lines: active drives the line low.
	ActiveLow bool `yaml:"active_low"`
	// PeriodMs is the initial toggle period.
	PeriodMs int `yaml:"period_ms"`
	// PollMs is the reporter's polling interval.
	PollMs int `yaml:"poll_ms"`
	// ReportThresholdMs is the minimum logical time between reports.
	ReportThresholdMs int `yaml:"report_threshold_ms"`
	// Broker is the MQTT broker URL. Empty disables MQTT.
	Broker string `yaml:"broker"`
	// ClientID is the MQTT client identifier.
	ClientID string `yaml:"client_id"`
	// HTTPAddr is the status server address. Empty disables HTTP.
	HTTPAddr string `yaml:"http_addr"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultClientID is the MQTT client ID when none is configured.
	DefaultClientID = "pin-blinker"

	// DefaultHTTPAddr is the default status server address.
	DefaultHTTPAddr = ":8080"

	// DefaultFilePermissions is used by Save.
	DefaultFilePermissions = 0o600
)

var (
	errConfigIsNotSet  = errors.New("configuration is not set")
	errChipRequired    = errors.New("gpio chip must be provided")
	errSamePins        = errors.New("pin_a and pin_b must differ")
	errNegativePin     = errors.New("pin offsets must not be negative")
	errPollNotPositive = errors.New("poll_ms must be positive")
	errThresholdZero   = errors.New("report_threshold_ms must be positive")
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Chip:              gpio.DefaultChip,
		PinA:              gpio.DefaultPinA,
		PinB:              gpio.DefaultPinB,
		PeriodMs:          state.DefaultPeriodMs,
		PollMs:            int(logic.DefaultPollInterval.Milliseconds()),
		ReportThresholdMs: logic.DefaultThresholdMs,
		ClientID:          DefaultClientID,
		HTTPAddr:          DefaultHTTPAddr,
		LogLevel:          "info",
	}
}

// Load reads settings from path on top of the defaults and validates them.
func Load(path string) (*Config, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path after validating it.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return data, nil
}

// Validate checks the settings and fills in the MQTT client ID when missing.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Chip == "" {
		return errChipRequired
	}

	if cfg.PinA < 0 || cfg.PinB < 0 {
		return errNegativePin
	}

	if cfg.PinA == cfg.PinB {
		return errSamePins
	}

	if err := state.ValidatePeriod(cfg.PeriodMs); err != nil {
		return fmt.Errorf("period_ms: %w", err)
	}

	if cfg.PollMs <= 0 {
		return errPollNotPositive
	}

	if cfg.ReportThresholdMs <= 0 {
		return errThresholdZero
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}

	if cfg.Broker != "" {
		u, err := url.Parse(cfg.Broker)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid broker URL %q", cfg.Broker)
		}
	}

	if cfg.HTTPAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.HTTPAddr); err != nil {
			return fmt.Errorf("invalid http address: %w", err)
		}
	}

	return nil
}
