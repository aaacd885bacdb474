package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sweeney/pin-blinker/internal/config"
	"github.com/sweeney/pin-blinker/internal/logger"
)

const (
	flagConfig      = "config"
	flagChip        = "chip"
	flagPinA        = "pin-a"
	flagPinB        = "pin-b"
	flagActiveLow   = "active-low"
	flagPeriodMs    = "period-ms"
	flagPollMs      = "poll-ms"
	flagThresholdMs = "threshold-ms"
	flagBroker      = "broker"
	flagClientID    = "client-id"
	flagHTTP        = "http"
	flagLogLevel    = "log-level"
	flagPrintConfig = "print-config"
	flagSaveConfig  = "save-config"
)

func newRootCommand() *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:           "pin-blinker",
		Short:         "Toggle two GPIO outputs and report their state",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if printCfg, _ := cmd.Flags().GetBool(flagPrintConfig); printCfg {
				data, err := config.Marshal(cfg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if path, _ := cmd.Flags().GetString(flagSaveConfig); path != "" {
				if err := config.Save(path, cfg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "settings written to %s\n", path)
				return nil
			}

			lvl, _ := logger.ParseLogLevel(cfg.LogLevel)
			logger.SetLevel(lvl)
			logger.InfoKV(cmd.Context(), "starting",
				"log_level", logger.Level().String(),
				"chip", cfg.Chip,
				"period_ms", cfg.PeriodMs,
			)

			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringP(flagConfig, "c", "", "YAML settings file")
	f.String(flagChip, defaults.Chip, "GPIO chip name")
	f.Int(flagPinA, defaults.PinA, "line offset of output A (toggled every period)")
	f.Int(flagPinB, defaults.PinB, "line offset of output B (toggled on each falling edge of A)")
	f.Bool(flagActiveLow, defaults.ActiveLow, "drive lines low when active")
	f.Int(flagPeriodMs, defaults.PeriodMs, "toggle period of A in ms (1-10000)")
	f.Int(flagPollMs, defaults.PollMs, "status reporter polling interval in ms")
	f.Int(flagThresholdMs, defaults.ReportThresholdMs, "minimum elapsed ms between status lines")
	f.String(flagBroker, defaults.Broker, "MQTT broker URL (empty disables MQTT)")
	f.String(flagClientID, defaults.ClientID, "MQTT client ID")
	f.String(flagHTTP, defaults.HTTPAddr, "HTTP status address (empty disables HTTP)")
	f.String(flagLogLevel, defaults.LogLevel, "log level: debug, info, warn, error")
	f.Bool(flagPrintConfig, false, "print the effective settings as YAML and exit")
	f.String(flagSaveConfig, "", "write the effective settings to this YAML file and exit")

	return cmd
}

// loadConfig starts from the defaults, applies the settings file if one
// was given, then applies every flag set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	f := cmd.Flags()

	cfg := config.Default()
	if path, _ := f.GetString(flagConfig); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var err error
	set := func(name string, apply func() error) {
		if err == nil && f.Changed(name) {
			err = apply()
		}
	}
	str := func(dst *string, name string) func() error {
		return func() (e error) { *dst, e = f.GetString(name); return }
	}
	num := func(dst *int, name string) func() error {
		return func() (e error) { *dst, e = f.GetInt(name); return }
	}

	set(flagChip, str(&cfg.Chip, flagChip))
	set(flagPinA, num(&cfg.PinA, flagPinA))
	set(flagPinB, num(&cfg.PinB, flagPinB))
	set(flagActiveLow, func() (e error) { cfg.ActiveLow, e = f.GetBool(flagActiveLow); return })
	set(flagPeriodMs, num(&cfg.PeriodMs, flagPeriodMs))
	set(flagPollMs, num(&cfg.PollMs, flagPollMs))
	set(flagThresholdMs, num(&cfg.ReportThresholdMs, flagThresholdMs))
	set(flagBroker, str(&cfg.Broker, flagBroker))
	set(flagClientID, str(&cfg.ClientID, flagClientID))
	set(flagHTTP, str(&cfg.HTTPAddr, flagHTTP))
	set(flagLogLevel, str(&cfg.LogLevel, flagLogLevel))
	if err != nil {
		return nil, err
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}
