// Package config defines the daemon settings and provides helpers to load,
// validate and save them in YAML format.
//
// Flags given on the command line override values from the file; see
// cmd/pin-blinker.
package config
