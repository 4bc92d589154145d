package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const TOMLConfigFileName = "config.toml"

// TOMLConfig is the hand-edited overlay. Sections group related knobs:
//
//	[java]
//	command = "/usr/lib/jvm/java-21/bin/java"
//	args = ["-Xmx{memory}M", "-jar", "{dir}/client.jar"]
//
//	[ui]
//	tick_interval_ms = 100
//
//	[modrinth]
//	url = "https://api.modrinth.com"
//
//	[telemetry]
//	enabled = false
//	otlp_endpoint = "localhost:4318"
type TOMLConfig struct {
	Java      tomlJava      `toml:"java"`
	UI        tomlUI        `toml:"ui"`
	Modrinth  tomlModrinth  `toml:"modrinth"`
	Telemetry tomlTelemetry `toml:"telemetry"`
	DataDir   string        `toml:"data_dir"`
}

type tomlJava struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

type tomlUI struct {
	TickIntervalMs    int `toml:"tick_interval_ms"`
	FastRefreshMs     int `toml:"fast_refresh_ms"`
	SlowRefreshMs     int `toml:"slow_refresh_ms"`
	BridgeTimeoutMs   int `toml:"bridge_timeout_ms"`
	NotificationWidth int `toml:"notification_width"`
	PageSize          int `toml:"page_size"`
	MaxWorkers        int `toml:"max_workers"`
}

type tomlModrinth struct {
	URL             string `toml:"url"`
	LauncherMetaURL string `toml:"launcher_meta_url"`
}

type tomlTelemetry struct {
	Enabled      *bool  `toml:"enabled"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// LoadTOMLConfig reads config.toml from the config dir. Returns (nil, nil)
// when the file does not exist.
func LoadTOMLConfig() (*TOMLConfig, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadTOMLConfigFrom(filepath.Join(configDir, TOMLConfigFileName))
}

// LoadTOMLConfigFrom parses the TOML overlay at path.
func LoadTOMLConfigFrom(path string) (*TOMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var tc TOMLConfig
	md, err := toml.Decode(string(data), &tc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return &tc, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}
	return &tc, nil
}

// Apply copies every field set in the overlay onto cfg.
func (tc *TOMLConfig) Apply(cfg *Config) {
	if tc.Java.Command != "" {
		cfg.JavaCommand = tc.Java.Command
	}
	if len(tc.Java.Args) > 0 {
		cfg.LaunchArgs = tc.Java.Args
	}
	if tc.DataDir != "" {
		cfg.DataDir = tc.DataDir
	}
	if tc.Modrinth.URL != "" {
		cfg.ModrinthURL = tc.Modrinth.URL
	}
	if tc.Modrinth.LauncherMetaURL != "" {
		cfg.LauncherMetaURL = tc.Modrinth.LauncherMetaURL
	}
	if tc.Telemetry.Enabled != nil {
		cfg.TelemetryEnabled = tc.Telemetry.Enabled
	}
	if tc.Telemetry.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = tc.Telemetry.OTLPEndpoint
	}

	ui := tc.UI
	for dst, src := range map[*int]int{
		&cfg.TickIntervalMs:    ui.TickIntervalMs,
		&cfg.FastRefreshMs:     ui.FastRefreshMs,
		&cfg.SlowRefreshMs:     ui.SlowRefreshMs,
		&cfg.BridgeTimeoutMs:   ui.BridgeTimeoutMs,
		&cfg.NotificationWidth: ui.NotificationWidth,
		&cfg.PageSize:          ui.PageSize,
		&cfg.MaxWorkers:        ui.MaxWorkers,
	} {
		if src > 0 {
			*dst = src
		}
	}
}
