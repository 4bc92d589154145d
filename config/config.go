package config

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kastheco/craftdeck/log"
)

const (
	ConfigFileName     = "config.json"
	defaultJavaCommand = "java"

	DefaultModrinthURL     = "https://api.modrinth.com"
	DefaultLauncherMetaURL = "https://launcher-meta.modrinth.com"

	defaultTickInterval    = 100 * time.Millisecond
	defaultFastRefresh     = 500 * time.Millisecond
	defaultSlowRefresh     = 3 * time.Second
	defaultBridgeTimeout   = 10 * time.Second
	defaultRunningCacheTTL = 10 * time.Second
	defaultNotifyWidth     = 40
	defaultPageSize        = 10
	defaultMaxWorkers      = 4
)

// DefaultLaunchArgs is the launch template used when none is configured.
// Placeholders are expanded by the launcher at run time.
var DefaultLaunchArgs = []string{
	"-Xmx{memory}M",
	"-jar", "{dir}/client.jar",
	"--gameDir", "{dir}",
	"--version", "{version}",
}

var aliasRegex = regexp.MustCompile(`(?:aliased to|->|=)\s*([^\s]+)`)

// GetConfigDir returns the path to the application's configuration directory,
// ~/.config/craftdeck.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "craftdeck"), nil
}

// Config represents the application configuration
type Config struct {
	// JavaCommand is the java binary used to launch instances.
	JavaCommand string `json:"java_command"`
	// LaunchArgs is the argument template appended to JavaCommand.
	LaunchArgs []string `json:"launch_args,omitempty"`
	// DataDir holds instances and the launcher database. Defaults to
	// <config dir>/data.
	DataDir string `json:"data_dir,omitempty"`
	// ModrinthURL is the base URL of the Modrinth v2 API.
	ModrinthURL string `json:"modrinth_url,omitempty"`
	// LauncherMetaURL serves loader version manifests.
	LauncherMetaURL string `json:"launcher_meta_url,omitempty"`

	TickIntervalMs    int `json:"tick_interval_ms,omitempty"`
	FastRefreshMs     int `json:"fast_refresh_ms,omitempty"`
	SlowRefreshMs     int `json:"slow_refresh_ms,omitempty"`
	BridgeTimeoutMs   int `json:"bridge_timeout_ms,omitempty"`
	RunningCacheTTLMs int `json:"running_cache_ttl_ms,omitempty"`

	// NotificationWidth is the column width toast bodies are wrapped to.
	NotificationWidth int `json:"notification_width,omitempty"`
	// PageSize is the number of search hits per Discover page.
	PageSize int `json:"page_size,omitempty"`
	// MaxWorkers bounds concurrent background operations.
	MaxWorkers int `json:"max_workers,omitempty"`

	// TelemetryEnabled controls whether crash reporting via Sentry is active.
	// Defaults to true when not set.
	TelemetryEnabled *bool `json:"telemetry_enabled,omitempty"`
	// OTLPEndpoint enables span export when non-empty (host:port).
	OTLPEndpoint string `json:"otlp_endpoint,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	java, err := GetJavaCommand()
	if err != nil {
		log.WarningLog.Printf("failed to find java: %v", err)
		java = defaultJavaCommand
	}

	trueVal := true
	return &Config{
		JavaCommand:       java,
		LaunchArgs:        append([]string(nil), DefaultLaunchArgs...),
		ModrinthURL:       DefaultModrinthURL,
		LauncherMetaURL:   DefaultLauncherMetaURL,
		TickIntervalMs:    int(defaultTickInterval / time.Millisecond),
		FastRefreshMs:     int(defaultFastRefresh / time.Millisecond),
		SlowRefreshMs:     int(defaultSlowRefresh / time.Millisecond),
		BridgeTimeoutMs:   int(defaultBridgeTimeout / time.Millisecond),
		RunningCacheTTLMs: int(defaultRunningCacheTTL / time.Millisecond),
		NotificationWidth: defaultNotifyWidth,
		PageSize:          defaultPageSize,
		MaxWorkers:        defaultMaxWorkers,
		TelemetryEnabled:  &trueVal,
	}
}

// IsTelemetryEnabled returns whether Sentry telemetry is enabled.
// Defaults to true when the field is not set.
func (c *Config) IsTelemetryEnabled() bool {
	if c.TelemetryEnabled == nil {
		return true
	}
	return *c.TelemetryEnabled
}

func millis(v int, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v) * time.Millisecond
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// TickInterval is the render/input loop cadence.
func (c *Config) TickInterval() time.Duration { return millis(c.TickIntervalMs, defaultTickInterval) }

// FastRefresh drives debounced search and log filtering.
func (c *Config) FastRefresh() time.Duration { return millis(c.FastRefreshMs, defaultFastRefresh) }

// SlowRefresh drives process status polling and log tailing.
func (c *Config) SlowRefresh() time.Duration { return millis(c.SlowRefreshMs, defaultSlowRefresh) }

// BridgeTimeout bounds every blocking bridge call.
func (c *Config) BridgeTimeout() time.Duration {
	return millis(c.BridgeTimeoutMs, defaultBridgeTimeout)
}

// RunningCacheTTL is how long an "is running" answer is reused.
func (c *Config) RunningCacheTTL() time.Duration {
	return millis(c.RunningCacheTTLMs, defaultRunningCacheTTL)
}

func (c *Config) GetNotificationWidth() int { return positive(c.NotificationWidth, defaultNotifyWidth) }
func (c *Config) GetPageSize() int          { return positive(c.PageSize, defaultPageSize) }
func (c *Config) GetMaxWorkers() int        { return positive(c.MaxWorkers, defaultMaxWorkers) }

// GetLaunchArgs returns the configured template or the default one.
func (c *Config) GetLaunchArgs() []string {
	if len(c.LaunchArgs) == 0 {
		return append([]string(nil), DefaultLaunchArgs...)
	}
	return c.LaunchArgs
}

// GetModrinthURL returns the API base without a trailing slash.
func (c *Config) GetModrinthURL() string {
	if c.ModrinthURL == "" {
		return DefaultModrinthURL
	}
	return strings.TrimRight(c.ModrinthURL, "/")
}

// GetLauncherMetaURL returns the loader manifest base without a trailing slash.
func (c *Config) GetLauncherMetaURL() string {
	if c.LauncherMetaURL == "" {
		return DefaultLauncherMetaURL
	}
	return strings.TrimRight(c.LauncherMetaURL, "/")
}

// ResolveDataDir returns DataDir, or <config dir>/data when unset.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "data"), nil
}

// GetJavaCommand finds the java binary, preferring $JAVA_HOME/bin/java, then
// a shell alias, then PATH.
func GetJavaCommand() (string, error) {
	if home := os.Getenv("JAVA_HOME"); home != "" {
		candidate := filepath.Join(home, "bin", "java")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return findCommand("java")
}

func findCommand(name string) (string, error) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash" // Default to bash if SHELL is not set
	}

	// Load the user's rc file so aliases resolve the same way they would in
	// an interactive shell.
	var shellCmd string
	if strings.Contains(shell, "zsh") {
		shellCmd = fmt.Sprintf("source ~/.zshrc &>/dev/null || true; which %s", name)
	} else if strings.Contains(shell, "bash") {
		shellCmd = fmt.Sprintf("source ~/.bashrc &>/dev/null || true; which %s", name)
	} else {
		shellCmd = fmt.Sprintf("which %s", name)
	}

	cmd := exec.Command(shell, "-c", shellCmd)
	output, err := cmd.Output()
	if err == nil && len(output) > 0 {
		path := parseCommandOutput(string(output))
		if path != "" {
			return path, nil
		}
	}

	commandPath, err := exec.LookPath(name)
	if err == nil {
		return commandPath, nil
	}

	return "", fmt.Errorf("%s command not found in aliases or PATH", name)
}

func parseCommandOutput(output string) string {
	path := strings.TrimSpace(output)
	if path == "" {
		return ""
	}

	matches := aliasRegex.FindStringSubmatch(path)
	if len(matches) > 1 {
		return matches[1]
	}

	return path
}

func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			defaultCfg := DefaultConfig()
			if saveErr := saveConfig(defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			applyTOML(defaultCfg)
			return defaultCfg
		}

		log.WarningLog.Printf("failed to get config file: %v", err)
		return DefaultConfig()
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		log.ErrorLog.Printf("failed to parse config file: %v", err)
		return DefaultConfig()
	}

	applyTOML(&config)
	return &config
}

// applyTOML overlays config.toml on top of cfg. TOML wins for every field it
// sets.
func applyTOML(cfg *Config) {
	tc, err := LoadTOMLConfig()
	if err != nil {
		log.WarningLog.Printf("failed to load TOML config: %v", err)
		return
	}
	if tc == nil {
		return
	}
	tc.Apply(cfg)
}

// saveConfig saves the configuration to disk
func saveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveConfig exports the saveConfig function for use by other packages
func SaveConfig(config *Config) error {
	return saveConfig(config)
}
