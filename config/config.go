package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/dixieflatline76/BingWall/pkg/provider"
)

// Package config provides configuration management for the BingWall daemon.
// The file is re-read before every update cycle, so edits apply without a restart.

// Config struct to hold all configuration data
type Config struct {
	Download DownloadConfig `toml:"download"`
	Settings SettingsConfig `toml:"settings"`
	Debug    DebugConfig    `toml:"debug"`
}

// DownloadConfig selects where and how the daily image is fetched.
type DownloadConfig struct {
	Country      string `toml:"country"`       // country code or "auto"
	Market       string `toml:"market"`        // market code like "en-US", takes precedence over country
	Server       string `toml:"server"`        // global, china or custom
	CustomServer string `toml:"custom_server"` // base URL used when server is custom
	SizeMode     string `toml:"size_mode"`     // normal, highest or manual
	ImageSize    string `toml:"image_size"`    // WIDTHxHEIGHT, only used in manual mode
	OutputFolder string `toml:"output_folder"` // blank means temp dir and no-collect mode
}

// SettingsConfig holds scheduling options.
type SettingsConfig struct {
	Interval  int  `toml:"interval"` // hours between successful cycles, minimum 1
	Autostart bool `toml:"autostart"`
}

// DebugConfig holds diagnostics options.
type DebugConfig struct {
	Level       string `toml:"level"`
	LogFile     string `toml:"log_file"`
	MetricsAddr string `toml:"metrics_addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Download: DownloadConfig{
			Country:   CountryAuto,
			Server:    ServerGlobal,
			SizeMode:  SizeModeNormal,
			ImageSize: "1920x1080",
		},
		Settings: SettingsConfig{
			Interval:  1,
			Autostart: true,
		},
		Debug: DebugConfig{
			Level: "info",
		},
	}
}

// GetPath returns the path to the user's config directory
func GetPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting user home directory: %w", err)
	}
	return filepath.Join(homeDir, "."+strings.ToLower(AppName)), nil
}

// GetFilename returns the path to the user's config file
func GetFilename() (string, error) {
	dir, err := GetPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load reads the configuration from filename, falling back to defaults when the file
// does not exist, then applies environment overrides (process env wins over .env).
// When the values decode but are invalid, Load returns the decoded configuration
// together with a *provider.ValidationError.
func Load(filename string) (*Config, error) {
	c := Default()

	if filename != "" {
		if err := c.loadFromFile(filename); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config %s: %w", filename, err)
		}
	}

	if err := c.applyEnv(lookupEnv()); err != nil {
		return c, err
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// loadFromFile loads configuration from the specified file
func (c *Config) loadFromFile(filename string) error {
	_, err := toml.DecodeFile(filename, c)
	return err
}

// lookupEnv merges an optional .env file from the working directory with the process environment.
func lookupEnv() func(string) (string, bool) {
	dotenv, err := godotenv.Read()
	if err != nil {
		dotenv = map[string]string{}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// applyEnv overrides file values with BINGWALL_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"COUNTRY":       &c.Download.Country,
		"MARKET":        &c.Download.Market,
		"SERVER":        &c.Download.Server,
		"CUSTOM_SERVER": &c.Download.CustomServer,
		"SIZE_MODE":     &c.Download.SizeMode,
		"IMAGE_SIZE":    &c.Download.ImageSize,
		"OUTPUT_FOLDER": &c.Download.OutputFolder,
		"LOG_LEVEL":     &c.Debug.Level,
		"LOG_FILE":      &c.Debug.LogFile,
		"METRICS_ADDR":  &c.Debug.MetricsAddr,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "INTERVAL"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &provider.ValidationError{Field: EnvPrefix + "INTERVAL", Value: v, Err: err}
		}
		c.Settings.Interval = n
	}
	return nil
}

// Validate checks the fields the daemon cannot recover from on its own.
// Market and resolution formats are validated by the image provider.
func (c *Config) Validate() error {
	switch c.server() {
	case "", ServerGlobal, ServerChina:
	case ServerCustom:
		if strings.TrimSpace(c.Download.CustomServer) == "" {
			return &provider.ValidationError{Field: "custom_server", Value: c.Download.CustomServer, Err: errEmptyCustomServer}
		}
	default:
		return &provider.ValidationError{Field: "server", Value: c.Download.Server, Err: errUnknownServer}
	}
	return nil
}

var (
	errUnknownServer     = errors.New("expected global, china or custom")
	errEmptyCustomServer = errors.New("required when server is custom")
)

func (c *Config) server() string {
	return strings.ToLower(strings.TrimSpace(c.Download.Server))
}

// BaseURL returns the root URL of the selected image-of-the-day endpoint.
func (c *Config) BaseURL() string {
	switch c.server() {
	case ServerChina:
		return ChinaBaseURL
	case ServerCustom:
		return strings.TrimSpace(c.Download.CustomServer)
	default:
		return GlobalBaseURL
	}
}

// CountryCode returns the configured country, or "" when the service should decide.
func (c *Config) CountryCode() string {
	cc := strings.TrimSpace(c.Download.Country)
	if strings.EqualFold(cc, CountryAuto) {
		return ""
	}
	return cc
}

// MarketCode returns the configured market, or "" when unset.
func (c *Config) MarketCode() string {
	return strings.TrimSpace(c.Download.Market)
}

// IntervalHours returns the configured interval clamped to at least one hour.
func (c *Config) IntervalHours() int {
	if c.Settings.Interval < 1 {
		return 1
	}
	return c.Settings.Interval
}

// Interval returns the delay between successful cycles.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalHours()) * time.Hour
}

// OutputDir returns the absolute download directory and whether prior downloads are kept.
// A blank output folder selects a temp directory in no-collect mode.
func (c *Config) OutputDir() (string, bool) {
	dir := strings.TrimSpace(c.Download.OutputFolder)
	if dir == "" {
		return filepath.Join(os.TempDir(), TempDirName), false
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return dir, true
}

const fileHeader = `# BingWall configuration.
# download.server: global, china or custom (with custom_server)
# download.size_mode: normal, highest or manual (with image_size like 1920x1080)
# download.output_folder: blank downloads into a temp folder and deletes older images
# settings.interval: hours between successful updates (minimum 1)
# debug.level: dump, debug, info, warn, error or critical

`

// Save writes the configuration to filename, creating its directory.
func (c *Config) Save(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("error encoding config data: %w", err)
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// WriteDefault writes the default configuration to filename.
// An existing file is only replaced when overwrite is set.
func WriteDefault(filename string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(filename); err == nil {
			return fmt.Errorf("config file %s already exists", filename)
		}
	}
	return Default().Save(filename)
}
