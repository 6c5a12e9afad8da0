package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = ".config/kartoza-loudness"
	// ConfigFileName is the name of the configuration file
	ConfigFileName = "config.json"
)

// Defaults taken from common podcast/dialogue delivery practice
const (
	DefaultTargetLUFS       = -18.0
	DefaultTolerance        = 2.0
	DefaultTruePeak         = -1.5
	DefaultLRA              = 11.0
	DefaultProbeTimeout     = 5 * time.Minute
	DefaultNormalizeTimeout = 30 * time.Minute
	DefaultFFmpegPath       = "ffmpeg"
)

// Environment variables that override the file configuration
const (
	EnvFFmpegPath       = "LOUDNESS_FFMPEG_PATH"
	EnvProbeTimeout     = "LOUDNESS_PROBE_TIMEOUT"
	EnvNormalizeTimeout = "LOUDNESS_NORMALIZE_TIMEOUT"
	EnvTarget           = "LOUDNESS_TARGET"
	EnvTruePeak         = "LOUDNESS_TRUE_PEAK"
	EnvAssumeYes        = "LOUDNESS_ASSUME_YES"
)

// Config holds the application configuration
type Config struct {
	FFmpegPath       string   `json:"ffmpeg_path"`
	TargetLUFS       float64  `json:"target_lufs"`
	Tolerance        float64  `json:"tolerance"`
	TruePeak         float64  `json:"true_peak"`
	LRA              float64  `json:"lra"`
	ProbeTimeout     Duration `json:"probe_timeout"`
	NormalizeTimeout Duration `json:"normalize_timeout"`
	AudioCodec       string   `json:"audio_codec,omitempty"` // Empty lets ffmpeg pick the container default
	Notify           bool     `json:"notify"`
	AssumeYes        bool     `json:"assume_yes"` // Skip prompts unless --confirm is given
}

// Duration is a time.Duration stored as a Go duration string ("5m0s")
type Duration time.Duration

// MarshalJSON encodes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of seconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		FFmpegPath:       DefaultFFmpegPath,
		TargetLUFS:       DefaultTargetLUFS,
		Tolerance:        DefaultTolerance,
		TruePeak:         DefaultTruePeak,
		LRA:              DefaultLRA,
		ProbeTimeout:     Duration(DefaultProbeTimeout),
		NormalizeTimeout: Duration(DefaultNormalizeTimeout),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigDir
	}
	return filepath.Join(home, DefaultConfigDir)
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), ConfigFileName)
}

// EnsureDirectories creates the necessary directories
func EnsureDirectories() error {
	return os.MkdirAll(GetConfigDir(), 0755)
}

// Load loads the configuration from the default location and applies
// environment overrides
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads the configuration from path. A missing file yields the
// defaults. Environment overrides (including a .env file in the working
// directory) are applied on top.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.fillDefaults()

	return &cfg, nil
}

// Save saves the configuration to the default location
func Save(cfg *Config) error {
	if err := EnsureDirectories(); err != nil {
		return err
	}
	return SaveTo(cfg, GetConfigPath())
}

// SaveTo writes the configuration to path
func SaveTo(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvFFmpegPath); v != "" {
		c.FFmpegPath = v
	}
	c.ProbeTimeout = Duration(parseDurationOrDefault(os.Getenv(EnvProbeTimeout), c.ProbeTimeout.Std()))
	c.NormalizeTimeout = Duration(parseDurationOrDefault(os.Getenv(EnvNormalizeTimeout), c.NormalizeTimeout.Std()))
	c.TargetLUFS = parseFloatOrDefault(os.Getenv(EnvTarget), c.TargetLUFS)
	c.TruePeak = parseFloatOrDefault(os.Getenv(EnvTruePeak), c.TruePeak)
	c.AssumeYes = parseBoolOrDefault(os.Getenv(EnvAssumeYes), c.AssumeYes)
}

// fillDefaults replaces zero values left by a partial config file
func (c *Config) fillDefaults() {
	if c.FFmpegPath == "" {
		c.FFmpegPath = DefaultFFmpegPath
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = Duration(DefaultProbeTimeout)
	}
	if c.NormalizeTimeout <= 0 {
		c.NormalizeTimeout = Duration(DefaultNormalizeTimeout)
	}
	if c.LRA <= 0 {
		c.LRA = DefaultLRA
	}
}

func parseDurationOrDefault(s string, defaultValue time.Duration) time.Duration {
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Printf("Warning: Could not parse duration '%s', using default '%v'", s, defaultValue)
		return defaultValue
	}
	return d
}

func parseFloatOrDefault(s string, defaultValue float64) float64 {
	if s == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Warning: Could not parse number '%s', using default '%v'", s, defaultValue)
		return defaultValue
	}
	return v
}

func parseBoolOrDefault(s string, defaultValue bool) bool {
	if s == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		log.Printf("Warning: Could not parse boolean '%s', using default '%v'", s, defaultValue)
		return defaultValue
	}
	return v
}
