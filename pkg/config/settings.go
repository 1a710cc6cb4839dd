package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// LocalSettingsFile is the project-local settings filename. It is not
	// meant to be committed.
	LocalSettingsFile = "pastries.local.toml"
	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "PASTRIES"

	globalDirName       = ".pastries"
	globalSettingsFile  = "config.toml"
	defaultTimeout      = 30 * time.Second
	defaultRetries      = 2
	defaultRetryDelay   = time.Second
	defaultUserAgent    = "pastries"
	defaultLogLevel     = "warn"
	defaultLogFormat    = "text"
	settingsFilePerm    = 0o644
	globalSettingsPerms = 0o755
)

// Settings holds developer-specific behaviour that is not part of the
// registry. Resolved with viper precedence:
// overrides (flags) > PASTRIES_* env > pastries.local.toml > ~/.pastries/config.toml > defaults.
type Settings struct {
	Registry   string        `mapstructure:"registry"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	UserAgent  string        `mapstructure:"user_agent"`
	LogLevel   string        `mapstructure:"log_level"`
	LogFormat  string        `mapstructure:"log_format"`
}

// settingsFile is the on-disk TOML shape. Durations are written as strings
// so the file round-trips through viper's duration hook.
type settingsFile struct {
	Registry   string `toml:"registry"`
	Timeout    string `toml:"timeout"`
	Retries    int    `toml:"retries"`
	RetryDelay string `toml:"retry_delay"`
	UserAgent  string `toml:"user_agent"`
	LogLevel   string `toml:"log_level"`
	LogFormat  string `toml:"log_format"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() *Settings {
	return &Settings{
		Registry:   RegistryFileName,
		Timeout:    defaultTimeout,
		Retries:    defaultRetries,
		RetryDelay: defaultRetryDelay,
		UserAgent:  defaultUserAgent,
		LogLevel:   defaultLogLevel,
		LogFormat:  defaultLogFormat,
	}
}

// RetryDelays expands Retries and RetryDelay into a doubling backoff
// schedule, e.g. 1s, 2s, 4s.
func (s *Settings) RetryDelays() []time.Duration {
	if s.Retries <= 0 {
		return nil
	}
	delays := make([]time.Duration, s.Retries)
	d := s.RetryDelay
	for i := range delays {
		delays[i] = d
		d *= 2
	}
	return delays
}

// LoadSettings resolves settings for the project in dir. overrides holds
// values set explicitly on the command line, keyed by setting name.
func LoadSettings(dir string, overrides map[string]any) (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("determining home directory: %w", err)
	}
	globalPath := filepath.Join(home, globalDirName, globalSettingsFile)
	return loadSettings(overrides, globalPath, filepath.Join(dir, LocalSettingsFile))
}

// loadSettings accepts explicit paths so tests never touch the real home
// directory.
func loadSettings(overrides map[string]any, globalPath, localPath string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("toml")

	def := DefaultSettings()
	v.SetDefault("registry", def.Registry)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("retries", def.Retries)
	v.SetDefault("retry_delay", def.RetryDelay)
	v.SetDefault("user_agent", def.UserAgent)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Lowest priority: global config. Missing is fine.
	if _, err := os.Stat(globalPath); err == nil {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", globalPath, err)
		}
	}

	if _, err := os.Stat(localPath); err == nil {
		v.SetConfigFile(localPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", localPath, err)
		}
	}

	for k, val := range overrides {
		v.Set(k, val)
	}

	s := &Settings{}
	if err := v.Unmarshal(s, decodeHook); err != nil {
		return nil, fmt.Errorf("unmarshaling settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects settings the fetcher cannot work with.
func (s *Settings) Validate() error {
	if s.Registry == "" {
		return fmt.Errorf("registry file name must not be empty")
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", s.Timeout)
	}
	if s.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", s.Retries)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", s.LogFormat)
	}
	return nil
}

// decodeHook turns "30s"-style strings from TOML files and env vars into
// durations.
func decodeHook(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.StringToTimeDurationHookFunc()
}

// WriteLocalSettings persists settings to pastries.local.toml in dir.
func WriteLocalSettings(dir string, s *Settings) error {
	return writeSettings(filepath.Join(dir, LocalSettingsFile), s)
}

// WriteGlobalSettings persists settings to ~/.pastries/config.toml.
func WriteGlobalSettings(s *Settings) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("determining home directory: %w", err)
	}
	dir := filepath.Join(home, globalDirName)
	if err := os.MkdirAll(dir, globalSettingsPerms); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return writeSettings(filepath.Join(dir, globalSettingsFile), s)
}

func writeSettings(path string, s *Settings) error {
	data, err := toml.Marshal(settingsFile{
		Registry:   s.Registry,
		Timeout:    s.Timeout.String(),
		Retries:    s.Retries,
		RetryDelay: s.RetryDelay.String(),
		UserAgent:  s.UserAgent,
		LogLevel:   s.LogLevel,
		LogFormat:  s.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.WriteFile(path, data, settingsFilePerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
