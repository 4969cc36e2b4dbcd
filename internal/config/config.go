package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API     APIConfig
	Curl    CurlConfig
	History HistoryConfig
	UI      UIConfig
}

// APIConfig holds generative-language API settings.
type APIConfig struct {
	Host      string `mapstructure:"host"`
	Model     string `mapstructure:"model"`
	APIKeyEnv string `mapstructure:"api_key_env"`
	APIKey    string `mapstructure:"api_key"`
}

// CurlConfig holds settings for the curl subprocess that carries the request.
type CurlConfig struct {
	Binary      string `mapstructure:"binary"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// HistoryConfig holds the request-history sqlite settings.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	SpinnerIntervalMS int `mapstructure:"spinner_interval_ms"`
	LoadWidthPct      int `mapstructure:"load_width_pct"`
	ResultWidthPct    int `mapstructure:"result_width_pct"`
	ResultHeightPct   int `mapstructure:"result_height_pct"`
}

// Load reads configuration from file and env. Env var overrides use prefix GEMQ_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("api.host", "generativelanguage.googleapis.com")
	v.SetDefault("api.model", "gemini-2.0-flash")
	v.SetDefault("api.api_key_env", "GEMINI_API_KEY")
	v.SetDefault("api.api_key", "")
	v.SetDefault("curl.binary", "curl")
	v.SetDefault("curl.timeout_secs", 60)
	v.SetDefault("history.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "gemq", "gemq.db"))
	v.SetDefault("ui.spinner_interval_ms", 100)
	v.SetDefault("ui.load_width_pct", 50)
	v.SetDefault("ui.result_width_pct", 80)
	v.SetDefault("ui.result_height_pct", 80)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("GEMQ_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "gemq"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("GEMQ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The API key is stored in plain text in the config file; encourage users to prefer
// env vars or the key store.
func Save(cfg Config) error {
	path := os.Getenv("GEMQ_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "gemq", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.host", cfg.API.Host)
	v.Set("api.model", cfg.API.Model)
	v.Set("api.api_key_env", cfg.API.APIKeyEnv)
	v.Set("api.api_key", cfg.API.APIKey)
	v.Set("curl.binary", cfg.Curl.Binary)
	v.Set("curl.timeout_secs", cfg.Curl.TimeoutSecs)
	v.Set("history.path", cfg.History.Path)
	v.Set("ui.spinner_interval_ms", cfg.UI.SpinnerIntervalMS)
	v.Set("ui.load_width_pct", cfg.UI.LoadWidthPct)
	v.Set("ui.result_width_pct", cfg.UI.ResultWidthPct)
	v.Set("ui.result_height_pct", cfg.UI.ResultHeightPct)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
