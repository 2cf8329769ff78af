package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
}

// ServerConfig points at the assistant backend
type ServerConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	ChatPath            string        `mapstructure:"chat_path"`
	DialTimeout         time.Duration `mapstructure:"dial_timeout"`
	ResponseTimeout     time.Duration `mapstructure:"response_timeout"`
	MaxIdleConnDuration time.Duration `mapstructure:"max_idle_conn_duration"`
}

// LogConfig logging configuration
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	AddSource bool   `mapstructure:"add_source"`
}

// ChatConfig tunes the conversation
type ChatConfig struct {
	ExpandIncrement   int    `mapstructure:"expand_increment"`
	SessionFile       string `mapstructure:"session_file"`
	ProfileFile       string `mapstructure:"profile_file"`
	TruncationMarker  string `mapstructure:"truncation_marker"`
	ExpandableField   string `mapstructure:"expandable_field"`
	LongLinkThreshold int    `mapstructure:"long_link_threshold"`
	ShowMorePrompt    string `mapstructure:"show_more_prompt"`
	BookPrompt        string `mapstructure:"book_prompt"`
	MarkdownStyle     string `mapstructure:"markdown_style"`
}

// GeocoderConfig Nominatim-compatible geocoder
type GeocoderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Language  string        `mapstructure:"language"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DefaultDir is the per-user state directory (~/.venuectl)
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".venuectl"), nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.chat_path", "/api/chat")
	v.SetDefault("server.dial_timeout", 10*time.Second)
	v.SetDefault("server.response_timeout", 2*time.Minute)
	v.SetDefault("server.max_idle_conn_duration", 60*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "file")
	v.SetDefault("log.file_path", filepath.Join(dir, "venuectl.log"))
	v.SetDefault("log.add_source", false)

	v.SetDefault("chat.expand_increment", 6)
	v.SetDefault("chat.session_file", filepath.Join(dir, "session.json"))
	v.SetDefault("chat.profile_file", filepath.Join(dir, "profile.json"))
	v.SetDefault("chat.truncation_marker", "... (truncated - output too large)")
	v.SetDefault("chat.expandable_field", "all_venues")
	v.SetDefault("chat.long_link_threshold", 35)
	v.SetDefault("chat.show_more_prompt", "Show me more venues")
	v.SetDefault("chat.book_prompt", "I'd like to book a table at %s")
	v.SetDefault("chat.markdown_style", "auto")

	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.language", "it")
	v.SetDefault("geocoder.user_agent", "venuectl")
	v.SetDefault("geocoder.timeout", 10*time.Second)
}

// Load loads configuration. An explicit configPath must exist; otherwise
// config.yaml is looked up in ~/.venuectl and the working directory and
// defaults apply when none is found. VENUE_* environment variables override
// file values.
func Load(configPath string) (*Config, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, dir)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("VENUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Note: Don't log here, logger will be initialized after config is loaded

	return &cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validateURL("server.base_url", c.Server.BaseURL); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Server.ChatPath, "/") {
		return fmt.Errorf("server.chat_path must start with '/': %q", c.Server.ChatPath)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}

	if c.Chat.ExpandIncrement <= 0 {
		return fmt.Errorf("chat.expand_increment must be positive: %d", c.Chat.ExpandIncrement)
	}
	if c.Chat.SessionFile == "" {
		return fmt.Errorf("chat.session_file is required")
	}
	if c.Chat.ProfileFile == "" {
		return fmt.Errorf("chat.profile_file is required")
	}
	if c.Chat.TruncationMarker == "" {
		return fmt.Errorf("chat.truncation_marker is required")
	}
	if strings.Count(c.Chat.BookPrompt, "%s") != 1 {
		return fmt.Errorf("chat.book_prompt must contain exactly one %%s: %q", c.Chat.BookPrompt)
	}

	if err := validateURL("geocoder.base_url", c.Geocoder.BaseURL); err != nil {
		return err
	}

	return nil
}

// ChatURL is the full URL of the streaming chat endpoint
func (c *Config) ChatURL() string {
	return strings.TrimRight(c.Server.BaseURL, "/") + c.Server.ChatPath
}

func validateURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
