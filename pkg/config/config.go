package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
)

// Config captures the client-level configuration knobs. Feature packages
// (connection, notifications, views) pull from these nested structs.
type Config struct {
	Server        ServerConfig       `mapstructure:"server" json:"server"`
	Realtime      RealtimeConfig     `mapstructure:"realtime" json:"realtime"`
	Localization  LocalizationConfig `mapstructure:"localization" json:"localization"`
	Notifications HubConfig          `mapstructure:"notifications" json:"notifications"`
}

// ServerConfig points at the REST backend and its static assets.
type ServerConfig struct {
	URL       string `mapstructure:"url" json:"url"`
	AssetsURL string `mapstructure:"assets_url" json:"assets_url"`
}

// RealtimeConfig controls the persistent push channel.
type RealtimeConfig struct {
	Enabled      bool          `mapstructure:"enabled" json:"enabled"`
	URL          string        `mapstructure:"url" json:"url"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" json:"dial_timeout"`
	PingInterval time.Duration `mapstructure:"ping_interval" json:"ping_interval"`
	ReconnectMin time.Duration `mapstructure:"reconnect_min" json:"reconnect_min"`
	ReconnectMax time.Duration `mapstructure:"reconnect_max" json:"reconnect_max"`
}

// LocalizationConfig controls the active locale for rendered messages.
type LocalizationConfig struct {
	DefaultLocale    string   `mapstructure:"default_locale" json:"default_locale"`
	SupportedLocales []string `mapstructure:"supported_locales" json:"supported_locales"`
}

// HubConfig scopes the notification center behavior.
type HubConfig struct {
	AppName    string `mapstructure:"app_name" json:"app_name"`
	BadgeLimit int    `mapstructure:"badge_limit" json:"badge_limit"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Realtime: RealtimeConfig{
			Enabled:      true,
			DialTimeout:  10 * time.Second,
			PingInterval: 25 * time.Second,
			ReconnectMin: time.Second,
			ReconnectMax: 30 * time.Second,
		},
		Localization: LocalizationConfig{
			DefaultLocale:    "en",
			SupportedLocales: []string{"en", "es"},
		},
		Notifications: HubConfig{
			AppName:    "LFG",
			BadgeLimit: 9,
		},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return errors.New("server.url is required")
	}
	if c.Realtime.Enabled && strings.TrimSpace(c.Realtime.URL) == "" {
		return errors.New("realtime.url is required when realtime is enabled")
	}
	if c.Localization.DefaultLocale == "" {
		return errors.New("localization.default_locale is required")
	}
	if c.Realtime.ReconnectMin > c.Realtime.ReconnectMax {
		return fmt.Errorf("realtime.reconnect_min must be <= realtime.reconnect_max")
	}
	if c.Notifications.BadgeLimit <= 0 {
		return fmt.Errorf("notifications.badge_limit must be > 0")
	}
	return nil
}

// Load decodes arbitrary input (struct, map, nil) using cfgx helpers. While
// cfgx.Build still returns zero values, we fallback to a lightweight decoder
// to keep smoke tests meaningful. Once cfgx is fully implemented we can drop
// the fallback.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.Server.AssetsURL == "" {
		c.Server.AssetsURL = c.Server.URL
	}
	if c.Realtime.DialTimeout == 0 {
		c.Realtime.DialTimeout = defaults.Realtime.DialTimeout
	}
	if c.Realtime.PingInterval == 0 {
		c.Realtime.PingInterval = defaults.Realtime.PingInterval
	}
	if c.Realtime.ReconnectMin == 0 {
		c.Realtime.ReconnectMin = defaults.Realtime.ReconnectMin
	}
	if c.Realtime.ReconnectMax == 0 {
		c.Realtime.ReconnectMax = defaults.Realtime.ReconnectMax
	}
	if c.Localization.DefaultLocale == "" {
		c.Localization.DefaultLocale = defaults.Localization.DefaultLocale
	}
	if len(c.Localization.SupportedLocales) == 0 {
		c.Localization.SupportedLocales = defaults.Localization.SupportedLocales
	}
	if c.Notifications.AppName == "" {
		c.Notifications.AppName = defaults.Notifications.AppName
	}
	if c.Notifications.BadgeLimit == 0 {
		c.Notifications.BadgeLimit = defaults.Notifications.BadgeLimit
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
