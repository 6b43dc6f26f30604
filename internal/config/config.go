// Package config loads engine settings from eventcatalog.yaml in the project
// directory and from the environment. Environment variables win over the
// file; command line flags are applied by the binaries on top.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var ErrInvalid = errors.New("config: invalid value")

// FileName is the optional settings file looked up in the project directory.
const FileName = "eventcatalog"

type Config struct {
	ProjectDir string           `mapstructure:"project_dir"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Layout     LayoutConfig     `mapstructure:"layout"`
	Visualiser VisualiserConfig `mapstructure:"visualiser"`
	Events     EventsConfig     `mapstructure:"events"`
}

type CacheConfig struct {
	Disabled bool `mapstructure:"disabled"`
}

type LayoutConfig struct {
	Direction string  `mapstructure:"direction"`
	RankSep   float64 `mapstructure:"ranksep"`
	NodeSep   float64 `mapstructure:"nodesep"`
}

type VisualiserConfig struct {
	Channels ChannelsConfig `mapstructure:"channels"`
}

type ChannelsConfig struct {
	// RenderMode is "single" (one node per channel) or "flat".
	RenderMode string `mapstructure:"render_mode"`
}

// EventsConfig controls change notifications in watch mode. An empty
// NATSURL disables them.
type EventsConfig struct {
	NATSURL string `mapstructure:"nats_url"`
	Subject string `mapstructure:"subject"`
}

var envBindings = map[string]string{
	"project_dir":     "PROJECT_DIR",
	"cache.disabled":  "DISABLE_EVENTCATALOG_CACHE",
	"layout.ranksep":  "EVENTCATALOG_LAYOUT_RANKSEP",
	"layout.nodesep":  "EVENTCATALOG_LAYOUT_NODESEP",
	"events.nats_url": "EVENTCATALOG_NATS_URL",
}

// Load reads the configuration. projectDir, when set, takes precedence over
// PROJECT_DIR and is where eventcatalog.yaml is looked up.
func Load(projectDir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("project_dir", ".")
	v.SetDefault("cache.disabled", false)
	v.SetDefault("layout.direction", "LR")
	v.SetDefault("layout.ranksep", 300)
	v.SetDefault("layout.nodesep", 50)
	v.SetDefault("visualiser.channels.render_mode", "flat")
	v.SetDefault("events.subject", "eventcatalog.catalog")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}
	if projectDir != "" {
		v.Set("project_dir", projectDir)
	}

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("project_dir"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s.yaml: %w", FileName, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Layout.Direction = strings.ToUpper(strings.TrimSpace(c.Layout.Direction))
	switch c.Layout.Direction {
	case "LR", "TB":
	default:
		return fmt.Errorf("%w: layout.direction must be LR or TB, got %q", ErrInvalid, c.Layout.Direction)
	}
	if c.Layout.RankSep <= 0 || c.Layout.NodeSep <= 0 {
		return fmt.Errorf("%w: layout separations must be positive", ErrInvalid)
	}
	switch c.Visualiser.Channels.RenderMode {
	case "single", "flat":
	default:
		return fmt.Errorf("%w: visualiser.channels.render_mode must be single or flat, got %q", ErrInvalid, c.Visualiser.Channels.RenderMode)
	}
	if c.Events.NATSURL != "" && strings.TrimSpace(c.Events.Subject) == "" {
		return fmt.Errorf("%w: events.subject is required with events.nats_url", ErrInvalid)
	}
	return nil
}
