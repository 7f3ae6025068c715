// Package config loads taverley configuration from YAML with viper.
// Environment variables prefixed TAVERLEY_ override file values.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mxtrix/Happy-Little-Taverley/internal/game"
	"github.com/mxtrix/Happy-Little-Taverley/internal/logging"
	"github.com/mxtrix/Happy-Little-Taverley/internal/rotation"
)

// Config holds all taverley configuration.
type Config struct {
	Logging  logging.Config `mapstructure:"logging"`
	Rotation RotationConfig `mapstructure:"rotation"`
	Travel   TravelConfig   `mapstructure:"travel"`
	Client   ClientConfig   `mapstructure:"client"`
	State    StateConfig    `mapstructure:"state"`
	Tasks    []TaskConfig   `mapstructure:"tasks"`
}

// RotationConfig controls how the orchestrator advances between tasks.
type RotationConfig struct {
	// Mode is "sequential" (circular Next) or "random" (RandomNext).
	Mode string `mapstructure:"mode"`
	// KeepPreviousActive is applied to the outgoing task on each switch.
	KeepPreviousActive bool `mapstructure:"keep_previous_active"`
	// WorkInterval is how long to stay on a task before rotating.
	WorkInterval time.Duration `mapstructure:"work_interval"`
	// Cron optionally replaces WorkInterval with a cron expression.
	Cron string `mapstructure:"cron"`
}

// TravelConfig bounds the teleport-arrival poll.
type TravelConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// ClientConfig selects and parameterizes the game-client backend.
type ClientConfig struct {
	// Kind is "sim" or "remote".
	Kind string `mapstructure:"kind"`
	// URL is the websocket address of the client bridge (remote only).
	URL string `mapstructure:"url"`
	// RequestTimeout bounds a bridge round trip (remote only).
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// Skills seeds the simulator's levels (sim only).
	Skills map[string]int `mapstructure:"skills"`
	// Member marks the simulated account as members (sim only).
	Member bool `mapstructure:"member"`
}

// StateConfig locates the session database.
type StateConfig struct {
	Path string `mapstructure:"path"`
}

// TaskConfig is one task definition as written in taverley.yaml.
type TaskConfig struct {
	Name          string       `mapstructure:"name"`
	Skill         string       `mapstructure:"skill"`
	RequiredLevel int          `mapstructure:"required_level"`
	MembersOnly   bool         `mapstructure:"members_only"`
	Area          game.Rect    `mapstructure:"area"`
	Anchor        string       `mapstructure:"anchor"`
	Path          []game.Point `mapstructure:"path"`
}

const (
	ModeSequential = "sequential"
	ModeRandom     = "random"

	ClientSim    = "sim"
	ClientRemote = "remote"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: logging.DefaultConfig(),
		Rotation: RotationConfig{
			Mode:               ModeSequential,
			KeepPreviousActive: true,
			WorkInterval:       20 * time.Minute,
		},
		Travel: TravelConfig{
			Timeout:      15 * time.Second,
			PollInterval: 100 * time.Millisecond,
		},
		Client: ClientConfig{
			Kind: ClientSim,
		},
	}
}

// newViper builds a viper instance with defaults and env wiring.
func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("taverley")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/taverley")
	}

	v.SetEnvPrefix("TAVERLEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.path", d.Logging.Path)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.retention_days", d.Logging.RetentionDays)
	v.SetDefault("rotation.mode", d.Rotation.Mode)
	v.SetDefault("rotation.keep_previous_active", d.Rotation.KeepPreviousActive)
	v.SetDefault("rotation.work_interval", d.Rotation.WorkInterval)
	v.SetDefault("travel.timeout", d.Travel.Timeout)
	v.SetDefault("travel.poll_interval", d.Travel.PollInterval)
	v.SetDefault("client.kind", d.Client.Kind)

	return v
}

// Load reads configuration from path (or the default search locations
// when path is empty) and validates it.
func Load(path string) (*Config, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			// No config file anywhere: defaults only, no tasks.
			cfg := Default()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch reloads the config whenever the file changes, invoking onChange
// with each successfully validated new Config. Invalid edits are logged
// and skipped, keeping the previous config in force.
func Watch(path string, onChange func(*Config)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	log := logging.Component("config")
	v.OnConfigChange(func(e fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			log.Err(err).Str("file", e.Name).Msg("ignoring config reload")
			return
		}
		if err := cfg.Validate(); err != nil {
			log.Err(err).Str("file", e.Name).Msg("ignoring invalid config reload")
			return
		}
		log.Infof("config reloaded from %s", e.Name)
		onChange(&cfg)
	})
	v.WatchConfig()
	return nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Rotation.Mode {
	case ModeSequential, ModeRandom:
	default:
		return fmt.Errorf("rotation.mode must be %q or %q, got %q", ModeSequential, ModeRandom, c.Rotation.Mode)
	}

	if c.Rotation.WorkInterval <= 0 && c.Rotation.Cron == "" {
		return fmt.Errorf("rotation needs a positive work_interval or a cron expression")
	}

	switch c.Client.Kind {
	case ClientSim:
	case ClientRemote:
		if c.Client.URL == "" {
			return fmt.Errorf("client.url is required for the remote client")
		}
	default:
		return fmt.Errorf("client.kind must be %q or %q, got %q", ClientSim, ClientRemote, c.Client.Kind)
	}

	for i, t := range c.Tasks {
		if t.Name == "" {
			return fmt.Errorf("tasks[%d]: name is required", i)
		}
		if _, err := game.ParseSkill(t.Skill); err != nil {
			return fmt.Errorf("tasks[%d] %q: %w", i, t.Name, err)
		}
		if t.RequiredLevel < 1 || t.RequiredLevel > game.MaxLevel {
			return fmt.Errorf("tasks[%d] %q: required_level %d out of range 1..%d",
				i, t.Name, t.RequiredLevel, game.MaxLevel)
		}
		if t.Area.MinX > t.Area.MaxX || t.Area.MinY > t.Area.MaxY {
			return fmt.Errorf("tasks[%d] %q: area bounds inverted", i, t.Name)
		}
	}
	return nil
}

// RotationTasks converts the configured task definitions into rotation
// entries. Call after Validate: skill parsing is assumed to succeed.
func (c *Config) RotationTasks() []rotation.Task {
	out := make([]rotation.Task, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		skill, _ := game.ParseSkill(t.Skill)
		out = append(out, rotation.Task{
			Name:          t.Name,
			Skill:         skill,
			RequiredLevel: t.RequiredLevel,
			MembersOnly:   t.MembersOnly,
			Area:          t.Area,
			Anchor:        game.Anchor(t.Anchor),
			Path:          t.Path,
		})
	}
	return out
}

// SimSkills converts the configured skill map for the simulator.
func (c *Config) SimSkills() map[game.Skill]int {
	out := make(map[game.Skill]int, len(c.Client.Skills))
	for name, lvl := range c.Client.Skills {
		if skill, err := game.ParseSkill(name); err == nil {
			out[skill] = lvl
		}
	}
	return out
}
