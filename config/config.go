// Package config loads runtime settings from a YAML file, REFUGEEFLOW_*
// environment variables and command line flags through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/TFMV/refugeeflow/ingest"
	"github.com/TFMV/refugeeflow/physics"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "REFUGEEFLOW"

// DefaultFile is looked up in the home directory when no file is given
const DefaultFile = ".refugeeflow.yaml"

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig toggles the stdout span exporter
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config is the full application configuration
type Config struct {
	Data    ingest.Sources  `mapstructure:"data"`
	Server  ServerConfig    `mapstructure:"server"`
	Layout  physics.Options `mapstructure:"layout"`
	Log     LogConfig       `mapstructure:"log"`
	Tracing TracingConfig   `mapstructure:"tracing"`
}

// SetDefaults registers a default for every key so env overrides and
// Unmarshal see the full key set
func SetDefaults(v *viper.Viper) {
	layout := physics.DefaultOptions()

	v.SetDefault("data.od", "")
	v.SetDefault("data.inbound", "")
	v.SetDefault("data.outbound", "")

	v.SetDefault("server.port", 8050)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	v.SetDefault("layout.algorithm", layout.Algorithm)
	v.SetDefault("layout.width", layout.Width)
	v.SetDefault("layout.height", layout.Height)
	v.SetDefault("layout.max_iterations", layout.MaxIterations)
	v.SetDefault("layout.tolerance", layout.Tolerance)
	v.SetDefault("layout.gravity", layout.Gravity)
	v.SetDefault("layout.repulsion_force", layout.RepulsionForce)
	v.SetDefault("layout.spring_constant", layout.SpringConstant)
	v.SetDefault("layout.damping_factor", layout.DampingFactor)
	v.SetDefault("layout.cooling", layout.Cooling)
	v.SetDefault("layout.seed", layout.Seed)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("tracing.enabled", false)
}

// New returns a viper instance with defaults, env binding and the config
// file read in. A missing default file is not an error; a missing explicit
// file is.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
		return v, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return v, nil
	}
	v.SetConfigFile(filepath.Join(home, DefaultFile))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return v, nil
}

// Load decodes the viper state into a validated Config
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q (want text or json)", c.Log.Format)
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}
	return nil
}
