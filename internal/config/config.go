// Package config loads the settings shared by the oracle-circuit commands.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	KeyQuorum   = "quorum"
	KeyCurve    = "curve"
	KeyDir      = "key_dir"
	KeyLogLevel = "log_level"

	DefaultEnvPrefix = "ORACLE_CIRCUIT"
)

// Options controls where configuration is read from.
type Options struct {
	// FilePath is an optional config file of any type viper understands (yaml, json, toml).
	FilePath string
	// EnvPrefix is prepended to environment variables, so that with "ORACLE_CIRCUIT"
	// the quorum is read from ORACLE_CIRCUIT_QUORUM.
	EnvPrefix string
}

type Config struct {
	// Quorum is the number of signatures compiled into the circuit. Wormhole
	// mainnet needs 13 out of 19 guardians.
	Quorum   int    `mapstructure:"quorum"`
	Curve    string `mapstructure:"curve"`
	KeyDir   string `mapstructure:"key_dir"`
	LogLevel string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyQuorum, 13)
	v.SetDefault(KeyCurve, ecc.BN254.String())
	v.SetDefault(KeyDir, "./keys")
	v.SetDefault(KeyLogLevel, zerolog.InfoLevel.String())
}

// Load reads configuration with the following precedence:
// 1. Environment variables
// 2. Config file
// 3. Defaults
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.FilePath != "" {
		v.SetConfigFile(opts.FilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.FilePath, err)
		}
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Quorum < 1 {
		return fmt.Errorf("quorum must be at least 1, got %d", c.Quorum)
	}
	if _, err := c.CurveID(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.KeyDir == "" {
		return errors.New("key_dir must not be empty")
	}
	return nil
}

// CurveID is the curve whose scalar field the circuit is compiled over.
func (c *Config) CurveID() (ecc.ID, error) {
	id, err := ecc.IDFromString(c.Curve)
	if err != nil {
		return ecc.UNKNOWN, fmt.Errorf("unsupported curve %q: %w", c.Curve, err)
	}
	return id, nil
}

func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
