package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "TALLY_"
	envConfigFile = "TALLY_CONFIG"
	envDotFile    = "TALLY_ENV_FILE"
	defaultDotEnv = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if TALLY_CONFIG is set
//  3. env (prefix TALLY_); a double underscore separates nested keys,
//     e.g. TALLY_EVENT__NAME sets event.name
//
// A dotenv file (TALLY_ENV_FILE, or ./.env when present) is read into the
// process environment first. It never overrides variables already set.
func Load(_ context.Context) (*Config, error) {
	if err := loadDotEnv(os.Getenv(envDotFile)); err != nil {
		return nil, err
	}

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The config path itself is not a setting.
	k.Delete("config")

	cfg := *base
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Metadata:         nil,
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			ZeroFields:       true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultDotEnv); err != nil {
			return nil
		}
		path = defaultDotEnv
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

// Validate checks field constraints and that the event definition builds.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Event.Book(); err != nil {
		return err
	}
	if _, err := c.Event.Calculator(); err != nil {
		return err
	}
	return nil
}
