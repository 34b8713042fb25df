// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cinesrc/cinesrc/constant"
	"github.com/cinesrc/cinesrc/filesystem"
	"github.com/cinesrc/cinesrc/key"
	"github.com/cinesrc/cinesrc/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return Validate()
}

// Validate rejects combinations of values the retrieval core cannot work with.
func Validate() error {
	if n := viper.GetInt(key.ProbeAttempts); n < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", key.ProbeAttempts, n)
	}

	if n := viper.GetInt(key.ProbeConcurrency); n < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", key.ProbeConcurrency, n)
	}

	lo, hi := viper.GetInt(key.LifecycleIncrementMin), viper.GetInt(key.LifecycleIncrementMax)
	if lo <= 0 || hi < lo || hi > 100 {
		return fmt.Errorf("progress increments must satisfy 0 < %s <= %s <= 100, got %d and %d",
			key.LifecycleIncrementMin, key.LifecycleIncrementMax, lo, hi)
	}

	for _, k := range []string{key.ProbeBaseDelay, key.ProbeTimeout, key.LifecycleTickInterval, key.ProvidersCacheTTL} {
		if viper.GetInt(k) < 0 {
			return fmt.Errorf("%s must not be negative", k)
		}
	}

	return nil
}

// Millis reads an integer key holding milliseconds as a time.Duration.
func Millis(k string) time.Duration {
	return time.Duration(viper.GetInt(k)) * time.Millisecond
}
