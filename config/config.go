// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/constant"
	"github.com/tvloop/tvloop/filesystem"
	"github.com/tvloop/tvloop/key"
	"github.com/tvloop/tvloop/where"
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
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// Millis reads an integer millisecond key as a duration, never negative.
func Millis(k string) time.Duration {
	return time.Duration(lo.Max([]int{viper.GetInt(k), 0})) * time.Millisecond
}

// HistoryCapacity resolves the position cache bound. Low-memory devices keep
// the minimum; otherwise the configured value is clamped into the supported range.
func HistoryCapacity() int {
	if viper.GetBool(key.HistoryLowMemory) {
		return MinHistoryCapacity
	}
	return lo.Clamp(viper.GetInt(key.HistoryCapacity), MinHistoryCapacity, MaxHistoryCapacity)
}

// Position cache bounds.
const (
	MinHistoryCapacity = 50
	MaxHistoryCapacity = 300
)
