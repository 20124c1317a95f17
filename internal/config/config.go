// Package config loads settings from defaults, an optional ffscrub.yaml and
// FFSCRUB_* environment variables through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// Name is the config file name without extension.
	Name = "ffscrub"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "FFSCRUB"

	// EnvConfigPath overrides the directory searched for the config file.
	EnvConfigPath = "FFSCRUB_CONFIG_PATH"
)

// EnvKeyReplacer maps config keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Config is a typed snapshot of the settings.
type Config struct {
	Converter Converter
	Player    Player
	Log       Log
	// FFmpegLogLevel is a level name understood by ffscrub.ParseLogLevel.
	FFmpegLogLevel string
}

type Converter struct {
	Executable string
	Mode       string
	Output     string
	Filters    []string
}

type Player struct {
	WrapWindow     float64
	ReopenEachTick bool
	Fit            string
	DisplayFPS     float64
}

type Log struct {
	Level string
	JSON  bool
	File  string
}

// Setup registers defaults and environment bindings on the global viper
// instance and reads the config file if there is one. Config files are
// read from fsys; the working directory is searched first, then
// $FFSCRUB_CONFIG_PATH or the user config directory.
func Setup(fsys afero.Fs) error {
	viper.SetConfigName(Name)
	viper.SetConfigType("yaml")
	viper.SetFs(fsys)
	for _, dir := range SearchPaths() {
		viper.AddConfigPath(dir)
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
		viper.MustBindEnv(name)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SearchPaths returns the directories searched for ffscrub.yaml.
func SearchPaths() []string {
	paths := []string{"."}
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return append(paths, custom)
	}
	if base, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(base, Name))
	}
	return paths
}

// Load returns the current settings and checks them.
func Load() (*Config, error) {
	cfg := &Config{
		Converter: Converter{
			Executable: viper.GetString(ConverterExecutable),
			Mode:       viper.GetString(ConverterMode),
			Output:     viper.GetString(ConverterOutput),
			Filters:    viper.GetStringSlice(ConverterFilters),
		},
		Player: Player{
			WrapWindow:     viper.GetFloat64(PlayerWrapWindow),
			ReopenEachTick: viper.GetBool(PlayerReopenEachTick),
			Fit:            viper.GetString(PlayerFit),
			DisplayFPS:     viper.GetFloat64(PlayerDisplayFPS),
		},
		Log: Log{
			Level: viper.GetString(LogLevel),
			JSON:  viper.GetBool(LogJSON),
			File:  viper.GetString(LogFile),
		},
		FFmpegLogLevel: viper.GetString(FFmpegLogLevel),
	}

	if cfg.Player.WrapWindow < 0 {
		return nil, fmt.Errorf("config: %s must not be negative, got %v", PlayerWrapWindow, cfg.Player.WrapWindow)
	}
	if cfg.Player.DisplayFPS <= 0 {
		return nil, fmt.Errorf("config: %s must be positive, got %v", PlayerDisplayFPS, cfg.Player.DisplayFPS)
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("config: %s: %w", LogLevel, err)
	}
	return cfg, nil
}
