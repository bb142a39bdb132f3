package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aledsdavies/bindc/runtime/codec"
	"github.com/aledsdavies/bindc/runtime/watch"
)

const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"

	defaultFormat = codec.FormatText
)

// Settings are the resolved CLI settings. Flags override environment
// variables (BINDC_*), which override the settings file.
type Settings struct {
	File     string
	Format   codec.Format
	Color    string
	Debug    bool
	Debounce time.Duration
}

// flagKeys maps settings keys to the flags that override them.
var flagKeys = map[string]string{
	"file":           "file",
	"format":         "format",
	"color":          "color",
	"debug":          "debug",
	"watch.debounce": "debounce",
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "bindc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "bindc"
	}
	return filepath.Join(home, ".config", "bindc")
}

// settingsPath is BINDC_SETTINGS or $XDG_CONFIG_HOME/bindc/settings.toml.
func settingsPath() string {
	if path := os.Getenv("BINDC_SETTINGS"); path != "" {
		return path
	}
	return filepath.Join(configDir(), "settings.toml")
}

func loadSettings(flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()

	v.SetDefault("file", filepath.Join(configDir(), "bindings.conf"))
	v.SetDefault("format", string(defaultFormat))
	v.SetDefault("color", colorAuto)
	v.SetDefault("debug", false)
	v.SetDefault("watch.debounce", watch.DefaultDebounce)

	v.SetConfigType("toml")
	v.SetConfigFile(settingsPath())

	v.SetEnvPrefix("BINDC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Settings{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("read settings %s: %w", settingsPath(), err)
		}
	}

	format, err := codec.ParseFormat(v.GetString("format"))
	if err != nil {
		return Settings{}, err
	}

	color := strings.ToLower(strings.TrimSpace(v.GetString("color")))
	switch color {
	case colorAuto, colorAlways, colorNever:
	default:
		return Settings{}, fmt.Errorf("unknown color mode %q (want auto, always or never)", color)
	}

	debounce := v.GetDuration("watch.debounce")
	if debounce <= 0 {
		return Settings{}, fmt.Errorf("watch.debounce must be positive, got %s", v.GetString("watch.debounce"))
	}

	return Settings{
		File:     v.GetString("file"),
		Format:   format,
		Color:    color,
		Debug:    v.GetBool("debug"),
		Debounce: debounce,
	}, nil
}
