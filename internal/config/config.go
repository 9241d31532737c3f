package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/gpm-labs/gpm/internal/branding"
)

const (
	fileName = "settings"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyLogLevel = "log_level" // zerolog level name
	KeyAssume   = "assume"    // preset answer to the recovery prompt: yes or no
	KeyColor    = "color"     // colored console output
)

var defaults = map[string]any{
	KeyLogLevel: "info",
	KeyAssume:   "",
	KeyColor:    true,
}

// Keys returns the known setting keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FilePath returns the settings file inside home.
func FilePath(home string) string {
	return filepath.Join(home, fileName+"."+fileType)
}

// Settings holds the loaded settings of one gpm home.
type Settings struct {
	v    *viper.Viper
	path string
}

// Load reads settings from home and the environment. A missing settings file
// leaves every key at its default.
func Load(home string) (*Settings, error) {
	s := &Settings{v: viper.New(), path: FilePath(home)}
	s.v.SetConfigFile(s.path)
	s.v.SetConfigType(fileType)
	s.v.SetEnvPrefix(branding.EnvPrefix())
	s.v.AutomaticEnv()
	for k, v := range defaults {
		s.v.SetDefault(k, v)
	}

	if err := s.v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading settings %s: %w", s.path, err)
	}
	return s, nil
}

// Get returns a setting by key. Returns empty string if not set.
func (s *Settings) Get(key string) string {
	return s.v.GetString(key)
}

// LogLevel returns the configured log level.
func (s *Settings) LogLevel() string {
	return s.v.GetString(KeyLogLevel)
}

// Color reports whether colored output is enabled.
func (s *Settings) Color() bool {
	return s.v.GetBool(KeyColor)
}

// Assume returns the preset answer to the recovery prompt, and whether one
// is configured at all.
func (s *Settings) Assume() (answer bool, ok bool) {
	switch strings.ToLower(s.v.GetString(KeyAssume)) {
	case "yes", "y":
		return true, true
	case "no", "n":
		return false, true
	default:
		return false, false
	}
}

// Set validates and writes a setting to the settings file. Values coming
// from the environment are not written back.
func (s *Settings) Set(key, value string) error {
	if err := validate(key, value); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", filepath.Dir(s.path), err)
	}

	file := viper.New()
	file.SetConfigFile(s.path)
	file.SetConfigType(fileType)
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading settings %s: %w", s.path, err)
	}
	file.Set(key, value)
	if err := file.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	s.v.Set(key, value)
	return nil
}

func validate(key, value string) error {
	switch key {
	case KeyLogLevel:
		switch strings.ToLower(value) {
		case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
			return nil
		}
		return fmt.Errorf("invalid %s %q", key, value)
	case KeyAssume:
		switch strings.ToLower(value) {
		case "", "yes", "y", "no", "n":
			return nil
		}
		return fmt.Errorf("invalid %s %q: want yes, no or empty", key, value)
	case KeyColor:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("invalid %s %q: want true or false", key, value)
		}
		return nil
	default:
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
}
