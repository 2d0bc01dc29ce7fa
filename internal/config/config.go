// Package config resolves deskwatch settings from flags, environment and
// the optional ~/.deskwatch.yaml file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrNoHome means the watch root could not be resolved at all.
var ErrNoHome = errors.New("could not find home directory")

// Viper keys.
const (
	KeyRoot        = "root"
	KeyDebugDir    = "debug_dir"
	KeyProjectsDir = "projects_dir"
	KeyDebounce    = "debounce"
	KeyPort        = "port"
	KeyOutput      = "output"
	KeyLogLevel    = "log_level"
)

// EnvPrefix prefixes environment overrides, e.g. DESKWATCH_ROOT.
const EnvPrefix = "DESKWATCH"

// Config is the resolved runtime configuration.
type Config struct {
	Root        string
	DebugDir    string
	ProjectsDir string
	Debounce    time.Duration
	Port        string
	Output      string
	LogLevel    slog.Level
}

// Subdirs returns the watched subdirectory names, relative to Root.
func (c Config) Subdirs() []string {
	return []string{c.DebugDir, c.ProjectsDir}
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDebugDir, "debug")
	v.SetDefault(KeyProjectsDir, "projects")
	v.SetDefault(KeyDebounce, "200ms")
	v.SetDefault(KeyPort, "7420")
	v.SetDefault(KeyOutput, "text")
	v.SetDefault(KeyLogLevel, "info")
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	root := v.GetString(KeyRoot)
	if root == "" {
		home, err := Home()
		if err != nil {
			return Config{}, err
		}
		root = home
	}
	root, err := expandHome(root)
	if err != nil {
		return Config{}, err
	}

	debounce := v.GetDuration(KeyDebounce)
	if debounce <= 0 {
		return Config{}, fmt.Errorf("invalid %s %q: must be a positive duration", KeyDebounce, v.GetString(KeyDebounce))
	}

	output := strings.ToLower(v.GetString(KeyOutput))
	if output != "text" && output != "json" {
		return Config{}, fmt.Errorf("invalid %s %q: want text or json", KeyOutput, output)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}

	return Config{
		Root:        filepath.Clean(root),
		DebugDir:    v.GetString(KeyDebugDir),
		ProjectsDir: v.GetString(KeyProjectsDir),
		Debounce:    debounce,
		Port:        v.GetString(KeyPort),
		Output:      output,
		LogLevel:    level,
	}, nil
}

// Home resolves the assistant's home location, ~/.claude.
func Home() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrNoHome
	}
	return filepath.Join(home, ".claude"), nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrNoHome
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
