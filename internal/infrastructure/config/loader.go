// Package config loads nlsh configuration from ~/.nlsh/config.yaml.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/nlsh/assets"
	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/pkg/filesystem"
	"github.com/doeshing/nlsh/internal/ports"
)

// EnvConfigPath overrides the config location when no explicit path is given.
const EnvConfigPath = "NLSH_CONFIG"

const defaultFileName = "config.yaml"

// FileLoader loads configuration from disk, writing the embedded default on
// first run. Paths ending in .toml are read as TOML, everything else as YAML.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path means NLSH_CONFIG or
// ~/.nlsh/config.yaml.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Path returns the file Load reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return expand(l.overridePath)
	}
	if custom := strings.TrimSpace(os.Getenv(EnvConfigPath)); custom != "" {
		return expand(custom)
	}
	return filepath.Join(filesystem.AppDir(), defaultFileName)
}

// Load implements ports.ConfigProvider. File values are layered over the
// embedded defaults so a partial file is valid.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()

	cfg, err := Defaults()
	if err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := l.writeDefault(path); err != nil {
			return domain.Config{}, err
		}
		return normalize(cfg), nil
	}
	if err != nil {
		return domain.Config{}, fmt.Errorf("%w: read %s: %v", domain.ErrConfigLoad, path, err)
	}

	if err := decode(path, data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("%w: parse %s: %v", domain.ErrConfigLoad, path, err)
	}
	return normalize(cfg), nil
}

// Reset overwrites the config file with the embedded default.
func (l *FileLoader) Reset() (string, error) {
	path := l.Path()
	if err := l.writeDefault(path); err != nil {
		return "", err
	}
	return path, nil
}

// Defaults decodes the embedded default configuration.
func Defaults() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("%w: embedded defaults: %v", domain.ErrConfigLoad, err)
	}
	return cfg, nil
}

// ResolvedDefaults is Defaults after the normalisation Load applies, so it
// compares cleanly against a loaded configuration.
func ResolvedDefaults() (domain.Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return domain.Config{}, err
	}
	return normalize(cfg), nil
}

func (l *FileLoader) writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("%w: create config dir: %v", domain.ErrConfigLoad, err)
	}

	raw := assets.DefaultConfigYAML
	if isTOML(path) {
		cfg, err := Defaults()
		if err != nil {
			return err
		}
		if raw, err = toml.Marshal(cfg); err != nil {
			return fmt.Errorf("%w: encode defaults: %v", domain.ErrConfigLoad, err)
		}
	}
	if err := os.WriteFile(path, raw, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrConfigLoad, path, err)
	}
	return nil
}

// decode layers data over cfg. TOML is read into a generic document first
// and re-encoded as YAML so both formats share the same overlay rules:
// present keys replace, lists replace rather than append.
func decode(path string, data []byte, cfg *domain.Config) error {
	if !isTOML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return err
	}
	bridged, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(bridged, cfg)
}

// normalize canonicalises backend kinds and resolves file paths.
func normalize(cfg domain.Config) domain.Config {
	for i, def := range cfg.Backends {
		if kind, ok := domain.ParseBackendKind(string(def.Kind)); ok {
			cfg.Backends[i].Kind = kind
		}
	}
	if cfg.Preferences.DefaultBackend == "" && len(cfg.Backends) > 0 {
		cfg.Preferences.DefaultBackend = cfg.Backends[0].Name
	}
	cfg.Safety.RulesFile = filesystem.ExpandPath(cfg.Safety.RulesFile)
	cfg.History.Path = filesystem.ExpandPath(cfg.History.Path)
	if cfg.Logging.Output != "" && cfg.Logging.Output != "stderr" && cfg.Logging.Output != "stdout" {
		cfg.Logging.Output = filesystem.ExpandPath(cfg.Logging.Output)
	}
	return cfg
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// expand resolves "~/" but keeps relative paths relative to the working
// directory, which is what a user typing --config expects.
func expand(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		return filesystem.ExpandPath(path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
