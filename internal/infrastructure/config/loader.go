package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/cmdgen/assets"
	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/pkg/filesystem"
	"github.com/doeshing/cmdgen/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "CMDGEN_CONFIG"

// FileLoader loads YAML configuration from ~/.cmdgen/config.yaml (overridable via CMDGEN_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded default. Keys absent from the file keep their default values.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	cfg, err := DefaultConfig()
	if err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := writeDefault(path); err != nil {
				return domain.Config{}, fmt.Errorf("write default config: %w", err)
			}
			return cfg, nil
		}
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	defaults := cfg.Backend
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return dropForeignBackendDefaults(cfg, defaults), nil
}

// dropForeignBackendDefaults clears the default model and endpoint when the
// file selects another backend without naming its own.
func dropForeignBackendDefaults(cfg domain.Config, defaults domain.BackendSettings) domain.Config {
	if cfg.Backend.Name == defaults.Name {
		return cfg
	}
	if cfg.Backend.Model == defaults.Model {
		cfg.Backend.Model = ""
	}
	if cfg.Backend.Endpoint == defaults.Endpoint {
		cfg.Backend.Endpoint = ""
	}
	return cfg
}

// Path returns the file Load reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandHome(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandHome(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

// Save writes cfg to the config file, replacing it atomically.
func (l *FileLoader) Save(cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, domain.SecureFilePermissions); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Backup copies the current config file to a timestamped backup.
func (l *FileLoader) Backup() (string, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102T150405"))
	if err := os.WriteFile(backup, data, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

// DefaultConfig parses the embedded default configuration.
func DefaultConfig() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("embedded config: %w", err)
	}
	return cfg, nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	return os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
