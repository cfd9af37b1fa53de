package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	appDirName     = "outlook-mcp"
	configFileName = "config.toml"
	credsFileName  = "credentials.db"

	dirPerm  = 0o700
	filePerm = 0o600
)

// Store reads and writes the configuration file at a fixed path.
type Store struct {
	path string
}

// NewStore returns a store for the given path, or for the default
// location when path is empty.
func NewStore(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return &Store{path: path}, nil
}

// Path returns the location the store reads from and writes to.
func (s *Store) Path() string {
	return s.path
}

// DefaultPath returns the per-user configuration file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(base, appDirName, configFileName), nil
}

// Load reads the configuration file, falling back to defaults when it
// does not exist yet. Environment overrides are applied last, so they
// win over the file.
func (s *Store) Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run: defaults plus environment.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", s.path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", s.path, err)
		}
	}

	cfg.normalise()
	cfg.applyEnv()
	return cfg, nil
}

// Save writes the configuration, creating the directory on first use.
// The file may hold a client secret, so it is not group readable.
func (s *Store) Save(cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, filePerm); err != nil {
		return fmt.Errorf("write config %s: %w", s.path, err)
	}
	return nil
}

// CredentialsPath resolves the credentials database location: the
// configured path when set, otherwise a credentials.db beside the
// configuration file.
func (s *Store) CredentialsPath(cfg *Config) string {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path
	}
	return filepath.Join(filepath.Dir(s.path), credsFileName)
}
