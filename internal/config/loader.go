package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type validatable interface {
	Validate() error
}

// Load reads the server configuration. Values come from, in order of
// priority, the environment, the YAML file named by CONFIG_PATH
// (default ./config.yaml) and the env-default tags. A missing default file
// is not an error; a missing explicit one is.
func Load() (*Config, error) {
	return load[Config]("CONFIG_PATH", "./config.yaml")
}

// LoadClient reads the report client configuration the same way, from
// CLIENT_CONFIG_PATH (default ./client.yaml).
func LoadClient() (*ClientConfig, error) {
	return load[ClientConfig]("CLIENT_CONFIG_PATH", "./client.yaml")
}

func load[T any, PT interface {
	*T
	validatable
}](pathEnv, defaultPath string) (*T, error) {
	cfg := new(T)

	path, explicit := os.LookupEnv(pathEnv)
	if !explicit || path == "" {
		path, explicit = defaultPath, false
	}

	switch _, err := os.Stat(path); {
	case err == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := PT(cfg).Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}
