// Package file loads push environments from a TOML config file.
// A couchpush.toml beside the source tree takes precedence over the
// per-user file in ~/.couchpush/.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
)

// ConfigFileName is the per-tree and per-user config file name.
const ConfigFileName = "couchpush.toml"

// Environment is one named push target.
type Environment struct {
	// URL is the full database URL, e.g. http://localhost:5984/myapp.
	URL string `toml:"url"`

	// Username and Password are optional basic-auth credentials. An
	// empty password with a set username triggers a prompt.
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// Config holds every configured environment.
type Config struct {
	// Default names the environment used when none is given.
	Default string `toml:"default"`

	// Env maps environment names to their settings.
	Env map[string]Environment `toml:"env"`
}

// Load reads configuration for the tree at root. A config file beside
// the tree wins over the user-level one; a missing file yields an
// empty config rather than an error.
func Load(root string) (*Config, error) {
	paths := []string{filepath.Join(root, ConfigFileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".couchpush", ConfigFileName))
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		var cfg Config
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &cfg, nil
	}
	return &Config{}, nil
}

// Save writes the config to dir with owner-only permissions.
func Save(cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Resolve returns the named environment, or the default when name is
// empty. A bare database URL passed instead of a name resolves to an
// ad-hoc environment.
func (c *Config) Resolve(name string) (Environment, error) {
	if name == "" {
		name = c.Default
	}
	if name == "" {
		return Environment{}, fmt.Errorf("%w: no environment given and no default configured", domain.ErrUnknownEnv)
	}

	if env, ok := c.Env[name]; ok {
		if env.URL == "" {
			return Environment{}, fmt.Errorf("%w: environment %q has no url", domain.ErrUnknownEnv, name)
		}
		return env, nil
	}

	// Convenience: treat an URL-looking argument as the target itself.
	if looksLikeURL(name) {
		return Environment{URL: name}, nil
	}
	return Environment{}, fmt.Errorf("%w: %s", domain.ErrUnknownEnv, name)
}

func looksLikeURL(s string) bool {
	return len(s) > 7 && (s[:7] == "http://" || (len(s) > 8 && s[:8] == "https://"))
}
