// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to OS keychain.
//
// Sources are layered with later ones winning: built-in defaults, the YAML
// file, SESSIONCTL_* environment variables, then explicit overrides (flags).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	yamlv3 "gopkg.in/yaml.v3"

	errs "sessionctl/cli/internal/errors"
	"sessionctl/cli/internal/xdg"
)

// EnvPrefix is the prefix of environment variables read by Load.
// SESSIONCTL_API_URL maps to api.url, SESSIONCTL_REFRESH_LEEWAY to refresh.leeway.
const EnvPrefix = "SESSIONCTL_"

// DefaultAPIURL is the auth service used when nothing else is configured.
const DefaultAPIURL = "https://api.sessionctl.dev"

// Config holds non-sensitive CLI settings.
type Config struct {
	API       APIConfig       `koanf:"api" yaml:"api"`
	Endpoints EndpointsConfig `koanf:"endpoints" yaml:"endpoints"`
	Refresh   RefreshConfig   `koanf:"refresh" yaml:"refresh"`
	Log       LogConfig       `koanf:"log" yaml:"log"`
}

// APIConfig locates the auth service.
type APIConfig struct {
	URL     string        `koanf:"url" yaml:"url"`
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
}

// EndpointsConfig holds the request paths, relative to APIConfig.URL.
type EndpointsConfig struct {
	Me      string `koanf:"me" yaml:"me"`
	Login   string `koanf:"login" yaml:"login"`
	Refresh string `koanf:"refresh" yaml:"refresh"`
}

// RefreshConfig controls proactive token refresh.
type RefreshConfig struct {
	Leeway time.Duration `koanf:"leeway" yaml:"leeway"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level string `koanf:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: APIConfig{URL: DefaultAPIURL, Timeout: 10 * time.Second},
		Endpoints: EndpointsConfig{
			Me:      "/v1/users/me",
			Login:   "/v3/auth/login",
			Refresh: "/v3/auth/refresh",
		},
		Refresh: RefreshConfig{Leeway: 30 * time.Second},
		Log:     LogConfig{Level: "info"},
	}
}

// mapProvider feeds flag overrides to koanf. Keys are dotted paths.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: map provider has no byte form")
}

func (m mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(m, "."), nil
}

// Load reads configuration from path (the XDG config.yaml when empty), the
// environment and overrides. A missing file is not an error.
func Load(path string, overrides map[string]any) (Config, error) {
	c := Default()
	k := koanf.New(".")

	if path == "" {
		p, err := xdg.ConfigFile()
		if err != nil {
			return c, err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return c, errs.Wrap(errs.InvalidConfig, "cannot parse "+path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return c, err
	}

	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "_", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformer), nil); err != nil {
		return c, fmt.Errorf("load env: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(mapProvider(overrides), nil); err != nil {
			return c, fmt.Errorf("load overrides: %w", err)
		}
	}

	if err := k.Unmarshal("", &c); err != nil {
		return c, errs.Wrap(errs.InvalidConfig, "cannot decode configuration", err)
	}
	return c, c.Validate()
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errs.New(errs.InvalidConfig, fmt.Sprintf("api.url %q is not an http(s) URL", c.API.URL))
	}
	if c.API.Timeout <= 0 {
		return errs.New(errs.InvalidConfig, "api.timeout must be positive")
	}
	if c.Refresh.Leeway < 0 {
		return errs.New(errs.InvalidConfig, "refresh.leeway must not be negative")
	}
	for name, p := range map[string]string{"me": c.Endpoints.Me, "login": c.Endpoints.Login, "refresh": c.Endpoints.Refresh} {
		if !strings.HasPrefix(p, "/") {
			return errs.New(errs.InvalidConfig, fmt.Sprintf("endpoints.%s must start with /", name))
		}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return errs.Wrap(errs.InvalidConfig, "log.level", err)
	}
	return nil
}

// Marshal renders c as YAML in the layout Load reads.
func Marshal(c Config) ([]byte, error) {
	return yamlv3.Marshal(c)
}

// Save writes configuration as YAML with 0600 permissions.
func Save(path string, c Config) error {
	if path == "" {
		p, err := xdg.ConfigFile()
		if err != nil {
			return err
		}
		path = p
	}
	b, err := Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
