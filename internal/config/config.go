// Package config loads the ankimate configuration file (JSON or YAML)
// and applies defaults for anything left unset.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ankimate/ankimate/internal/guard"
)

// Config is the full application configuration.
type Config struct {
	// Anki holds the AnkiConnect endpoint settings.
	Anki AnkiConfig `json:"anki" yaml:"anki"`

	// Provider selects the LLM backend: openai, ollama, gemini,
	// anthropic or stub.
	Provider ProviderConfig `json:"provider" yaml:"provider"`

	// Server holds the HTTP listener settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// Guard is the mutation policy applied to every bulk operation.
	Guard guard.Policy `json:"guard" yaml:"guard"`

	// DBPath locates the local sqlite database for run history and
	// stored configuration.
	DBPath string `json:"db_path" yaml:"db_path"`
}

type AnkiConfig struct {
	URL     string   `json:"url" yaml:"url"`
	Timeout Duration `json:"timeout" yaml:"timeout"`
}

// Duration parses human-readable values like "30s" from both YAML and
// JSON.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.parse(raw)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.parse(value.Value)
}

func (d *Duration) parse(raw string) error {
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

type ProviderConfig struct {
	Name   string `json:"name" yaml:"name"`
	Model  string `json:"model" yaml:"model"`
	APIKey string `json:"api_key" yaml:"api_key"`
	// BaseURL overrides the backend endpoint, mainly for proxies and
	// self-hosted gateways.
	BaseURL string `json:"base_url" yaml:"base_url"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Anki: AnkiConfig{
			URL:     "http://127.0.0.1:8765",
			Timeout: Duration(30 * time.Second),
		},
		Provider: ProviderConfig{
			Name: "openai",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8460",
		},
		Guard:  guard.DefaultPolicy,
		DBPath: filepath.Join(home, ".ankimate", "ankimate.db"),
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ankimate", "config.yaml")
}

// Load reads a configuration file and merges it over the defaults. A
// missing file at the default path is not an error; an explicitly named
// file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s (use .json or .yaml)", ext)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults backfills zero values that the file left out.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Anki.URL == "" {
		c.Anki.URL = def.Anki.URL
	}
	if c.Anki.Timeout <= 0 {
		c.Anki.Timeout = def.Anki.Timeout
	}
	if c.Provider.Name == "" {
		c.Provider.Name = def.Provider.Name
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if len(c.Guard.AllowedDeckGlobs) == 0 {
		c.Guard.AllowedDeckGlobs = def.Guard.AllowedDeckGlobs
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
}
