// Package config holds process configuration for memberqa.
//
// Configuration is resolved in three layers: built-in defaults, an
// optional memberqa.yaml file, and MEMBERQA_* environment variables
// (highest precedence). The resolved Config is passed into
// constructors explicitly; nothing reads the environment after Load.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "claude-3-5-haiku-20241022"

// DefaultSourceURL is the member message source endpoint.
const DefaultSourceURL = "https://november7-730026606190.europe-west1.run.app/messages/"

// Config carries every recognized option.
type Config struct {
	Source     SourceConfig     `koanf:"source"`
	Completion CompletionConfig `koanf:"completion"`
	Server     ServerConfig     `koanf:"server"`
	Storage    StorageConfig    `koanf:"storage"`
}

// SourceConfig configures the message source.
type SourceConfig struct {
	URL        string        `koanf:"url"`
	FetchLimit int           `koanf:"fetch_limit"`
	Timeout    time.Duration `koanf:"timeout"`
}

// CompletionConfig configures the text-completion service. An empty
// APIKey is a recognized state: components that need the service skip
// their work and degrade rather than fail.
type CompletionConfig struct {
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// ServerConfig configures the query endpoint wrapper.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// StorageConfig configures the analysis-run archive. An empty Path
// disables archiving.
type StorageConfig struct {
	Path string `koanf:"path"`
}

func defaults() *Config {
	return &Config{
		Source: SourceConfig{
			URL:        DefaultSourceURL,
			FetchLimit: 300,
			Timeout:    30 * time.Second,
		},
		Completion: CompletionConfig{
			Model:   DefaultModel,
			Timeout: 60 * time.Second,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Storage: StorageConfig{},
	}
}

// Load builds the configuration from defaults, the YAML file at path
// (skipped silently when absent), and environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			k := koanf.New(".")
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, err
			}
			if err := k.Unmarshal("", cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv layers environment variables over whatever the file set.
// MEMBERQA_API_KEY wins over ANTHROPIC_API_KEY; the latter is honored
// so the standard SDK variable keeps working.
func (c *Config) applyEnv() {
	if v := os.Getenv("MEMBERQA_SOURCE_URL"); v != "" {
		c.Source.URL = v
	}
	if v := os.Getenv("MEMBERQA_FETCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Source.FetchLimit = n
		}
	}
	if v := os.Getenv("MEMBERQA_API_KEY"); v != "" {
		c.Completion.APIKey = v
	} else if c.Completion.APIKey == "" {
		c.Completion.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if v := os.Getenv("MEMBERQA_MODEL"); v != "" {
		c.Completion.Model = v
	}
	if v := os.Getenv("MEMBERQA_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MEMBERQA_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
}
