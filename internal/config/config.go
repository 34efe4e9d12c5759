// Package config loads the YAML configuration file and applies defaults for
// anything left unset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Batch      BatchConfig      `yaml:"batch"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type FetchConfig struct {
	Timeout      Duration `yaml:"timeout"`
	MaxRedirects int      `yaml:"max_redirects"`
	MaxBodyBytes int64    `yaml:"max_body_bytes"`
	UserAgent    string   `yaml:"user_agent"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	return fmt.Errorf("invalid duration value")
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type BatchConfig struct {
	// Workers bounds concurrent analysis in synchronous batches. 1 means
	// sequential.
	Workers int `yaml:"workers"`
}

type SummarizerConfig struct {
	// Provider selects the analysis backend: heuristic, claude or noop.
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Fetch: FetchConfig{
			Timeout:      Duration(30 * time.Second),
			MaxRedirects: 10,
			MaxBodyBytes: 10 << 20,
		},
		Batch: BatchConfig{
			Workers: 1,
		},
		Summarizer: SummarizerConfig{
			Provider: "heuristic",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path. A missing file is not an error; the
// defaults are returned. Set values override defaults field by field.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = def.Server.ListenAddr
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = def.Fetch.Timeout
	}
	if c.Fetch.MaxRedirects <= 0 {
		c.Fetch.MaxRedirects = def.Fetch.MaxRedirects
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = def.Fetch.MaxBodyBytes
	}
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = def.Batch.Workers
	}
	if c.Summarizer.Provider == "" {
		c.Summarizer.Provider = def.Summarizer.Provider
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}
