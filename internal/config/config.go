package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/isingsim/internal/sampler"
)

const (
	DefaultSize     = 32
	DefaultSteps    = 200_000
	DefaultBeta     = 0.44
	DefaultCoupling = 1.0
	DefaultDataDir  = ".isingsim"
)

type Config struct {
	Size     int           `yaml:"size"`
	Steps    int           `yaml:"steps"`
	Beta     float64       `yaml:"beta"`
	Coupling float64       `yaml:"coupling"`
	Seed     int64         `yaml:"seed"`
	Init     string        `yaml:"init"`
	DataDir  string        `yaml:"data_dir"`
	Logging  LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	// File enables a rotated JSON log file in addition to stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

func DefaultConfig() *Config {
	return &Config{
		Size:     DefaultSize,
		Steps:    DefaultSteps,
		Beta:     DefaultBeta,
		Coupling: DefaultCoupling,
		Init:     string(sampler.InitRandom),
		DataDir:  DefaultDataDir,
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto reads path over cfg: keys present in the file replace the
// corresponding fields, everything else keeps its current value.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SamplerConfig converts the run section to the sampler's configuration.
func (c *Config) SamplerConfig() sampler.Config {
	return sampler.Config{
		Size:     c.Size,
		Steps:    c.Steps,
		Beta:     c.Beta,
		Coupling: c.Coupling,
		Seed:     c.Seed,
		Init:     sampler.Init(c.Init),
	}
}

func (c *Config) Validate() error {
	if err := c.SamplerConfig().Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Level)
	}
	return nil
}
