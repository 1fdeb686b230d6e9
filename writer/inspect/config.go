package inspect

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultListen       = "0.0.0.0:8080"
	defaultMaxBodyBytes = 256 << 20
)

// Config is the inspector's YAML configuration.
type Config struct {
	Listen       string `yaml:"listen"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
	LogLevel     string `yaml:"log_level"`
	Pprof        bool   `yaml:"pprof"`
	MaxDepth     int    `yaml:"max_depth"` // 0 keeps the decoder default
}

func DefaultConfig() Config {
	return Config{
		Listen:       defaultListen,
		MaxBodyBytes: defaultMaxBodyBytes,
		LogLevel:     logrus.InfoLevel.String(),
		Pprof:        true,
	}
}

// LoadConfig reads path over the defaults. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err = yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("inspect: config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

// Level parses LogLevel.
func (c Config) Level() (logrus.Level, error) {
	return logrus.ParseLevel(c.LogLevel)
}

func (c Config) validate() error {
	if c.Listen == "" {
		return errors.New("inspect: listen address is empty")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("inspect: max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("inspect: max_depth must not be negative, got %d", c.MaxDepth)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	return nil
}
