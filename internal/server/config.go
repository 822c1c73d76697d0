package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/lotline/proforma/internal/config"
	"github.com/lotline/proforma/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address         string               `yaml:"address"`
	MaxUploadSize   string               `yaml:"maxUploadSize"`
	Logging         config.LoggingConfig `yaml:"logging"`
	uploadSizeBytes int64
}

// LoadConfig loads the server configuration from YAML. If the file does not
// exist, defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   fmt.Sprintf("%d", constants.DefaultMaxUploadSizeBytes),
		Logging:         config.LoggingConfig{},
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes returns the configured upload size in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}

	size, err := parseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	c.uploadSizeBytes = size
	return nil
}

// parseSize accepts a plain byte count or a count with a K/M/G suffix.
func parseSize(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	multiplier := int64(1)
	last := unicode.ToUpper(rune(trimmed[len(trimmed)-1]))
	switch last {
	case 'K':
		multiplier = 1024
		trimmed = trimmed[:len(trimmed)-1]
	case 'M':
		multiplier = 1024 * 1024
		trimmed = trimmed[:len(trimmed)-1]
	case 'G':
		multiplier = 1024 * 1024 * 1024
		trimmed = trimmed[:len(trimmed)-1]
	}

	value, err := strconv.ParseInt(strings.TrimSpace(trimmed), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid max upload size %q", raw)
	}
	if value <= 0 {
		return 0, fmt.Errorf("max upload size must be positive, got %q", raw)
	}
	return value * multiplier, nil
}
