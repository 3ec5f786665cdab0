// Package config loads toyparse settings from an optional YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/toyparse/pkg/render"
)

// DefaultMaxInputLength bounds the source accepted by the servers.
const DefaultMaxInputLength = 64 * 1024

// Config holds CLI and server settings.
type Config struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	GRPCPort       int    `yaml:"grpcPort"`
	Format         string `yaml:"format"`
	MaxInputLength int    `yaml:"maxInputLength"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           8787,
		GRPCPort:       8788,
		Format:         string(render.FormatText),
		MaxInputLength: DefaultMaxInputLength,
	}
}

// Load reads path (if non-empty) over the defaults, then applies environment
// overrides: HOST, PORT, GRPC_PORT, TOYPARSE_FORMAT, TOYPARSE_MAX_INPUT.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("HOST"); v != "" {
		c.Host = v
	}
	if v := getenv("TOYPARSE_FORMAT"); v != "" {
		c.Format = v
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &c.Port},
		{"GRPC_PORT", &c.GRPCPort},
		{"TOYPARSE_MAX_INPUT", &c.MaxInputLength},
	}
	for _, e := range ints {
		v := getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", e.key, v, err)
		}
		*e.dst = n
	}
	return nil
}

// Validate checks ranges and the output format.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("grpc port %d out of range", c.GRPCPort)
	}
	if c.MaxInputLength <= 0 {
		return fmt.Errorf("maxInputLength must be positive, got %d", c.MaxInputLength)
	}
	if _, err := render.ParseFormat(c.Format); err != nil {
		return err
	}
	return nil
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GRPCAddr returns host:grpcPort for the gRPC server.
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}
