package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds CLI defaults. A config file supplies values for flags not
// given on the command line.
type Config struct {
	DB       string `yaml:"db"`
	InMemory bool   `yaml:"in_memory"`
	Verbose  bool   `yaml:"verbose"`
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		DB:       "paths.db",
		LogLevel: "warn",
	}
}

// LoadConfig reads a YAML config file. Missing keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML config data over the defaults
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Merge returns c with the fields of flags whose flag was set explicitly
func (c Config) Merge(flags Config, changed func(name string) bool) Config {
	if changed("db") {
		c.DB = flags.DB
	}
	if changed("in-memory") {
		c.InMemory = flags.InMemory
	}
	if changed("verbose") {
		c.Verbose = flags.Verbose
	}
	if changed("log-level") {
		c.LogLevel = flags.LogLevel
	}
	return c
}
