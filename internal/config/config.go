// Package config handles loading and parsing application configuration.
// It supports three sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//  3. Neither: every value comes from the environment or its default
//
// Environment variables always override values from the YAML file.
package config

import (
	"flag"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// StoragePath is the JSON data file holding the student records.
	// A missing file is fine: the store starts empty and creates it on
	// the first change.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"student_data.json"`

	HTTPServer `yaml:"http_server"`
}

// HTTPServer holds settings specific to the web interface.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`
}

// MustLoad reads and returns the application config, exiting the
// process if a config file was named but cannot be read.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	return cfg
}

// Load reads the YAML file at configPath (plus environment overrides),
// or only the environment and defaults when configPath is empty.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	// Stat first for a clear message rather than a cryptic
	// "open: no such file" from deep inside cleanenv.
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, &MissingFileError{Path: configPath}
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MissingFileError is returned by Load when the named config file does
// not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return "config file does not exist: " + e.Path
}
