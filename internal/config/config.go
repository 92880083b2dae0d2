// Package config loads the optional organizer TOML configuration file.
//
// Precedence: command-line flags override file values, file values override
// defaults. The file is optional; a missing --config simply yields defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the settings a user may pin in a file instead of repeating
// flags on every run.
type Config struct {
	ExcludeDirs     []string `toml:"exclude_dirs"`
	Report          string   `toml:"report"`
	Topics          bool     `toml:"topics"`
	TextExtensions  []string `toml:"text_extensions"`
	Exiftool        bool     `toml:"exiftool"`
	ExiftoolTimeout string   `toml:"exiftool_timeout"`
	CacheFile       string   `toml:"cache_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Report:          "duplicate_report.csv",
		ExiftoolTimeout: "10s",
	}
}

// Load reads path over the defaults. An empty path returns defaults.
// Unknown keys are rejected so typos fail loudly instead of being ignored.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("config %s: %s", path, strict.String())
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	if _, err := cfg.Timeout(); err != nil {
		return cfg, fmt.Errorf("config %s: exiftool_timeout: %w", path, err)
	}
	return cfg, nil
}

// Timeout parses the exiftool timeout setting.
func (c Config) Timeout() (time.Duration, error) {
	if c.ExiftoolTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.ExiftoolTimeout)
}
