// Package config loads settings from an optional yaml file, an optional .env
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/keapril/webinventory/internal/assistant"
	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/remote"
)

// Config is the full application configuration.
type Config struct {
	Store    StoreConfig  `yaml:"store"`
	Images   ImagesConfig `yaml:"images"`
	AI       AIConfig     `yaml:"ai"`
	Timezone string       `yaml:"timezone"`
}

// StoreConfig points at the document store.
type StoreConfig struct {
	URL string `yaml:"url"`
}

// ImagesConfig covers both resolving image references and uploading photos.
type ImagesConfig struct {
	Host      string `yaml:"host"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	PublicURL string `yaml:"public_url"`
}

// AIConfig configures the hosted model.
type AIConfig struct {
	APIKey            string   `yaml:"api_key"`
	BaseURL           string   `yaml:"base_url"`
	Model             string   `yaml:"model"`
	Temperature       *float64 `yaml:"temperature"` // nil until set; 0 is a valid value
	RequestsPerMinute int      `yaml:"requests_per_minute"`
}

// DefaultTimezone is where log timestamps are written.
const DefaultTimezone = "Asia/Taipei"

// Load reads .env from the working directory if present, then the yaml file
// at path if path is not empty, then applies environment overrides and fills
// in defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening config: %w", err)
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decoding config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	for _, s := range []struct {
		env string
		dst *string
	}{
		{"WEBINV_STORE_URL", &c.Store.URL},
		{"WEBINV_IMAGE_HOST", &c.Images.Host},
		{"R2_ENDPOINT", &c.Images.Endpoint},
		{"R2_ACCESS_KEY", &c.Images.AccessKey},
		{"R2_SECRET_KEY", &c.Images.SecretKey},
		{"R2_BUCKET", &c.Images.Bucket},
		{"R2_PUBLIC_URL", &c.Images.PublicURL},
		{"GEMINI_API_KEY", &c.AI.APIKey},
		{"WEBINV_AI_MODEL", &c.AI.Model},
		{"WEBINV_TIMEZONE", &c.Timezone},
	} {
		if v, ok := os.LookupEnv(s.env); ok && v != "" {
			*s.dst = v
		}
	}
	if v := os.Getenv("WEBINV_AI_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing WEBINV_AI_TEMPERATURE: %w", err)
		}
		c.AI.Temperature = &t
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Store.URL == "" {
		c.Store.URL = remote.DefaultBaseURL
	}
	if c.Images.Host == "" {
		c.Images.Host = fields.DefaultImageHost
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = assistant.DefaultGeminiURL
	}
	if c.AI.Model == "" {
		c.AI.Model = assistant.DefaultModel
	}
	if c.AI.Temperature == nil {
		t := assistant.DefaultTemperature
		c.AI.Temperature = &t
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
}

// UploadsEnabled reports whether photos can be pushed to a bucket.
func (c *Config) UploadsEnabled() bool {
	return c.Images.Endpoint != "" && c.Images.Bucket != ""
}

// Location returns the configured zone. Hosts without tzdata fall back to a
// fixed UTC+8 zone for the default Asia/Taipei; any other zone that cannot
// be loaded is an error.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err == nil {
		return loc, nil
	}
	if c.Timezone == DefaultTimezone {
		return time.FixedZone("CST", 8*60*60), nil
	}
	return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
}
