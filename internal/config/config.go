package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Client struct {
		APIBaseURL string `yaml:"api_base_url"`
		// SplashFloor is the minimum loading-screen duration; a UX pacing
		// rule, not a performance setting.
		SplashFloor string `yaml:"splash_floor"`
		QuestionTTL string `yaml:"question_ttl"`
		// AllowEmptySubmit and ConfirmIncomplete default to true when unset.
		AllowEmptySubmit  *bool `yaml:"allow_empty_submit"`
		ConfirmIncomplete *bool `yaml:"confirm_incomplete"`
	} `yaml:"client"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty or
// malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// BoolDefault dereferences an optional flag, falling back when unset.
func BoolDefault(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
