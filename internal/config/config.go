// Package config loads apptbook settings from defaults, an optional YAML
// file, a .env file and APPTBOOK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "APPTBOOK_"

// PostmarkConfig holds the transactional email credentials.
type PostmarkConfig struct {
	Token string `yaml:"token"`
	From  string `yaml:"from"`
}

// CalendarConfig names the two calendars events live in.
type CalendarConfig struct {
	Active  string `yaml:"active"`
	Archive string `yaml:"archive"`
}

// RateLimitConfig bounds write requests per client IP.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Config is the top-level application configuration.
type Config struct {
	Listen    string `yaml:"listen"`
	DBPath    string `yaml:"db_path"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	BaseURL   string `yaml:"base_url"`

	// Timezone is the IANA zone appointment dates and times are local to.
	Timezone string `yaml:"timezone"`

	Postmark      PostmarkConfig `yaml:"postmark"`
	OperatorEmail string         `yaml:"operator_email"`

	Calendars CalendarConfig `yaml:"calendars"`

	// StrictTerminal rejects edits to Complete and Cancel appointments.
	StrictTerminal bool `yaml:"strict_terminal"`

	// DispatchTimeout bounds each calendar or email call. Zero disables it.
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// WebSocketOrigins lists extra hosts allowed to open the live feed.
	WebSocketOrigins []string `yaml:"websocket_origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:    ":8080",
		DBPath:    "apptbook.db",
		LogLevel:  "info",
		LogFormat: "text",
		Timezone:  "America/Los_Angeles",
		Calendars: CalendarConfig{
			Active:  "Appointments",
			Archive: "Appointments Archive",
		},
		DispatchTimeout: 60 * time.Second,
		RateLimit: RateLimitConfig{
			Requests: 60,
			Window:   time.Minute,
		},
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path or a missing file leaves the defaults in place. A .env file in the
// working directory is loaded next, then APPTBOOK_* variables override.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LISTEN":           &c.Listen,
		"DB_PATH":          &c.DBPath,
		"LOG_LEVEL":        &c.LogLevel,
		"LOG_FORMAT":       &c.LogFormat,
		"BASE_URL":         &c.BaseURL,
		"TIMEZONE":         &c.Timezone,
		"POSTMARK_TOKEN":   &c.Postmark.Token,
		"FROM_EMAIL":       &c.Postmark.From,
		"OPERATOR_EMAIL":   &c.OperatorEmail,
		"ACTIVE_CALENDAR":  &c.Calendars.Active,
		"ARCHIVE_CALENDAR": &c.Calendars.Archive,
	}
	for key, dst := range strs {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(envPrefix + "STRICT_TERMINAL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSTRICT_TERMINAL: %w", envPrefix, err)
		}
		c.StrictTerminal = b
	}
	if v, ok := lookup(envPrefix + "DISPATCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sDISPATCH_TIMEOUT: %w", envPrefix, err)
		}
		c.DispatchTimeout = d
	}
	if v, ok := lookup(envPrefix + "RATE_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", envPrefix, err)
		}
		c.RateLimit.Requests = n
	}
	if v, ok := lookup(envPrefix + "WEBSOCKET_ORIGINS"); ok {
		c.WebSocketOrigins = splitList(v)
	}
	return nil
}

func (c *Config) normalize() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Timezone == "" {
		c.Timezone = "America/Los_Angeles"
	}
	if c.Calendars.Active == "" {
		c.Calendars.Active = "Appointments"
	}
	if c.Calendars.Archive == "" {
		c.Calendars.Archive = "Appointments Archive"
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.BaseURL == "" {
		host := c.Listen
		if strings.HasPrefix(host, ":") {
			host = "localhost" + host
		}
		c.BaseURL = "http://" + host
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Validate reports settings the process cannot start with.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	if c.DispatchTimeout < 0 {
		return fmt.Errorf("dispatch_timeout must not be negative, got %s", c.DispatchTimeout)
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("rate_limit.requests must not be negative, got %d", c.RateLimit.Requests)
	}
	if c.Calendars.Active == c.Calendars.Archive {
		return errors.New("active and archive calendars must have different names")
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC if it
// cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
