package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apptbook.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "America/Los_Angeles" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	if cfg.DispatchTimeout != 60*time.Second {
		t.Errorf("dispatch timeout = %s, want 60s", cfg.DispatchTimeout)
	}
	if cfg.Calendars.Active != "Appointments" || cfg.Calendars.Archive != "Appointments Archive" {
		t.Errorf("calendars = %+v", cfg.Calendars)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
listen: "127.0.0.1:9000"
db_path: /var/lib/apptbook/data.db
timezone: America/New_York
operator_email: desk@example.com
postmark:
  token: tok
  from: bookings@example.com
calendars:
  active: Bookings
  archive: Past Bookings
strict_terminal: true
dispatch_timeout: 15s
rate_limit:
  requests: 10
  window: 30s
websocket_origins: ["dash.example.com"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:9000" || cfg.DBPath != "/var/lib/apptbook/data.db" {
		t.Errorf("listen/db = %q/%q", cfg.Listen, cfg.DBPath)
	}
	if cfg.Postmark.Token != "tok" || cfg.Postmark.From != "bookings@example.com" {
		t.Errorf("postmark = %+v", cfg.Postmark)
	}
	if !cfg.StrictTerminal {
		t.Error("strict_terminal not read")
	}
	if cfg.DispatchTimeout != 15*time.Second {
		t.Errorf("dispatch timeout = %s", cfg.DispatchTimeout)
	}
	if cfg.RateLimit.Requests != 10 || cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
	if len(cfg.WebSocketOrigins) != 1 || cfg.WebSocketOrigins[0] != "dash.example.com" {
		t.Errorf("origins = %v", cfg.WebSocketOrigins)
	}
	if cfg.BaseURL != "http://127.0.0.1:9000" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.Location().String() != "America/New_York" {
		t.Errorf("location = %s", cfg.Location())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "operator_email: file@example.com\n")
	t.Setenv("APPTBOOK_OPERATOR_EMAIL", "env@example.com")
	t.Setenv("APPTBOOK_DISPATCH_TIMEOUT", "0s")
	t.Setenv("APPTBOOK_WEBSOCKET_ORIGINS", "a.example.com, b.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OperatorEmail != "env@example.com" {
		t.Errorf("operator = %q, want env override", cfg.OperatorEmail)
	}
	if cfg.DispatchTimeout != 0 {
		t.Errorf("dispatch timeout = %s, want 0", cfg.DispatchTimeout)
	}
	if len(cfg.WebSocketOrigins) != 2 || cfg.WebSocketOrigins[1] != "b.example.com" {
		t.Errorf("origins = %v", cfg.WebSocketOrigins)
	}
}

func TestApplyEnvBadValues(t *testing.T) {
	for _, key := range []string{"STRICT_TERMINAL", "DISPATCH_TIMEOUT", "RATE_LIMIT"} {
		cfg := Default()
		lookup := func(k string) (string, bool) {
			if k == envPrefix+key {
				return "garbage", true
			}
			return "", false
		}
		if err := cfg.applyEnv(lookup); err == nil {
			t.Errorf("%s=garbage: expected error", key)
		}
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "listen: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown timezone", func(c *Config) { c.Timezone = "Mars/Olympus_Mons" }},
		{"negative timeout", func(c *Config) { c.DispatchTimeout = -time.Second }},
		{"negative rate limit", func(c *Config) { c.RateLimit.Requests = -1 }},
		{"same calendars", func(c *Config) { c.Calendars.Archive = c.Calendars.Active }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
