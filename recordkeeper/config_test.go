package recordkeeper

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCheckoutTTL(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		want    time.Duration
	}{
		{name: "default when unset", minutes: 0, want: 2 * time.Hour},
		{name: "default when negative", minutes: -5, want: 2 * time.Hour},
		{name: "explicit override", minutes: 30, want: 30 * time.Minute},
		{name: "longer than default", minutes: 300, want: 5 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := EventConfig{CheckoutTTLMinutes: tt.minutes}
			if got := cfg.CheckoutTTL(); got != tt.want {
				t.Errorf("CheckoutTTL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[bot]
token = "secret-token"

[db]
host = "localhost"
port = 5432
user = "keeper"
password = "hunter2"
database = "recordkeeper"
pool_size = 10

[event]
checkout_ttl_minutes = 45

[spaces]
bucket = "snapshots"
region = "nyc3"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Bot.Token != "secret-token" {
		t.Errorf("Token = %q", cfg.Bot.Token)
	}
	if cfg.DB.Host != "localhost" || cfg.DB.Port != 5432 {
		t.Errorf("unexpected DB config: %+v", cfg.DB)
	}
	if got := cfg.Event.CheckoutTTL(); got != 45*time.Minute {
		t.Errorf("CheckoutTTL() = %v, want 45m", got)
	}
	if cfg.Spaces.Bucket != "snapshots" {
		t.Errorf("Bucket = %q", cfg.Spaces.Bucket)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
