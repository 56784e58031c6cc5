package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("PORT", "9000")

	cfg := Load()
	if cfg.Service.Port != "9000" {
		t.Fatalf("port = %q, want 9000", cfg.Service.Port)
	}
	if cfg.Service.Name != "yoga-service" {
		t.Fatalf("name = %q", cfg.Service.Name)
	}
	if got := cfg.TokenTTL(); got != 24*time.Hour {
		t.Fatalf("ttl = %v, want 24h", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := &Config{
		Service:  ServiceConfig{Port: ""},
		JWT:      JWTConfig{Secret: "", ExpirationMs: 0},
		Database: DatabaseConfig{MaxConns: 1},
		Tracing:  TracingConfig{SampleRate: 2},
		Shutdown: ShutdownConfig{Timeout: "10s", ReadinessDrainDelay: "nope"},
		Admin:    AdminConfig{Email: "admin@studio.com"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"PORT", "JWT_SECRET", "JWT_EXPIRATION_MS", "OTEL_SAMPLE_RATE", "ADMIN_EMAIL", "READINESS_DRAIN_DELAY"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestDurations(t *testing.T) {
	cfg := &Config{Shutdown: ShutdownConfig{Timeout: "bad", ReadinessDrainDelay: "-1s"}}
	if got := cfg.GetShutdownTimeoutDuration(); got != 10*time.Second {
		t.Errorf("shutdown timeout = %v", got)
	}
	if got := cfg.GetReadinessDrainDelayDuration(); got != 0 {
		t.Errorf("drain delay = %v", got)
	}

	cfg.Shutdown = ShutdownConfig{Timeout: "3s", ReadinessDrainDelay: "250ms"}
	if got := cfg.GetShutdownTimeoutDuration(); got != 3*time.Second {
		t.Errorf("shutdown timeout = %v", got)
	}
	if got := cfg.GetReadinessDrainDelayDuration(); got != 250*time.Millisecond {
		t.Errorf("drain delay = %v", got)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "yoga", SSLMode: "disable"}
	if got, want := d.DSN(), "postgres://u:p@db:5432/yoga?sslmode=disable"; got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
	d.URL = "postgres://override"
	if got := d.DSN(); got != "postgres://override" {
		t.Errorf("DSN = %q", got)
	}
}

func TestEnvParsingFallsBack(t *testing.T) {
	t.Setenv("DB_POOL_MAX_CONNECTIONS", "lots")
	t.Setenv("TRACING_ENABLED", "yes please")
	t.Setenv("OTEL_SAMPLE_RATE", "0.5")

	cfg := Load()
	if cfg.Database.MaxConns != 10 {
		t.Errorf("max conns = %d, want fallback 10", cfg.Database.MaxConns)
	}
	if cfg.Tracing.Enabled {
		t.Error("tracing should fall back to disabled")
	}
	if cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("sample rate = %v", cfg.Tracing.SampleRate)
	}
}
