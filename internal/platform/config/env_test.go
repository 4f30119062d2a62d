package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Path    string        `env:"BUSINESS_NETWORK_TEST_PATH"    envDefault:"memberships.db"`
	Timeout time.Duration `env:"BUSINESS_NETWORK_TEST_TIMEOUT" envDefault:"5s"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Path != "memberships.db" {
		t.Fatalf("path = %q, want %q", cfg.Path, "memberships.db")
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v, want %v", cfg.Timeout, 5*time.Second)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("BUSINESS_NETWORK_TEST_TIMEOUT", "soon")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
