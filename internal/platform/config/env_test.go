package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int    `env:"WRATHFORGE_TEST_PORT" envDefault:"123"`
	Mode string `env:"WRATHFORGE_TEST_MODE" envDefault:"local"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 || cfg.Mode != "local" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("WRATHFORGE_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvFrom(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnvFrom(&cfg, map[string]string{"WRATHFORGE_TEST_MODE": "remote"}); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 || cfg.Mode != "remote" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if err := ParseEnvFrom(&cfg, map[string]string{"WRATHFORGE_TEST_PORT": "x"}); err == nil {
		t.Fatal("expected error")
	}
}
