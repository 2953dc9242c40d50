package config

import (
	"strings"
	"testing"
)

func TestEnsureDSNKeepsExplicitDSN(t *testing.T) {
	cfg := DBConfig{DSN: "postgres://pos:secret@db:5432/gsatpos"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DSN != "postgres://pos:secret@db:5432/gsatpos" {
		t.Fatalf("dsn should be untouched, got %s", cfg.DSN)
	}
}

func TestEnsureDSNAssemblesLegacyParts(t *testing.T) {
	cfg := DBConfig{
		LegacyHost:     "localhost",
		LegacyPort:     5433,
		LegacyUser:     "pos",
		LegacyPassword: "s3cret",
		LegacyName:     "gsatpos",
		LegacySSLMode:  "disable",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, part := range []string{"postgres://", "pos:s3cret@localhost:5433", "/gsatpos", "sslmode=disable"} {
		if !strings.Contains(cfg.DSN, part) {
			t.Fatalf("dsn missing %q: %s", part, cfg.DSN)
		}
	}
}

func TestEnsureDSNReportsMissingParts(t *testing.T) {
	cfg := DBConfig{LegacyHost: "localhost"}
	err := cfg.ensureDSN()
	if err == nil {
		t.Fatal("expected error for missing user/name")
	}
	if !strings.Contains(err.Error(), EnvDBUser) || !strings.Contains(err.Error(), EnvDBName) {
		t.Fatalf("error should name missing vars, got %v", err)
	}
}

func TestAppEnvHelpers(t *testing.T) {
	if !(AppConfig{Env: "DEV"}).IsDev() {
		t.Fatal("expected case-insensitive dev match")
	}
	if (AppConfig{Env: "dev"}).IsProd() {
		t.Fatal("dev must not report prod")
	}
}
