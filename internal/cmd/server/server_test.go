package server

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port = %d, want 8080", cfg.Port)
	}
}

func TestParseConfigEnvAndFlagOverride(t *testing.T) {
	t.Setenv("NEXTCHAMP_PORT", "9001")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9001 {
		t.Fatalf("env port = %d, want 9001", cfg.Port)
	}

	fs = flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{"-port", "9002"})
	if err != nil {
		t.Fatalf("parse config with flag: %v", err)
	}
	if cfg.Port != 9002 {
		t.Fatalf("flag port = %d, want flag to override env", cfg.Port)
	}
}
