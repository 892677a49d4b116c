package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevelAliases(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":       zerolog.TraceLevel,
		"diagnostics": zerolog.TraceLevel,
		" DEBUG ":     zerolog.DebugLevel,
		"warning":     zerolog.WarnLevel,
		"error":       zerolog.ErrorLevel,
		"off":         zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := parseLevel(raw)
		if !ok || got != want {
			t.Fatalf("parseLevel(%q) = %v,%v want %v", raw, got, ok, want)
		}
	}
	if _, ok := parseLevel("loud"); ok {
		t.Fatalf("expected unknown level to be ignored")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "true")
	t.Setenv(EnvLogBypass, "nope")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)
	if cfg.Level != zerolog.ErrorLevel {
		t.Fatalf("unexpected level: %v", cfg.Level)
	}
	if cfg.Timestamp {
		t.Fatalf("expected timestamp disabled")
	}
	if !cfg.NoColor {
		t.Fatalf("expected color disabled")
	}
	if cfg.Bypass {
		t.Fatalf("expected invalid bypass value to be ignored")
	}
}

func TestDefaultConfigProfiles(t *testing.T) {
	if cfg := defaultConfig(ProfileTest); cfg.Level != zerolog.DebugLevel || cfg.Timestamp {
		t.Fatalf("unexpected test profile: %+v", cfg)
	}
	if cfg := defaultConfig(ProfileRuntime); cfg.Level != zerolog.InfoLevel || !cfg.Timestamp {
		t.Fatalf("unexpected runtime profile: %+v", cfg)
	}
}
