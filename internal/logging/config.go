package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "AMFILES_LOG_LEVEL"
	EnvLogTimestamp = "AMFILES_LOG_TIMESTAMP"
	EnvLogNoColor   = "AMFILES_LOG_NOCOLOR"
	EnvLogBypass    = "AMFILES_LOG_BYPASS"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config controls the process-wide zerolog logger.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	// Bypass writes raw JSON lines instead of the console format.
	Bypass bool
}

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		applyEnvOverrides(&cfg)
		log.Logger = New(cfg, os.Stderr)
		zerolog.SetGlobalLevel(cfg.Level)
	})
}

// New builds a logger writing to out according to cfg.
func New(cfg Config, out *os.File) zerolog.Logger {
	var w io.Writer = out
	if !cfg.Bypass {
		noColor := cfg.NoColor || !isatty.IsTerminal(out.Fd())
		w = zerolog.ConsoleWriter{
			Out:        colorable.NewColorable(out),
			NoColor:    noColor,
			TimeFormat: time.RFC3339,
			PartsExclude: func() []string {
				if cfg.Timestamp {
					return nil
				}
				return []string{zerolog.TimestampFieldName}
			}(),
		}
	}
	ctx := zerolog.New(w).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

func defaultConfig(profile Profile) Config {
	cfg := Config{}
	switch profile {
	case ProfileTest:
		cfg.Level = zerolog.DebugLevel
		cfg.Timestamp = false
	default:
		cfg.Level = zerolog.InfoLevel
		cfg.Timestamp = true
	}
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	for env, dst := range map[string]*bool{
		EnvLogTimestamp: &cfg.Timestamp,
		EnvLogNoColor:   &cfg.NoColor,
		EnvLogBypass:    &cfg.Bypass,
	} {
		if v, ok := parseBool(os.Getenv(env)); ok {
			*dst = v
		}
	}
}

var levelAliases = map[string]zerolog.Level{
	"diagnostics": zerolog.TraceLevel,
	"warning":     zerolog.WarnLevel,
	"off":         zerolog.Disabled,
	"none":        zerolog.Disabled,
	"disable":     zerolog.Disabled,
}

// parseLevel accepts zerolog level names plus a few aliases. An empty or
// unknown value reports false.
func parseLevel(raw string) (zerolog.Level, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return zerolog.InfoLevel, false
	}
	if lvl, ok := levelAliases[name]; ok {
		return lvl, true
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel, false
	}
	return lvl, true
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
