package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/amfiles/internal/policy"
	"github.com/danmuck/amfiles/internal/remote"
	"github.com/danmuck/amfiles/internal/resources"
	"github.com/danmuck/amfiles/internal/sources"
)

// DefaultPath is looked up in the working directory when no path is given.
const DefaultPath = ".corrcheck.toml"

const DefaultWorkers = 1

// Config drives both command-line tools.
type Config struct {
	CorrectionsDir  string
	Extension       string
	BaseRef         string
	Rules           policy.Rules
	Remote          remote.Config
	DataDir         string
	MetricsTextfile string
	// Workers bounds how many files corrcheck evaluates at once.
	Workers         int
}

type fileConfig struct {
	CorrectionsDir  string `toml:"corrections_dir"`
	Extension       string `toml:"extension"`
	BaseRef         string `toml:"base_ref"`
	GlobalMarker    string `toml:"global_marker"`
	OnlineTag       string `toml:"online_tag"`
	DevMarker       string `toml:"dev_marker"`
	RemoteBaseURL   string `toml:"remote_base_url"`
	RemoteRef       string `toml:"remote_ref"`
	RemoteTimeout   string `toml:"remote_timeout"`
	DataDir         string `toml:"data_dir"`
	MetricsTextfile string `toml:"metrics_textfile"`
	Workers         int    `toml:"workers"`
}

func Default() Config {
	return Config{
		CorrectionsDir: "corrections",
		Extension:      sources.DefaultExtension,
		BaseRef:        sources.DefaultBaseRef,
		Rules:          policy.DefaultRules(),
		Remote:         remote.Config{Ref: "master", Timeout: remote.DefaultTimeout},
		DataDir:        resources.DefaultDataDir,
		Workers:        DefaultWorkers,
	}
}

// Load reads path over the defaults. A missing file at DefaultPath is not an
// error; an explicitly named missing file is.
func Load(path string) (Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath
	}
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("corrections_dir") {
		cfg.CorrectionsDir = strings.TrimSpace(raw.CorrectionsDir)
	}
	if meta.IsDefined("extension") {
		cfg.Extension = strings.TrimSpace(raw.Extension)
	}
	if meta.IsDefined("base_ref") {
		cfg.BaseRef = strings.TrimSpace(raw.BaseRef)
	}
	if meta.IsDefined("global_marker") {
		cfg.Rules.GlobalMarker = raw.GlobalMarker
	}
	if meta.IsDefined("online_tag") {
		cfg.Rules.OnlineTag = raw.OnlineTag
	}
	if meta.IsDefined("dev_marker") {
		cfg.Rules.DevMarker = raw.DevMarker
	}
	if meta.IsDefined("remote_base_url") {
		cfg.Remote.BaseURL = strings.TrimSpace(raw.RemoteBaseURL)
	}
	if meta.IsDefined("remote_ref") {
		cfg.Remote.Ref = strings.TrimSpace(raw.RemoteRef)
	}
	if meta.IsDefined("remote_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.RemoteTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse remote_timeout: %w", err)
		}
		cfg.Remote.Timeout = d
	}
	if meta.IsDefined("data_dir") {
		cfg.DataDir = strings.TrimSpace(raw.DataDir)
	}
	if meta.IsDefined("metrics_textfile") {
		cfg.MetricsTextfile = strings.TrimSpace(raw.MetricsTextfile)
	}
	if meta.IsDefined("workers") {
		cfg.Workers = raw.Workers
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.CorrectionsDir) == "" {
		return fmt.Errorf("config missing corrections_dir")
	}
	if !strings.HasPrefix(cfg.Extension, ".") {
		return fmt.Errorf("config extension %q must start with a dot", cfg.Extension)
	}
	if strings.TrimSpace(cfg.BaseRef) == "" {
		return fmt.Errorf("config missing base_ref")
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("config workers must be at least 1")
	}
	if cfg.Remote.Timeout < 0 {
		return fmt.Errorf("config remote_timeout must not be negative")
	}
	for name, v := range map[string]string{
		"global_marker": cfg.Rules.GlobalMarker,
		"online_tag":    cfg.Rules.OnlineTag,
		"dev_marker":    cfg.Rules.DevMarker,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("config %s must not be empty", name)
		}
	}
	return nil
}
