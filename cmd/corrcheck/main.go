// Command corrcheck validates the correction files changed on the current
// branch against the committed base ref. It prints one line per violation
// and a summary, and exits non-zero when any file fails.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/danmuck/amfiles/internal/config"
	"github.com/danmuck/amfiles/internal/logging"
	"github.com/danmuck/amfiles/internal/observability"
	"github.com/danmuck/amfiles/internal/policy"
	"github.com/danmuck/amfiles/internal/remote"
	"github.com/danmuck/amfiles/internal/sources"
	"github.com/danmuck/amfiles/internal/tools"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errValidationFailed = errors.New("corrcheck: validation failed")

type options struct {
	configPath string
	workdir    string
	baseRef    string
	runner     tools.CommandRunner
}

func main() {
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(&options{runner: tools.ExecRunner{}}, os.Stdout)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errValidationFailed) {
			fmt.Fprintf(os.Stderr, "corrcheck: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(opts *options, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "corrcheck",
		Short:         "Validate changed correction files against the committed baseline",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, stdout)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to a corrcheck TOML config (default ./"+config.DefaultPath+" if present)")
	cmd.Flags().StringVar(&opts.workdir, "workdir", ".", "repository checkout to validate")
	cmd.Flags().StringVar(&opts.baseRef, "base-ref", "", "override the configured base ref")
	return cmd
}

func run(ctx context.Context, opts *options, stdout io.Writer) error {
	cfgPath := opts.configPath
	if cfgPath == "" {
		if p := filepath.Join(opts.workdir, config.DefaultPath); fileExists(p) {
			cfgPath = p
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if opts.baseRef != "" {
		cfg.BaseRef = opts.baseRef
	}

	gate, err := buildGate(cfg, opts.workdir, opts.runner)
	if err != nil {
		return err
	}
	report, err := gate.Run(ctx)
	if err != nil {
		return err
	}

	for _, line := range report.Lines() {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, report.Summary())

	if cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.Warn().Err(err).Str("path", cfg.MetricsTextfile).Msg("corrcheck: metrics textfile not written")
		}
	}
	if !report.Pass() {
		return errValidationFailed
	}
	return nil
}

func buildGate(cfg config.Config, workdir string, runner tools.CommandRunner) (*policy.Gate, error) {
	chain := sources.ChainBaseline{
		Fetchers: []sources.NamedFetcher{{
			Name:    "git",
			Fetcher: sources.GitBaseline{Runner: runner, Dir: workdir, Ref: cfg.BaseRef},
		}},
		Observe: observability.RecordBaselineFetch,
	}
	if cfg.Remote.BaseURL != "" {
		client, err := remote.NewClient(cfg.Remote, nil)
		if err != nil {
			return nil, fmt.Errorf("remote baseline: %w", err)
		}
		chain.Fetchers = append(chain.Fetchers, sources.NamedFetcher{
			Name:    "remote",
			Fetcher: sources.RemoteBaseline{Client: client},
		})
	}

	return &policy.Gate{
		Dir:   cfg.CorrectionsDir,
		Rules: cfg.Rules,
		Lister: sources.GitChangeLister{
			Runner:    runner,
			Dir:       workdir,
			Ref:       cfg.BaseRef,
			Extension: cfg.Extension,
		},
		Walker:   sources.DirWalker{Root: workdir, Extension: cfg.Extension},
		Baseline: chain,
		Reader:   sources.FileReader{Dir: workdir},
		Workers:  cfg.Workers,
	}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
