// Command amfiles lists, decodes and locates the auxiliary data files shipped
// with the repository.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/danmuck/amfiles/internal/config"
	"github.com/danmuck/amfiles/internal/logging"
	"github.com/danmuck/amfiles/internal/remote"
	"github.com/danmuck/amfiles/internal/resources"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	dataDir    string
	remoteURL  string
	offline    bool
}

func main() {
	logging.ConfigureRuntime()

	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "amfiles: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "amfiles",
		Short:         "Inspect auxiliary data files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a TOML config")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "override the configured data directory")
	root.PersistentFlags().StringVar(&opts.remoteURL, "remote-url", "", "override the configured raw-content mirror")
	root.PersistentFlags().BoolVar(&opts.offline, "offline", false, "never fall back to the remote mirror")

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List files in the data directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := opts.store()
				if err != nil {
					return err
				}
				names, err := store.List()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(stdout, n)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <name>",
			Short: "Decode a data file and print it as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := opts.store()
				if err != nil {
					return err
				}
				value, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(value)
			},
		},
		&cobra.Command{
			Use:   "path <name>",
			Short: "Print the absolute local path of a data file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := opts.store()
				if err != nil {
					return err
				}
				p, err := store.AbsPath(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, p)
				return nil
			},
		},
		newInitConfigCmd(stdout),
	)
	return root
}

func newInitConfigCmd(stdout io.Writer) *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a commented corrcheck config template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.WriteTemplate(output, force); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", config.DefaultPath, "template destination")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (o *options) store() (resources.Store, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return resources.Store{}, err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.remoteURL != "" {
		cfg.Remote.BaseURL = o.remoteURL
	}

	store := resources.Store{DataDir: cfg.DataDir}
	if o.offline || cfg.Remote.BaseURL == "" {
		return store, nil
	}
	client, err := remote.NewClient(cfg.Remote, nil)
	if err != nil {
		return resources.Store{}, fmt.Errorf("remote mirror: %w", err)
	}
	store.Remote = client
	if !filepath.IsAbs(cfg.DataDir) {
		store.RemotePrefix = filepath.ToSlash(cfg.DataDir)
	}
	return store, nil
}
