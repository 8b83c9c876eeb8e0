package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/reqgate"
	"github.com/bft-labs/reqgate/internal/cliconfig"
	"github.com/bft-labs/reqgate/pkg/gate"
	"github.com/bft-labs/reqgate/pkg/host"
	"github.com/bft-labs/reqgate/pkg/log"
	"github.com/bft-labs/reqgate/plugins/manifestwatcher"
)

const longHelp = `Check that an extension's runtime and host versions meet its minimums.

When a requirement is not met, reqgate renders an HTML notice for every unmet
requirement and records the extension as deactivated, exactly as the host
would during its notice rendering step.

Configuration is read from $HOME/.reqgate/config.toml, a .env file, REQGATE_*
environment variables and flags, in increasing order of precedence.`

var exampleUsage = strings.TrimSpace(`
  reqgate check --manifest ./extensions/demo --host-version 6.4 --runtime-version 8.1.2
  reqgate check --title Demo --php 8.0 --wp 6.0 --file ./extensions/demo/demo.php --host-version 6.4 --runtime-version 8.1.2
  reqgate watch --manifest ./extensions/demo/plugin.toml --host-version 6.4 --runtime-version 8.1.2
  reqgate compare 7.10.0 7.9.5
`)

// errRequirementsNotMet makes the process exit with status 2.
var errRequirementsNotMet = errors.New("requirements not met")

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	envFile string
}

func main() {
	if err := newRootCmd(&cli{cfg: cliconfig.DefaultConfig()}).Execute(); err != nil {
		if errors.Is(err, errRequirementsNotMet) {
			os.Exit(2)
		}
		logger := log.NewZerolog(os.Stderr, zerolog.InfoLevel)
		logger.Error().Err(err).Msg("reqgate")
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "reqgate",
		Short:         "Minimum-version gate for host extensions",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.reqgate/config.toml)")
	pf.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading REQGATE_* variables")
	pf.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&c.cfg.Manifest, "manifest", "", "extension manifest file or directory containing one")
	pf.StringVar(&c.cfg.File, "file", "", "extension main file (overrides the manifest)")
	pf.StringVar(&c.cfg.ExtensionsDir, "extensions-dir", "", "base directory extension identifiers are relative to")
	pf.StringVar(&c.cfg.StateDir, "state-dir", c.cfg.StateDir, "directory holding the deactivation state")
	pf.StringVar(&c.cfg.RuntimeVersion, "runtime-version", "", "current runtime version")
	pf.StringVar(&c.cfg.HostVersion, "host-version", "", "current host framework version")
	pf.StringVar(&c.cfg.Title, "title", "", "extension title (overrides the manifest)")
	pf.StringVar(&c.cfg.MinRuntimeVersion, "php", "", "minimum runtime version (overrides the manifest)")
	pf.StringVar(&c.cfg.MinHostVersion, "wp", "", "minimum host version (overrides the manifest)")

	root.AddCommand(
		c.checkCmd(),
		c.watchCmd(),
		c.deactivatedCmd(),
		c.reactivateCmd(),
		compareCmd(),
		versionCmd(),
	)
	return root
}

// load layers file, environment and flags into c.cfg, validates it and
// returns a logger.
func (c *cli) load(cmd *cobra.Command) (log.Logger, error) {
	if err := c.layer(cmd); err != nil {
		return nil, err
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	logger := log.NewZerologAdapter(os.Stderr, c.cfg.Level())
	logger.Debug("configuration", log.Any("config", c.cfg))
	return logger, nil
}

func (c *cli) layer(cmd *cobra.Command) error {
	if err := cliconfig.LoadDotEnv(c.envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	// Environment overrides the file; explicitly set flags override both.
	return cliconfig.ApplyEnvConfig(&c.cfg, changed)
}

func (c *cli) newHost(logger log.Logger) (*host.Host, error) {
	return host.New(host.Config{
		ExtensionsDir:  c.cfg.ExtensionsDir,
		RuntimeVersion: host.StaticVersion(c.cfg.RuntimeVersion),
		HostVersion:    c.cfg.HostVersion,
		StateDir:       c.cfg.StateDir,
		Logger:         logger,
	})
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Evaluate the requirements once and render any notices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := c.load(cmd)
			if err != nil {
				return err
			}
			h, err := c.newHost(logger)
			if err != nil {
				return err
			}

			var passed bool
			if c.cfg.Manifest != "" {
				passed, err = c.checkManifest(h, cmd.OutOrStdout(), logger)
			} else {
				passed, err = c.checkFlags(h, cmd.OutOrStdout(), logger)
			}
			if err != nil {
				return err
			}

			printStatus(cmd.ErrOrStderr(), passed)
			if !passed {
				return errRequirementsNotMet
			}
			return nil
		},
	}
}

func (c *cli) checkManifest(h *host.Host, out io.Writer, logger log.Logger) (bool, error) {
	p, err := manifestwatcher.New(manifestwatcher.Config{
		ManifestPath: c.cfg.Manifest,
		Host:         h,
		Output:       out,
		Settings:     c.cfg.Settings,
		Logger:       logger,
	})
	if err != nil {
		return false, err
	}
	res := p.Evaluate()
	return res.Passed, res.Err
}

func (c *cli) checkFlags(h *host.Host, out io.Writer, logger log.Logger) (bool, error) {
	gcfg, err := gate.ConfigFromMap(c.cfg.Settings(nil))
	if err != nil {
		return false, err
	}
	if err := gcfg.Validate(); err != nil {
		return false, err
	}
	g, err := gate.New(gcfg, h, gate.WithLogger(logger))
	if err != nil {
		return false, err
	}
	passed := g.Passes()
	if err := h.Fire(gate.EventAdminNotices, out); err != nil {
		return false, err
	}
	return passed, nil
}

func (c *cli) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-evaluate the requirements whenever the manifest changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := c.load(cmd)
			if err != nil {
				return err
			}
			if c.cfg.Manifest == "" {
				return fmt.Errorf("watch requires --manifest")
			}
			h, err := c.newHost(logger)
			if err != nil {
				return err
			}

			errOut := cmd.ErrOrStderr()
			p, err := manifestwatcher.New(manifestwatcher.Config{
				ManifestPath:  c.cfg.Manifest,
				Host:          h,
				Output:        cmd.OutOrStdout(),
				DebounceDelay: c.cfg.DebounceDelay,
				Settings:      c.cfg.Settings,
				Logger:        logger,
				OnResult: func(r manifestwatcher.Result) {
					if r.Err == nil {
						printStatus(errOut, r.Passed)
					}
				},
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := p.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			logger.Info("received signal, stopping...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return p.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().DurationVar(&c.cfg.DebounceDelay, "debounce", c.cfg.DebounceDelay, "delay after the last manifest change before re-evaluating")
	return cmd
}

func (c *cli) deactivatedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivated",
		Short: "List deactivated extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := c.stateHost(cmd)
			if err != nil {
				return err
			}
			for _, id := range h.Deactivated() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func (c *cli) reactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reactivate <id>...",
		Short: "Clear the deactivation of one or more extensions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := c.stateHost(cmd)
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := h.Reactivate(id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// stateHost opens the deactivation state without requiring version settings.
func (c *cli) stateHost(cmd *cobra.Command) (*host.Host, error) {
	if err := c.layer(cmd); err != nil {
		return nil, err
	}
	return c.newHost(log.NewZerologAdapter(os.Stderr, c.cfg.Level()))
}

func compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <current> <required>",
		Short: "Print whether current is at least required",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := gate.Compare(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), gate.IsVersionAtLeast(args[0], args[1]))
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build and module versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reqgate %s %s/%s\n", getVersion(), runtime.GOOS, runtime.GOARCH)

			versions := reqgate.ModuleVersions()
			names := make([]string, 0, len(versions))
			for name := range versions {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "  %-6s %s\n", name, versions[name])
			}
			return reqgate.CheckModuleVersions()
		},
	}
}

func printStatus(w io.Writer, passed bool) {
	if passed {
		color.New(color.FgGreen, color.Bold).Fprintln(w, "requirements met")
		return
	}
	color.New(color.FgRed, color.Bold).Fprintln(w, "requirements not met")
}
