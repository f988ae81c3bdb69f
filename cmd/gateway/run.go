package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"agentic/gateway/pkg/cli"
	"agentic/gateway/pkg/config"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway server",
	Long: `Start the gateway server with the specified configuration.

Without --config the server starts from defaults, overridden by GATEWAY_*
environment variables. With --config the file is watched and the log level
and session idle timeout are reapplied when it changes.

Examples:
  # Start with defaults
  gateway run

  # Start with a config file
  gateway run --config /etc/gateway/config.yaml

  # Override listen address
  gateway run --listen 127.0.0.1:3001

  # Validate config without starting server
  gateway run --config config.yaml --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}

	applyFlagOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}
	config.SetConfig(cfg)

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	logger, err := newLogger(cfg.Telemetry.Logging, os.Stderr)
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}
	slog.SetDefault(logger.Slog())

	ctx := cli.SetupSignalHandler()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		if err := a.close(); err != nil {
			slog.Error("error during cleanup", "error", err)
		}
	}()

	if err := a.start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, 0, logger.Slog(), reloadConfig(a))
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer watcher.Stop()
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start(ctx)
	}()

	addrCh := make(chan string, 1)
	go func() {
		if addr, err := a.server.Addr(ctx); err == nil {
			addrCh <- addr
		}
	}()

	select {
	case err := <-errCh:
		return cli.NewCommandError("run", err)
	case addr := <-addrCh:
		printBanner(cmd, cfg, addr)
	}

	if err := <-errCh; err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// applyFlagOverrides sets the values given on the command line over cfg.
func applyFlagOverrides(cfg *config.Config) {
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
}

// reloadConfig returns the config watcher callback. Command-line overrides
// still win over the reloaded file.
func reloadConfig(a *app) func(*config.Config) {
	return func(cfg *config.Config) {
		applyFlagOverrides(cfg)
		a.applyConfig(cfg)
	}
}

func printBanner(cmd *cobra.Command, cfg *config.Config, addr string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Gateway v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "✓ Configuration loaded from %s\n", cfgFile)
	}
	fmt.Fprintf(out, "✓ Provider: %s (%s)\n", cfg.Provider.Type, cfg.Provider.Model)
	if cfg.Audit.Enabled {
		fmt.Fprintf(out, "✓ Audit trail: %s\n", cfg.Audit.Backend)
	}
	fmt.Fprintf(out, "✓ Server listening on %s\n", addr)
	fmt.Fprintf(out, "✓ Health endpoint: http://%s/health\n", addr)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", addr, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}
