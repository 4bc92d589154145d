package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kastheco/craftdeck/app"
	"github.com/kastheco/craftdeck/async"
	"github.com/kastheco/craftdeck/config"
	sentrypkg "github.com/kastheco/craftdeck/internal/sentry"
	"github.com/kastheco/craftdeck/internal/telemetry"
	"github.com/kastheco/craftdeck/launcher"
	"github.com/kastheco/craftdeck/log"
	"github.com/kastheco/craftdeck/notify"
)

// errNoTerminal is returned when the UI is started without a terminal on stdout.
var errNoTerminal = errors.New("craftdeck needs an interactive terminal")

// shutdownTimeout bounds how long exit waits for background operations.
const shutdownTimeout = 5 * time.Second

var (
	version  = "0.1.0"
	exitFlag bool
	rootCmd  = &cobra.Command{
		Use:   "craftdeck",
		Short: "craftdeck - A terminal launcher for Minecraft instances.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLauncher(cmd.Context(), cmd.Name(), func(rt *env) error {
				return rt.runUI()
			})
		},
	}

	installCmd = &cobra.Command{
		Use:   "install <file.mrpack>",
		Short: "Install a Modrinth modpack as a new instance, then open the launcher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve pack path: %w", err)
			}
			return withLauncher(cmd.Context(), cmd.Name(), func(rt *env) error {
				fmt.Printf("Installing %s...\n", filepath.Base(path))
				inst, err := rt.service.InstallPack(rt.ctx, path)
				if err != nil {
					return fmt.Errorf("failed to install pack: %w", err)
				}
				fmt.Printf("Installed %s (%s)\n", inst.Name, inst.VersionLabel())
				if exitFlag {
					return nil
				}
				return rt.runUI()
			})
		},
	}

	accountCmd = &cobra.Command{
		Use:   "account",
		Short: "Manage offline accounts",
	}

	accountAddCmd = &cobra.Command{
		Use:   "add <username>",
		Short: "Add an offline account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLauncher(cmd.Context(), cmd.Name(), func(rt *env) error {
				acc, err := rt.service.AddAccount(rt.ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to add account: %w", err)
				}
				fmt.Printf("Added account %s\n", acc.Username)
				return nil
			})
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()

			configDir, err := config.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to get config directory: %w", err)
			}
			dataDir, err := cfg.ResolveDataDir()
			if err != nil {
				return fmt.Errorf("failed to resolve data directory: %w", err)
			}
			configJson, _ := json.MarshalIndent(cfg, "", "  ")

			fmt.Printf("Config: %s\n", filepath.Join(configDir, config.ConfigFileName))
			fmt.Printf("TOML overrides: %s\n", filepath.Join(configDir, config.TOMLConfigFileName))
			fmt.Printf("Data: %s\n", dataDir)
			fmt.Printf("Database: %s\n", launcher.StorePath(dataDir))
			fmt.Printf("Log: %s\n", log.Path())
			fmt.Printf("%s\n", configJson)
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of craftdeck",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("craftdeck version %s\n", version)
			fmt.Printf("https://github.com/kastheco/craftdeck/releases/tag/v%s\n", version)
		},
	}
)

// env is everything a command needs once the launcher is open.
type env struct {
	ctx      context.Context
	cfg      *config.Config
	service  *launcher.Service
	executor *async.Executor
}

func (rt *env) runUI() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNoTerminal
	}
	queue := notify.Shared()
	queue.SetWidth(rt.cfg.GetNotificationWidth())
	return app.Run(rt.ctx, app.Options{
		Config:   rt.cfg,
		Backend:  rt.service,
		Notifier: queue,
		Executor: rt.executor,
	})
}

// withLauncher sets up crash reporting, logging, tracing and the launcher
// service, runs fn, then tears everything down in reverse.
func withLauncher(ctx context.Context, command string, fn func(rt *env) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.LoadConfig()

	sentryErr := sentrypkg.Init(sentrypkg.Options{Version: version, Enabled: cfg.IsTelemetryEnabled()})
	defer sentrypkg.Flush()
	defer sentrypkg.Recover()

	log.Initialize(false, cfg.IsTelemetryEnabled())
	defer log.Close()
	if sentryErr != nil {
		log.WarningLog.Printf("crash reporting disabled: %v", sentryErr)
	}

	tp, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, version)
	if err != nil {
		log.WarningLog.Printf("tracing disabled: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			log.WarningLog.Printf("failed to flush traces: %v", err)
		}
	}()

	service, err := launcher.Open(cfg, "kastheco/craftdeck/"+version)
	if err != nil {
		return fmt.Errorf("failed to open launcher: %w", err)
	}
	defer func() {
		if err := service.Close(); err != nil {
			log.ErrorLog.Printf("failed to close launcher: %v", err)
		}
	}()

	if instances, err := service.ListInstances(ctx); err == nil {
		sentrypkg.TagLauncher(cfg.JavaCommand, len(instances))
	}

	executor := async.NewExecutor(cfg.GetMaxWorkers(), tp.Tracer())
	defer func() {
		if err := executor.Shutdown(shutdownTimeout); err != nil {
			log.WarningLog.Printf("background operations still running at exit: %v", err)
		}
	}()

	err = fn(&env{ctx: ctx, cfg: cfg, service: service, executor: executor})
	if err != nil && !errors.Is(err, errNoTerminal) {
		sentrypkg.CaptureCommand(command, err)
	}
	return err
}

func init() {
	installCmd.Flags().BoolVar(&exitFlag, "exit", false, "Exit after the pack is installed instead of opening the launcher")

	accountCmd.AddCommand(accountAddCmd)

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
