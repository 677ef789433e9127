package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/powervision/estoque/internal/config"
	"github.com/powervision/estoque/internal/tui"
)

var (
	cfgFile      string
	apiURLFlag   string
	logLevelFlag string
	useTUI       bool

	// Package-level version info, set by Execute().
	appVersion string
	appCommit  string
	appDate    string
)

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	if err := newRootCmd(version, commit, date).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(version, commit, date string) *cobra.Command {
	appVersion = version
	appCommit = commit
	appDate = date

	rootCmd := &cobra.Command{
		Use:   "estoque",
		Short: "Inventory client for the products API",
		Long:  "estoque logs into the products API and lists, adds, edits, deletes and exports products.",
		// Running estoque with no subcommand starts the terminal UI.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !cmd.Root().PersistentFlags().Changed("tui") && term.IsTerminal(int(os.Stdout.Fd())) {
				useTUI = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !useTUI {
				return cmd.Help()
			}
			return runTUI()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ~/.config/estoque/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "override the products API base URL")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "override the log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&useTUI, "tui", false, "use the terminal UI (default: auto-detect terminal)")

	// Subcommands
	rootCmd.AddCommand(newProductsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newDevServerCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd(version, commit, date))
	return rootCmd
}

// displayVersion returns e.g. "0.1.0 (abc1234)".
func displayVersion() string {
	v := appVersion
	if appCommit != "" && appCommit != "none" {
		v += " (" + appCommit + ")"
	}
	return v
}

// initConfig loads configuration, applying CLI flag overrides.
func initConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// CLI flags override config values
	if apiURLFlag != "" {
		cfg.API.BaseURL = apiURLFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func runTUI() error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	// The alt screen owns the terminal, so logs must not go to stderr.
	if cfg.Log.File == "" {
		if p, err := defaultLogPath(); err == nil {
			cfg.Log.File = p
		}
	}

	alerter := &tui.ProgramAlerter{}
	app, err := buildApp(cfg, alerter)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := signalContext()
	defer cancel()

	return tui.Run(app.context(ctx), app.TUI(), tui.Config{
		Version:  displayVersion(),
		BaseURL:  cfg.API.BaseURL,
		Username: cfg.Auth.Username,
	}, alerter)
}
