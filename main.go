package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/takoeight0821/symdiff/config"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
	variable string

	// cfg holds the settings after flags are applied.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "symdiff",
	Short: "Symbolic differentiation of single-variable expressions",
	Long: `symdiff parses arithmetic and trigonometric expressions, simplifies them and
computes their derivatives symbolically.

Without a subcommand it starts an interactive prompt.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return RunPrompt(cmd.OutOrStdout())
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: search "+config.RelPath+" in XDG config dirs)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVarP(&variable, "var", "v", "", "differentiation variable")
}

// setup loads the config file, lets flags override it and installs the
// default logger.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("var") {
		cfg.Variable = variable
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	logger.Debug("configuration loaded",
		slog.String("variable", cfg.Variable),
		slog.Uint64("precision", uint64(cfg.Precision)),
		slog.Bool("history", cfg.History))

	return nil
}

func main() {
	Execute()
}
