package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Shared state prepared by the root command before any subcommand runs.
var (
	cfg      config.Config
	logger   *slog.Logger
	engine   *weft.Engine
	registry *prometheus.Registry
)

var rootCmd = &cobra.Command{
	Use:   "weft",
	Short: "weft converts script values to Hadoop Writable records and back",
	Long: `weft is a conversion engine between dynamic script values (JSON, YAML, Lua)
and Hadoop Writable records, with a wire codec compatible with Hadoop's
DataOutput encoding.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")

		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
		if logger, err = cli.NewLogger(cfg.Log, debug); err != nil {
			return err
		}
		if engine, registry, err = cli.NewEngine(cfg, logger); err != nil {
			return err
		}
		logger.Debug("Configuration loaded", "path", path)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}

// outputEncoding resolves the --encoding flag against the configured default.
func outputEncoding(cmd *cobra.Command) (cli.Encoding, error) {
	enc, _ := cmd.Flags().GetString("encoding")
	if !cmd.Flags().Changed("encoding") {
		enc = cfg.Output.Encoding
	}
	return cli.ParseEncoding(enc)
}

// openInput returns the file named by args, or stdin when there is none
// or it is "-". The second result is the input name.
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), "-", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, args[0], fmt.Errorf("failed to open input: %w", err)
	}
	return f, args[0], nil
}
