// Package cli wires the lantern commands.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lanternhq/lantern/internal/blueprint"
	"github.com/lanternhq/lantern/internal/config"
	"github.com/lanternhq/lantern/internal/core/domain"
)

var (
	cfgFile      string
	manifestFile string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "lantern",
	Short: "Build and launch notebook workbench containers",
	Long: `Lantern turns a small blueprint (base image, workdir, packages, port,
entry command) into a running notebook workbench: it renders a Dockerfile,
builds the image through the Docker daemon, and starts the container with
the blueprint port published on all interfaces.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = newLogger(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()), verbose)
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default lantern.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVarP(&manifestFile, "blueprint", "f", "", "blueprint manifest file (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger keeps piped output structured: the console writer is only used
// when the destination is a terminal.
func newLogger(w io.Writer, terminal, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if terminal {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// loadBlueprint resolves the effective blueprint: the -f flag wins over the
// configured manifest path; a missing file yields the stock blueprint.
func loadBlueprint(cfg *config.Config) (domain.Blueprint, error) {
	path := cfg.Blueprint.Manifest
	if manifestFile != "" {
		path = manifestFile
	}
	return blueprint.LoadOrDefault(path)
}
