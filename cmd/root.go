package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/folio-cli/internal/config"
	"github.com/KaramelBytes/folio-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Overrides (win over config if set)
	flagHTTPTimeoutSec int
	flagBackend        string

	// Loaded configuration
	cfg *cfgpkg.Global
	log = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio: a personal portfolio you keep locally and publish to GitHub",
	Long: `folio keeps a list of portfolio projects (title, description, optional file)
in a local store and can publish any single project to a GitHub repository's
_projects/ directory using a personal access token.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.folio/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: file or redis (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it themselves
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("backend") && flagBackend != "" {
		cfg.StorageBackend = flagBackend
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
			cfg = nil
			return
		}
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	l, err := logging.New(level, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		return
	}
	log = l
}
