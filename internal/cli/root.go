package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/config"
	"github.com/LeJamon/goBountySplit/internal/logging"
)

var (
	// Global flags
	configFile  string
	debug       bool
	development bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bountyd",
	Short: "bountyd - multi-party bounty escrow ledger",
	Long: `bountyd runs a ledger of bounty escrows. A requester locks tokens for
up to eight recipients, a quorum of recipients confirms the release and
each recipient then claims its basis-point share.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVar(&development, "dev", false, "use in-memory storage and admin access on loopback")
}

// loadConfig reads the configuration selected by the global flags.
func loadConfig() (*config.Config, error) {
	paths := config.ConfigPaths{Main: configFile}
	if development {
		return config.LoadDevelopmentConfig(paths)
	}
	return config.LoadConfig(paths)
}

// newLogger builds the process logger from cfg, honoring --debug.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	logger, _, err := logging.New(level, cfg.Log.Format)
	return logger, err
}
