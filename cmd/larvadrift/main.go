// Command larvadrift runs larval drift experiments: an ensemble of larvae
// with diel vertical migration and a pelagic larval duration, carried by a
// simple transport host.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sarchlab/larvadrift/logging"
)

var (
	// Global flags
	verbose bool
	envFile string

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "larvadrift",
	Short: "Larval drift with diel vertical migration and PLD mortality",
	Long: `larvadrift advances an ensemble of fish larvae in fixed timesteps.

Each step optionally moves larvae vertically following the hour of day,
retires larvae that completed their pelagic larval duration, then lets the
transport host advect and mix the ones still active.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		logger, err = logging.New(verbose)
		if err != nil {
			return err
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"File with LARVADRIFT_* variables to load before reading the environment")

	rootCmd.AddCommand(runCmd, optionsCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
