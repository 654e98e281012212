// =============================================================================
// Legacy Payment Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (converter)
//   ├── convertCmd  (converter convert)
//   ├── validateCmd (converter validate)
//   ├── inspectCmd  (converter inspect)
//   ├── serveCmd    (converter serve)
//   └── versionCmd  (converter version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading config.yaml before any subcommand runs
//   3. Building the zap logger from the configured level and log file
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/iso20022-converter/internal/config"
	"github.com/ginjaninja78/iso20022-converter/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// mainConfig and logger are set by the root command before a subcommand runs.
var (
	mainConfig *config.MainConfig
	logger     = zap.NewNop()
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "converter",
	Short: "Legacy Payment Converter - Convert MT103 and NACHA payments to ISO 20022",
	Long: `Legacy Payment Converter turns legacy payment messages into ISO 20022 XML.

  SWIFT MT103  ->  pacs.008 (FI to FI customer credit transfer)
  NACHA ACH    ->  pain.001 (customer credit transfer initiation)

Every conversion also produces a field-level mapping report, a soft
validation result, a list of detected risks and the assumptions the
conversion had to make.

Example Usage:
  converter convert                      # Convert every file in the input directory
  converter convert --file wire.mt103    # Convert one file
  converter validate --type pacs.008 out.xml
  converter inspect --sample nacha       # Show the analysis of a built-in sample
  converter serve                        # Expose the converter over HTTP`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg, err := config.LoadMainConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}
		mainConfig = cfg

		l, err := logging.New(cfg.LogLevel, cfg.LogFile, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file; defaults apply when it is absent",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
