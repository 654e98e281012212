// =============================================================================
// Legacy Payment Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, the main command for converting
// legacy payment files to ISO 20022.
//
// COMMAND USAGE:
//   converter convert [flags]
//
// FLAGS:
//   --file        : Convert only this file instead of scanning input_dir
//   --dry-run     : Convert and analyze without writing or archiving
//   --recursive   : Also scan subdirectories of input_dir
//
// PROCESSING PIPELINE:
//   1. Discover legacy files in the input directory
//   2. For each file (concurrently, bounded by max_concurrency):
//      a. Resolve the format and convert
//      b. Validate, detect risks, infer assumptions
//      c. Write XML and reports, archive
//   3. Write the error log and the summary log
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/iso20022-converter/internal/converter"
	"github.com/ginjaninja78/iso20022-converter/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	dryRun    bool
	filePath  string
	recursive bool
)

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert legacy payment files to ISO 20022 XML",
	Long: `The convert command scans the input directory for MT103 and NACHA files
and converts each to ISO 20022 XML. The format of a file is detected from its
content, falling back to the input_patterns of the configuration.

Files are converted concurrently. Errors in one file do not affect others.

On success:
  - The XML is written to the output directory, with a .report.json and a
    .report.xlsx next to it
  - The source file is moved to the input archive

On error:
  - The failure is recorded in an error log in the output directory
  - The source file remains in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runConvert(ctx)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Convert and analyze without writing output files")
	convertCmd.Flags().StringVar(&filePath, "file", "", "Path to a single file to convert")
	convertCmd.Flags().BoolVar(&recursive, "recursive", false, "Scan subdirectories of the input directory")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runConvert(ctx context.Context) error {
	startTime := time.Now()

	files := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	files.UseTimestampSubdirs = true

	if !dryRun {
		if err := files.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	switch {
	case filePath != "":
		if !utils.FileExists(filePath) {
			return fmt.Errorf("input file not found: %s", filePath)
		}
		inputFiles = []string{filePath}
	case recursive:
		found, err := files.DiscoverInputFilesRecursive(mainConfig.Patterns()...)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		inputFiles = found
	default:
		found, err := files.DiscoverInputFiles(mainConfig.Patterns()...)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		inputFiles = found
	}

	if len(inputFiles) == 0 {
		fmt.Println("No legacy payment files found in the input directory.")
		return nil
	}

	logger.Info("Discovered input files",
		zap.Int("count", len(inputFiles)),
		zap.Bool("dryRun", dryRun))

	// =========================================================================
	// STEP 2: CONVERT FILES CONCURRENTLY
	// =========================================================================

	runner := converter.NewRunner(mainConfig, files, converter.New(logger), logger)
	runner.DryRun = dryRun

	results := runner.RunAll(ctx, inputFiles)

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		switch {
		case !result.Success:
			fmt.Printf("  ✗ %s: %v\n", name, result.Error)
		case dryRun:
			fmt.Printf("  ✓ %s (%s, %d transaction(s), valid=%t, %d risk(s))%s\n",
				name, result.Stats.Format, result.Stats.Transactions, result.Stats.Valid,
				result.Stats.Risks.Total(), highestRiskNote(result.Stats))
		default:
			fmt.Printf("  ✓ %s -> %s%s\n", name, result.OutputFile, highestRiskNote(result.Stats))
		}
	}

	// =========================================================================
	// STEP 3: WRITE LOGS AND PRINT SUMMARY
	// =========================================================================

	summary := converter.Summarize(results, startTime, time.Now())

	fmt.Println("\n=== Conversion Complete ===")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Invalid XML:     %d\n", summary.ValidationFailures)
	fmt.Printf("Risks:           %d critical, %d warning, %d info\n",
		summary.CriticalRisks, summary.WarningRisks, summary.InfoRisks)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if dryRun {
		return nil
	}

	if errorLog, err := utils.WriteErrorLog(converter.ErrorLogEntries(results), mainConfig.OutputDir); err != nil {
		logger.Error("Failed to write error log", zap.Error(err))
	} else if errorLog != "" {
		fmt.Printf("\nErrors have been logged to %s\n", errorLog)
	}

	if _, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir); err != nil {
		logger.Error("Failed to write summary log", zap.Error(err))
	}

	return nil
}

// highestRiskNote is appended to a per-file line when the message carries
// risks.
func highestRiskNote(stats converter.ProcessingStats) string {
	if stats.HighestRisk == "" {
		return ""
	}
	return fmt.Sprintf(" [highest risk: %s]", stats.HighestRisk)
}
