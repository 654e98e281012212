// =============================================================================
// Legacy Payment Converter - File Runner
// =============================================================================
//
// The runner drives the conversion of files on disk. It wraps a Converter
// with the directory handling, report writing and archiving a batch run
// needs.
//
// FILE PIPELINE:
//   1. Read the input file
//   2. Resolve the format (content first, then configured patterns)
//   3. Convert and analyze
//   4. Reject invalid documents unless continue_on_error is set
//   5. Write the XML and the JSON / XLSX reports
//   6. Archive the processed files
//
// CONCURRENCY:
//   RunAll processes files in their own goroutines, bounded by
//   max_concurrency. Results are returned in input order.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/iso20022-converter/internal/config"
	"github.com/ginjaninja78/iso20022-converter/internal/report"
	"github.com/ginjaninja78/iso20022-converter/internal/risk"
	"github.com/ginjaninja78/iso20022-converter/internal/types"
	"github.com/ginjaninja78/iso20022-converter/pkg/utils"
)

// Error types recorded in the error log.
const (
	ErrorTypeFormat     = "format"
	ErrorTypeParse      = "parse"
	ErrorTypeValidation = "validation"
	ErrorTypeIO         = "io"
)

// ValidationError rejects a document whose soft validation failed.
type ValidationError struct {
	Findings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document failed soft validation with %d errors", len(e.Findings))
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated XML file.
	// This is empty if processing failed.
	OutputFile string

	// ArchivePath is where the input file was moved, if archived.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	Format       types.Format
	Transactions int

	// Valid is the soft validation outcome of the generated document.
	Valid            bool
	ValidationErrors int

	Risks       risk.Summary
	Assumptions int

	// HighestRisk is the most severe risk level found, or "" when the
	// message carries no risks.
	HighestRisk string

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// RUNNER STRUCTURE
// =============================================================================

// Runner converts files according to the main configuration.
type Runner struct {
	// DryRun stops after validation: nothing is written or archived.
	DryRun bool

	cfg    *config.MainConfig
	files  *utils.FileManager
	conv   *Converter
	logger *zap.Logger
}

// NewRunner creates a Runner. The file manager's archive switch follows
// the configuration.
func NewRunner(cfg *config.MainConfig, files *utils.FileManager, conv *Converter, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	files.ArchiveOnSuccess = cfg.ArchiveEnabled()
	return &Runner{cfg: cfg, files: files, conv: conv, logger: logger}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the file pipeline for one input file.
//
// PARAMETERS:
//   - ctx: Cancels the conversion.
//   - path: The input file.
//
// RETURNS:
//   - A Result; failures are reported in Result.Error, never panicked.
func (r *Runner) Run(ctx context.Context, path string) (result Result) {
	startTime := time.Now()
	result = Result{FilePath: path}
	log := r.logger.With(zap.String("file", path))

	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	// =========================================================================
	// STEP 1: READ AND RESOLVE FORMAT
	// =========================================================================

	data, err := os.ReadFile(path)
	if err != nil {
		result.Error = fmt.Errorf("failed to read input: %w", err)
		return result
	}
	input := string(data)

	format, err := r.resolveFormat(path, input)
	if err != nil {
		result.Error = err
		return result
	}
	result.Stats.Format = format
	log.Debug("Resolved format", zap.Stringer("format", format))

	// =========================================================================
	// STEP 2: CONVERT
	// =========================================================================

	conv, err := r.conv.Convert(ctx, format, input)
	if err != nil {
		result.Error = err
		return result
	}

	result.Stats.Transactions = conv.Transactions
	result.Stats.Valid = conv.Validation.Valid
	result.Stats.ValidationErrors = len(conv.Validation.Errors)
	result.Stats.Risks = risk.Summarize(conv.Risks())
	if level, ok := risk.Highest(conv.Risks()); ok {
		result.Stats.HighestRisk = level.String()
	}
	result.Stats.Assumptions = len(conv.Assumptions)

	// =========================================================================
	// STEP 3: VALIDATION GATE
	// =========================================================================

	if !conv.Validation.Valid {
		for _, finding := range conv.Validation.Errors {
			log.Warn("Validation error", zap.String("finding", finding))
		}
		if !r.cfg.KeepOnInvalid() {
			result.Error = &ValidationError{Findings: conv.Validation.Errors}
			return result
		}
	}

	if r.DryRun {
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUT
	// =========================================================================

	outputPath, err := r.writeOutput(path, conv)
	if err != nil {
		result.Error = err
		return result
	}
	result.OutputFile = outputPath
	log.Info("Wrote output",
		zap.String("output", outputPath),
		zap.Int("transactions", conv.Transactions),
		zap.Bool("valid", conv.Validation.Valid),
		zap.Int("risks", len(conv.Risks())))

	// =========================================================================
	// STEP 5: ARCHIVE FILES
	// =========================================================================

	archived, err := r.archiveFiles(path, outputPath)
	if err != nil {
		log.Warn("Failed to archive files", zap.Error(err))
	}
	if archived != path {
		result.ArchivePath = archived
	}

	result.Success = true
	return result
}

// RunAll processes paths concurrently, at most max_concurrency at a time.
// Results are in the order of paths.
func (r *Runner) RunAll(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	sem := make(chan struct{}, r.cfg.MaxConcurrency)

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = Result{FilePath: path, Error: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			results[i] = r.Run(ctx, path)
		}(i, path)
	}
	wg.Wait()

	return results
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// resolveFormat prefers what the content says over the file name, so a
// NACHA file named *.txt is not taken for an MT103.
func (r *Runner) resolveFormat(path, input string) (types.Format, error) {
	if format, err := DetectFormat(input); err == nil {
		return format, nil
	}
	if format, ok := r.cfg.MatchFormat(path); ok {
		return format, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
}

// writeOutput writes the XML document and its companion reports.
func (r *Runner) writeOutput(inputPath string, conv *Conversion) (string, error) {
	name := utils.GenerateOutputFileName(r.cfg.UUIDFormat, map[string]string{
		"original": utils.BaseName(inputPath),
		"format":   strings.ToLower(conv.Format.String()),
		"message":  conv.Message,
	})
	outputPath := filepath.Join(r.files.OutputDir, name)

	if err := os.MkdirAll(r.files.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(conv.XML), 0o644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}

	bundle := conv.Bundle(filepath.Base(inputPath))
	if r.cfg.JSONReport() {
		if err := report.SaveJSON(utils.CompanionPath(outputPath, ".report.json"), bundle); err != nil {
			return "", err
		}
	}
	if r.cfg.XLSXReport() {
		if err := report.SaveXLSX(utils.CompanionPath(outputPath, ".report.xlsx"), bundle); err != nil {
			return "", err
		}
	}

	return outputPath, nil
}

// archiveFiles moves the input and copies the output into the archives.
func (r *Runner) archiveFiles(inputPath, outputPath string) (string, error) {
	archived, err := r.files.ArchiveInputFile(inputPath)
	if err != nil {
		return "", err
	}
	if _, err := r.files.ArchiveOutputFile(outputPath); err != nil {
		return archived, err
	}
	return archived, nil
}

// Bundle collects the conversion into a report bundle.
func (c *Conversion) Bundle(sourceFile string) report.Bundle {
	return report.Bundle{
		SourceFile:  sourceFile,
		Format:      c.Format,
		Message:     c.Message,
		Mapping:     c.Report,
		Validation:  c.Validation,
		RiskSummary: risk.Summarize(c.Risks()),
		Assumptions: c.Assumptions,
	}
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// ErrorType classifies a processing error for the error log.
func ErrorType(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return ErrorTypeValidation
	case errors.Is(err, types.ErrMissingField), errors.Is(err, types.ErrInvalidFormat):
		return ErrorTypeParse
	case errors.Is(err, ErrUnknownFormat):
		return ErrorTypeFormat
	default:
		return ErrorTypeIO
	}
}

// ErrorLogEntries builds error log entries for the failed results.
func ErrorLogEntries(results []Result) []utils.ErrorLogEntry {
	var entries []utils.ErrorLogEntry
	for _, res := range results {
		if res.Success || res.Error == nil {
			continue
		}
		entry := utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     filepath.Base(res.FilePath),
			ErrorType:    ErrorType(res.Error),
			ErrorMessage: res.Error.Error(),
		}

		var missing *types.MissingFieldError
		var invalid *types.InvalidFormatError
		var verr *ValidationError
		switch {
		case errors.As(res.Error, &missing):
			entry.Field = missing.Field
		case errors.As(res.Error, &invalid):
			entry.Field = invalid.Field
		case errors.As(res.Error, &verr):
			entry.Findings = verr.Findings
		}

		entries = append(entries, entry)
	}
	return entries
}

// Summarize builds the run summary for the summary log.
func Summarize(results []Result, start, end time.Time) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		StartTime:  start,
		EndTime:    end,
		TotalFiles: len(results),
	}

	for _, res := range results {
		if !res.Success {
			summary.FailedFiles++
			errMsg := ""
			if res.Error != nil {
				errMsg = res.Error.Error()
			}
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    res.FilePath,
				ErrorMessage: errMsg,
				ErrorType:    ErrorType(res.Error),
			})
			continue
		}

		summary.SuccessfulFiles++
		summary.TotalTransactions += res.Stats.Transactions
		if !res.Stats.Valid {
			summary.ValidationFailures++
		}
		summary.CriticalRisks += res.Stats.Risks.Critical
		summary.WarningRisks += res.Stats.Risks.Warning
		summary.InfoRisks += res.Stats.Risks.Info

		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:    res.FilePath,
			OutputFile:   res.OutputFile,
			ArchivePath:  res.ArchivePath,
			Format:       res.Stats.Format.String(),
			Message:      res.Stats.Format.TargetMessage(),
			Transactions: res.Stats.Transactions,
			Valid:        res.Stats.Valid,
			Risks:        res.Stats.Risks.Total(),
			ProcessTime:  res.Stats.ProcessingTime,
		})
	}

	return summary
}
