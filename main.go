// =============================================================================
// Legacy Payment Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Legacy Payment Converter CLI. It
// delegates command execution to the cmd package.
//
// USAGE:
//   converter convert       - Convert all legacy files in the input directory
//   converter validate      - Soft-validate an ISO 20022 document
//   converter inspect       - Print the analysis of one message as JSON
//   converter serve         - Expose the converter over HTTP
//   converter version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsers, builders, analyses and the conversion pipeline
//   - pkg/           : File handling and run logs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/iso20022-converter/cmd"
)

func main() {
	cmd.Execute()
}
