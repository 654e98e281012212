// =============================================================================
// Legacy Payment Converter - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   converter version
//
// OUTPUT:
//   Legacy Payment Converter
//   Version:    1.0.0
//   Messages:   MT103 -> pacs.008.001.08, NACHA -> pain.001.001.09
//   Build Date: 2025-10-01
//   Go Version: go1.24.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/iso20022-converter/internal/mapping"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/iso20022-converter/cmd.Version=1.0.0' -X 'github.com/ginjaninja78/iso20022-converter/cmd.BuildDate=2025-10-01'"

// Version is the application version.
// Set at build time using ldflags.
var Version = "1.0.0"

// BuildDate is the date the application was built.
// Set at build time using ldflags.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, and Go runtime version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Legacy Payment Converter")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Messages:   MT103 -> %s, NACHA -> %s\n", messageVersion(mapping.Pacs008Namespace), messageVersion(mapping.Pain001Namespace))
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Go Version: %s\n", runtime.Version())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// messageVersion extracts "pacs.008.001.08" from a message namespace.
func messageVersion(namespace string) string {
	return namespace[strings.LastIndex(namespace, ":")+1:]
}

// init registers the version command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}
