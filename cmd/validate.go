package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/iso20022-converter/internal/types"
	"github.com/ginjaninja78/iso20022-converter/internal/validation"
)

var messageType string

// validateCmd soft-validates an existing ISO 20022 document.
var validateCmd = &cobra.Command{
	Use:   "validate <file.xml>",
	Short: "Soft-validate a pacs.008 or pain.001 document",
	Long: `Checks an XML document for the elements a pacs.008 or pain.001 message
requires: presence, numeric amounts and counts, three-letter currencies and
ISO dates. This is not XSD validation.

Example:
  converter validate --type pain.001 output/payroll.xml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var format types.Format
		switch strings.ToLower(messageType) {
		case "pacs.008", "pacs008":
			format = types.FormatMT103
		case "pain.001", "pain001":
			format = types.FormatNACHA
		default:
			return fmt.Errorf("unsupported --type %q; expected pacs.008 or pain.001", messageType)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}

		result, err := validation.Validate(format, string(data))
		if err != nil {
			return err
		}

		fmt.Println(validation.FormatErrors(result))
		if !result.Valid {
			return fmt.Errorf("%s failed validation with %d finding(s)", args[0], len(result.Errors))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&messageType, "type", "t", "pacs.008", "Message type: pacs.008 or pain.001")
}
