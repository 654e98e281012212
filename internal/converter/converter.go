// =============================================================================
// Legacy Payment Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It turns one legacy
// message into an ISO 20022 document and runs the three post-build analyses.
//
// CONVERSION PIPELINE:
//   1. Parse the legacy text into the canonical model
//   2. Build the ISO 20022 document and its mapping report
//   3. Concurrently:
//      a. Soft-validate the XML text
//      b. Detect risks over the canonical model
//      c. Infer assumptions from the XML text and mapping notes
//   4. Attach the risks to the mapping report
//
// CONCURRENCY:
//   The analyses only read the XML string, the model and the mapping rows,
//   so they share them without locks. Each goroutine owns the variable it
//   writes, and the results are combined after the group has finished.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/iso20022-converter/internal/assumptions"
	"github.com/ginjaninja78/iso20022-converter/internal/mapping"
	"github.com/ginjaninja78/iso20022-converter/internal/mtparser"
	"github.com/ginjaninja78/iso20022-converter/internal/nachaparser"
	"github.com/ginjaninja78/iso20022-converter/internal/risk"
	"github.com/ginjaninja78/iso20022-converter/internal/types"
	"github.com/ginjaninja78/iso20022-converter/internal/validation"
)

// ErrUnknownFormat is returned when the format of a text cannot be told.
var ErrUnknownFormat = errors.New("unable to detect legacy format")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Conversion is the complete outcome of converting one legacy message.
type Conversion struct {
	Format  types.Format `json:"format"`
	Message string       `json:"message"`

	// XML is the generated document.
	XML string `json:"xml"`

	// Report holds the mapping rows, build-time assumptions and risks.
	Report types.MappingReport `json:"report"`

	Validation  types.ValidationResult `json:"validation"`
	Assumptions []string               `json:"assumptions"`

	// Transactions is the number of credit transfers in the document.
	Transactions int `json:"transactions"`
}

// Risks returns the risks found for the source message.
func (c *Conversion) Risks() []types.Risk {
	return c.Report.Risks
}

// Analysis is the output of the three independent post-build analyses.
type Analysis struct {
	Validation  types.ValidationResult
	Risks       []types.Risk
	Assumptions []string
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the conversion pipeline. It holds no per-call state and
// is safe for concurrent use.
type Converter struct {
	builder *mapping.Builder
	logger  *zap.Logger
}

// New creates a Converter with the default builder. A nil logger is
// replaced by a no-op logger.
func New(logger *zap.Logger) *Converter {
	return NewWithBuilder(mapping.NewBuilder(), logger)
}

// NewWithBuilder creates a Converter around a specific builder, typically
// one with a fixed clock and id generator.
func NewWithBuilder(b *mapping.Builder, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{builder: b, logger: logger}
}

// =============================================================================
// MAIN CONVERSION FUNCTION
// =============================================================================

// Convert parses, builds and analyzes one legacy message.
//
// PARAMETERS:
//   - ctx: Cancels the analyses.
//   - format: The source format.
//   - input: The raw legacy text.
//
// RETURNS:
//   - The conversion.
//   - A parse error (types.MissingFieldError / types.InvalidFormatError,
//     wrapped), a build error, or the context error.
func (c *Converter) Convert(ctx context.Context, format types.Format, input string) (*Conversion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		res          *mapping.Result
		detect       func() []types.Risk
		transactions int
	)

	switch format {
	case types.FormatMT103:
		m, err := mtparser.Parse(input)
		if err != nil {
			return nil, fmt.Errorf("failed to parse MT103: %w", err)
		}
		if res, err = c.builder.BuildPacs008(m); err != nil {
			return nil, fmt.Errorf("failed to build pacs.008: %w", err)
		}
		detect = func() []types.Risk { return risk.DetectMT103Risks(m) }
		transactions = 1

	case types.FormatNACHA:
		f, err := nachaparser.Parse(input)
		if err != nil {
			return nil, fmt.Errorf("failed to parse NACHA: %w", err)
		}
		if res, err = c.builder.BuildPain001(f); err != nil {
			return nil, fmt.Errorf("failed to build pain.001: %w", err)
		}
		detect = func() []types.Risk { return risk.DetectNACHARisks(f) }
		transactions = len(f.Entries)

	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}

	c.logger.Debug("Built document",
		zap.Stringer("format", format),
		zap.String("messageId", res.Report.MessageID),
		zap.Int("rows", len(res.Report.Rows)))

	analysis, err := Analyze(ctx, format, res.XML, &res.Report, detect)
	if err != nil {
		return nil, err
	}

	report := res.Report
	report.Risks = analysis.Risks

	c.logger.Debug("Analyzed document",
		zap.Bool("valid", analysis.Validation.Valid),
		zap.Int("risks", len(analysis.Risks)),
		zap.Int("assumptions", len(analysis.Assumptions)))

	return &Conversion{
		Format:       format,
		Message:      format.TargetMessage(),
		XML:          res.XML,
		Report:       report,
		Validation:   analysis.Validation,
		Assumptions:  analysis.Assumptions,
		Transactions: transactions,
	}, nil
}

// ConvertAuto detects the format of input and converts it.
func (c *Converter) ConvertAuto(ctx context.Context, input string) (*Conversion, error) {
	format, err := DetectFormat(input)
	if err != nil {
		return nil, err
	}
	return c.Convert(ctx, format, input)
}

// Analyze runs validation, risk detection and assumption inference
// concurrently. report is only read.
//
// PARAMETERS:
//   - ctx: Cancels the group before any analysis starts.
//   - format: The source format; selects the validator and date checks.
//   - xml: The generated document.
//   - report: The builder's mapping report, for forwarded notes.
//   - detect: Risk detection over the canonical model.
//
// RETURNS:
//   - The combined analysis.
//   - The context error, or an error for an unsupported format.
func Analyze(ctx context.Context, format types.Format, xml string, report *types.MappingReport, detect func() []types.Risk) (Analysis, error) {
	var out Analysis
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		result, err := validation.Validate(format, xml)
		if err != nil {
			return err
		}
		out.Validation = result
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		out.Risks = detect()
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		out.Assumptions = assumptions.Infer(xml, format, report)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Analysis{}, err
	}
	return out, nil
}

// =============================================================================
// FORMAT DETECTION
// =============================================================================

var (
	mtTagPattern    = regexp.MustCompile(`^:\w+:`)
	mtTagAnywhere   = regexp.MustCompile(`:\d+[A-Z]*:`)
	nachaRecordName = map[byte]string{
		'1': "File Header",
		'5': "Batch Header",
		'6': "Entry Detail",
		'8': "Batch Control",
		'9': "File Control",
	}
)

// DetectFormat guesses the format of a legacy text from its first
// non-blank line: a ":NN:" field tag means MT103, a NACHA record type
// followed by two digits means NACHA.
func DetectFormat(input string) (types.Format, error) {
	line := firstLine(input)
	switch {
	case mtTagPattern.MatchString(line):
		return types.FormatMT103, nil
	case isNACHARecord(line):
		return types.FormatNACHA, nil
	}
	return 0, ErrUnknownFormat
}

func firstLine(input string) string {
	for _, raw := range strings.Split(input, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			return line
		}
	}
	return ""
}

func isNACHARecord(line string) bool {
	if len(line) < 3 {
		return false
	}
	if _, ok := nachaRecordName[line[0]]; !ok {
		return false
	}
	return isDigit(line[1]) && isDigit(line[2])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// DetectFields lists what a legacy text appears to contain, for a quick
// preview before conversion: MT103 tag names in order of appearance, or
// the NACHA record kinds present. Each item is listed once.
func DetectFields(input string, format types.Format) []string {
	var fields []string
	seen := map[string]bool{}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			fields = append(fields, s)
		}
	}

	switch format {
	case types.FormatMT103:
		for _, tag := range mtTagAnywhere.FindAllString(input, -1) {
			add(strings.Trim(tag, ":"))
		}
	case types.FormatNACHA:
		for _, raw := range strings.Split(input, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			if name, ok := nachaRecordName[line[0]]; ok {
				add(name)
			}
		}
	}

	return fields
}
