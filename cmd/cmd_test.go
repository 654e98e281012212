package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/iso20022-converter/internal/converter"
	"github.com/ginjaninja78/iso20022-converter/internal/fixtures"
	"github.com/ginjaninja78/iso20022-converter/internal/report"
	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

func TestMessageVersion(t *testing.T) {
	assert.Equal(t, "pacs.008.001.08", messageVersion("urn:iso:std:iso:20022:tech:xsd:pacs.008.001.08"))
}

func TestInspectSample(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"--config", filepath.Join(t.TempDir(), "absent.yaml"),
		"inspect", "--sample", "nacha",
	})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		inspectSample = ""
	})

	require.NoError(t, rootCmd.Execute())

	var view map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, "NACHA", view["format"])
	assert.Equal(t, "pain.001", view["message"])
	assert.Equal(t, "sample", view["sourceFile"])
	assert.Contains(t, view["detectedFields"], "Entry Detail")
	assert.NotContains(t, view, "xml")
}

func TestInspectReport(t *testing.T) {
	conv, err := converter.New(nil).Convert(context.Background(), types.FormatMT103, fixtures.MT103)
	require.NoError(t, err)

	dir := t.TempDir()
	workbook := filepath.Join(dir, "wire.report.xlsx")
	require.NoError(t, report.SaveXLSX(workbook, conv.Bundle("wire.mt103")))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"--config", filepath.Join(dir, "absent.yaml"),
		"inspect", "--report", workbook,
	})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		inspectReport = ""
	})

	require.NoError(t, rootCmd.Execute())

	var view reportView
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, workbook, view.Workbook)
	assert.Equal(t, conv.Report.Rows, view.Mapping)
}

func TestHighestRiskNote(t *testing.T) {
	assert.Empty(t, highestRiskNote(converter.ProcessingStats{}))
	assert.Equal(t, " [highest risk: Critical]",
		highestRiskNote(converter.ProcessingStats{HighestRisk: "Critical"}))
}
