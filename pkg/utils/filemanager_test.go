package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func newTestManager(t *testing.T) *FileManager {
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "in"),
		filepath.Join(root, "out"),
		filepath.Join(root, "in_archive"),
		filepath.Join(root, "out_archive"),
	)
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newTestManager(t)
	touch(t, filepath.Join(fm.InputDir, "b.ach"))
	touch(t, filepath.Join(fm.InputDir, "a.mt103"))
	touch(t, filepath.Join(fm.InputDir, "notes.csv"))
	touch(t, filepath.Join(fm.InputDir, "nested", "c.ach"))
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "dir.ach"), 0o755))

	files, err := fm.DiscoverInputFiles("*.ach", "*.mt103", "b.*")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(fm.InputDir, "a.mt103"),
		filepath.Join(fm.InputDir, "b.ach"),
	}, files)
}

func TestDiscoverInputFiles_BadPattern(t *testing.T) {
	fm := newTestManager(t)
	_, err := fm.DiscoverInputFiles("[")
	assert.Error(t, err)
}

func TestDiscoverInputFilesRecursive(t *testing.T) {
	fm := newTestManager(t)
	touch(t, filepath.Join(fm.InputDir, "a.ach"))
	touch(t, filepath.Join(fm.InputDir, "nested", "c.ach"))
	touch(t, filepath.Join(fm.InputDir, "nested", "d.csv"))

	files, err := fm.DiscoverInputFilesRecursive("*.ach")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(fm.InputDir, "a.ach"),
		filepath.Join(fm.InputDir, "nested", "c.ach"),
	}, files)
}

func TestArchive(t *testing.T) {
	fm := newTestManager(t)
	fm.UseTimestampSubdirs = true
	fm.Now = func() time.Time { return time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC) }

	src := filepath.Join(fm.InputDir, "wire.mt103")
	touch(t, src)
	out := filepath.Join(fm.OutputDir, "wire.xml")
	touch(t, out)

	archived, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "2025", "09", "30", "wire.mt103"), archived)
	assert.False(t, FileExists(src))
	assert.True(t, FileExists(archived))

	copied, err := fm.ArchiveOutputFile(out)
	require.NoError(t, err)
	assert.True(t, FileExists(out))
	assert.True(t, FileExists(copied))
}

func TestArchive_Disabled(t *testing.T) {
	fm := newTestManager(t)
	fm.ArchiveOnSuccess = false

	src := filepath.Join(fm.InputDir, "wire.mt103")
	touch(t, src)

	got, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, src, got)
	assert.True(t, FileExists(src))
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{format}_{original}_{uuid}", map[string]string{
		"format":   "nacha",
		"original": "payroll",
	})

	assert.True(t, strings.HasPrefix(name, "nacha_payroll_"))
	assert.True(t, strings.HasSuffix(name, ".xml"))
	assert.NotContains(t, name, "{")
	assert.Len(t, name, len("nacha_payroll_")+36+len(".xml"))
}

func TestNameHelpers(t *testing.T) {
	assert.Equal(t, "payroll", BaseName("/in/payroll.ach"))
	assert.Equal(t, "wire", BaseName("wire"))
	assert.Equal(t, filepath.Join("out", "a.report.json"), CompanionPath(filepath.Join("out", "a.xml"), ".report.json"))
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "wire.mt103",
		ErrorType:    "parse",
		ErrorMessage: "Missing required field :20: (Transaction Reference)",
		Field:        ":20:",
	}, {
		FileName:     "batch.ach",
		ErrorType:    "validation",
		ErrorMessage: "document failed soft validation",
		Findings:     []string{"Missing required element: CdtTrfTxInf[1]/Cdtr/Nm"},
	}}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Total Errors: 2")
	assert.Contains(t, text, "Field:          :20:")
	assert.Contains(t, text, "Finding:        Missing required element: CdtTrfTxInf[1]/Cdtr/Nm")
}

func TestWriteSummaryLog(t *testing.T) {
	start := time.Now()
	path, err := WriteSummaryLog(ProcessingSummary{
		StartTime:       start,
		EndTime:         start.Add(time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		CriticalRisks:   3,
		ProcessedFiles: []ProcessedFileInfo{{
			InputFile: "batch.ach", OutputFile: "batch.xml", Format: "NACHA", Message: "pain.001", Transactions: 3, Valid: true,
		}},
		FailedFilesList: []FailedFileInfo{{InputFile: "wire.mt103", ErrorType: "parse", ErrorMessage: "boom"}},
	}, t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Total Files:         2")
	assert.Contains(t, text, "3 critical, 0 warning, 0 info")
	assert.Contains(t, text, "Input:        batch.ach (NACHA)")
	assert.Contains(t, text, "Error: boom")
}
