package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMainConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.True(t, cfg.JSONReport())
	assert.True(t, cfg.XLSXReport())
	assert.True(t, cfg.KeepOnInvalid())
	assert.True(t, cfg.ArchiveEnabled())
}

func TestLoadMainConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
input_dir: /data/in
output_dir: /data/out
log_level: debug
max_concurrency: 2
write_xlsx_report: false
archive_on_success: false
continue_on_error: false
server_addr: 127.0.0.1:9000
input_patterns:
  mt103: ["*.swift"]
`)

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, "./input_archive", cfg.InputArchiveDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddr)
	assert.False(t, cfg.XLSXReport())
	assert.True(t, cfg.JSONReport())
	assert.False(t, cfg.ArchiveEnabled())
	assert.False(t, cfg.KeepOnInvalid())
	assert.Equal(t, map[string][]string{"mt103": {"*.swift"}}, cfg.InputPatterns)
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":        "input_dir: [",
		"bad level":       "log_level: loud",
		"bad concurrency": "max_concurrency: -1",
		"unknown format":  "input_patterns:\n  csv: ['*.csv']",
		"bad glob":        "input_patterns:\n  nacha: ['[']",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadMainConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestMatchFormat(t *testing.T) {
	cfg := Default()

	tests := []struct {
		file   string
		want   types.Format
		wantOK bool
	}{
		{"/in/payment.mt103", types.FormatMT103, true},
		{"wire.fin", types.FormatMT103, true},
		{"batch.ach", types.FormatNACHA, true},
		{"/deep/path/payroll.nacha", types.FormatNACHA, true},
		{"notes.csv", 0, false},
	}

	for _, tt := range tests {
		got, ok := cfg.MatchFormat(tt.file)
		assert.Equal(t, tt.wantOK, ok, tt.file)
		assert.Equal(t, tt.want, got, tt.file)
	}
}

func TestPatterns(t *testing.T) {
	cfg := &MainConfig{InputPatterns: map[string][]string{
		"nacha": {"*.ach", "*.txt"},
		"mt103": {"*.txt", "*.fin"},
	}}
	assert.Equal(t, []string{"*.ach", "*.fin", "*.txt"}, cfg.Patterns())
}
