package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/iso20022-converter/internal/converter"
	"github.com/ginjaninja78/iso20022-converter/internal/fixtures"
	"github.com/ginjaninja78/iso20022-converter/internal/mapping"
	"github.com/ginjaninja78/iso20022-converter/internal/mtparser"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(converter.New(nil), nil))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealth(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestConvert(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		path    string
		body    string
		format  string
		message string
	}{
		{"/api/v1/convert/mt103", fixtures.MT103, "MT103", "pacs.008"},
		{"/api/v1/convert/NACHA", fixtures.NACHA, "NACHA", "pain.001"},
		{"/api/v1/convert/auto", fixtures.NACHA, "NACHA", "pain.001"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, out := post(t, srv, tt.path, tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode, out)

			assert.Equal(t, tt.format, out["format"])
			assert.Equal(t, tt.message, out["message"])
			assert.Contains(t, out["xml"], "<Document")
			assert.NotEmpty(t, out["assumptions"])

			validation, ok := out["validation"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, true, validation["valid"])
		})
	}
}

func TestConvert_Errors(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		field  string
	}{
		{"unknown format", "/api/v1/convert/csv", fixtures.MT103, http.StatusBadRequest, ""},
		{"empty body", "/api/v1/convert/mt103", "  ", http.StatusBadRequest, ""},
		{"missing field", "/api/v1/convert/mt103", ":32A:250930USD1,00", http.StatusUnprocessableEntity, ":20:"},
		{"invalid format", "/api/v1/convert/mt103", ":20:REF\n:32A:garbage\n:50K:A\n:59:B", http.StatusUnprocessableEntity, ":32A:"},
		{"undetectable", "/api/v1/convert/auto", "hello", http.StatusUnprocessableEntity, ""},
		{"auto then invalid", "/api/v1/convert/auto", ":20:REF\n:32A:garbage\n:50K:A\n:59:B", http.StatusUnprocessableEntity, ":32A:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := post(t, srv, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, out["error"])
			if tt.field != "" {
				assert.Equal(t, tt.field, out["field"])
			}
		})
	}
}

func TestValidate(t *testing.T) {
	srv := newServer(t)

	m, err := mtparser.Parse(fixtures.MT103)
	require.NoError(t, err)
	built, err := mapping.BuildPacs008(m)
	require.NoError(t, err)

	resp, out := post(t, srv, "/api/v1/validate/pacs.008", built.XML)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["valid"])

	resp, out = post(t, srv, "/api/v1/validate/pain.001", built.XML)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, out["valid"])
	assert.NotEmpty(t, out["errors"])

	resp, out = post(t, srv, "/api/v1/validate/pacs.008", "<Document><oops")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, out["valid"])

	resp, _ = post(t, srv, "/api/v1/validate/camt.053", built.XML)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDetect(t *testing.T) {
	srv := newServer(t)

	resp, out := post(t, srv, "/api/v1/detect", fixtures.MT103)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MT103", out["format"])
	assert.Equal(t, "pacs.008", out["message"])
	assert.Contains(t, out["fields"], "32A")

	resp, _ = post(t, srv, "/api/v1/detect", "plain")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
