package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func fakeAPI(t *testing.T, latestStatus int) string {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/hello", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Hello from One Earth"}`))
	})
	r.Get("/api/metrics/co2", func(w http.ResponseWriter, _ *http.Request) {
		if latestStatus != http.StatusOK {
			http.Error(w, "down", latestStatus)
			return
		}
		_, _ = w.Write([]byte(`{"timestamp":"2024-03-05T14:07:00Z","value":421.34}`))
	})
	r.Get("/api/series/co2", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"T":"2024-03-04T00:00:00Z","V":420.1},{"T":"2024-03-05T00:00:00Z","V":422.9}]`))
	})
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server.URL
}

// run executes the command tree with an isolated config and prefs file.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	base := []string{
		"--config", filepath.Join(dir, "config.toml"),
		"--prefs", filepath.Join(dir, "prefs.toml"),
	}
	return runIn(t, append(base, args...)...)
}

func runIn(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSnapshot_Text(t *testing.T) {
	origin := fakeAPI(t, http.StatusOK)

	out, err := run(t, "snapshot", "--api-origin", origin)
	require.NoError(t, err)

	assert.Contains(t, out, "421.3 ppm")
	assert.Contains(t, out, "2024-03-05 14:07 UTC")
	assert.Contains(t, out, "420.1 ppm to 422.9 ppm (2 points)")
	assert.Contains(t, out, "Hello from One Earth")
	assert.Contains(t, out, "Source: NOAA GML - Public Domain")
}

func TestSnapshot_JSON(t *testing.T) {
	origin := fakeAPI(t, http.StatusOK)

	out, err := run(t, "snapshot", "--api-origin", origin, "--format", "json", "--days", "7")
	require.NoError(t, err)

	var got struct {
		Origin  string `json:"origin"`
		Hello   string `json:"hello"`
		Days    int    `json:"days"`
		Min     float64
		Max     float64
		Readout struct {
			Value string `json:"value"`
		} `json:"readout"`
		Series []map[string]any `json:"series"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, strings.TrimRight(origin, "/"), strings.TrimRight(got.Origin, "/"))
	assert.Equal(t, "Hello from One Earth", got.Hello)
	assert.Equal(t, 7, got.Days)
	assert.Equal(t, "421.3 ppm", got.Readout.Value)
	assert.InDelta(t, 420.1, got.Min, 1e-9)
	assert.InDelta(t, 422.9, got.Max, 1e-9)
	assert.Len(t, got.Series, 2)
}

func TestSnapshot_YAML(t *testing.T) {
	origin := fakeAPI(t, http.StatusOK)

	out, err := run(t, "snapshot", "--api-origin", origin, "-f", "yaml")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Hello from One Earth", got["hello"])
	assert.Contains(t, got, "series")
}

func TestSnapshot_FailsWhenLatestUnavailable(t *testing.T) {
	origin := fakeAPI(t, http.StatusServiceUnavailable)

	_, err := run(t, "snapshot", "--api-origin", origin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch report")
}

func TestSnapshot_RejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "snapshot", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestTheme_SetAndShow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	base := []string{
		"--config", filepath.Join(dir, "config.toml"),
		"--prefs", filepath.Join(dir, "prefs.toml"),
	}

	out, err := runIn(t, append(base, "theme")...)
	require.NoError(t, err)
	assert.Equal(t, "system (light)\n", out)

	out, err = runIn(t, append(base, "theme", "dark")...)
	require.NoError(t, err)
	assert.Equal(t, "dark (dark)\n", out)

	// A fresh process reads the saved preference back.
	out, err = runIn(t, append(base, "theme")...)
	require.NoError(t, err)
	assert.Equal(t, "dark (dark)\n", out)
}

func TestTheme_RejectsUnknownMode(t *testing.T) {
	_, err := run(t, "theme", "sepia")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2024-01-01", "https://one-earth.info")
	t.Cleanup(func() { SetVersionInfo("dev", "none", "unknown", "") })

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "oneearth v1.2.3")
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "site: https://one-earth.info")

	out, err = run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestFormatVersion(t *testing.T) {
	tests := map[string]string{
		"":       "",
		"dev":    "dev",
		"1.0.0":  "v1.0.0",
		"v2.1.0": "v2.1.0",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatVersion(in), "formatVersion(%q)", in)
	}
}

func TestTheme_NoPersist(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	prefsPath := filepath.Join(dir, "prefs.toml")

	out, err := runIn(t, "--config", filepath.Join(dir, "config.toml"), "--prefs", prefsPath, "--no-persist", "theme", "light")
	require.NoError(t, err)
	assert.Equal(t, "light (light)\n", out)
	assert.NoFileExists(t, prefsPath)
}
