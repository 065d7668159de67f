package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/jobfit-analyzer/internal/pipeline"
	"github.com/jonathan/jobfit-analyzer/internal/schemas"
	"github.com/jonathan/jobfit-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileHTML = `<html><body>
<h1 class="text-heading-xlarge">Jane Doe</h1>
<div class="text-body-medium break-words">ML Engineer</div>
</body></html>`

// isolate points the CLI at a fresh store and clears backends from the environment.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"JOBFIT_REDIS_URL", "JOBFIT_DATABASE_URL", "DATABASE_URL",
		"JOBFIT_API_KEY", "GEMINI_API_KEY", "JOBFIT_USER_ID", "JOBFIT_TARGET_CATEGORY",
	} {
		t.Setenv(key, "")
	}
	storePath := filepath.Join(t.TempDir(), "store.json")
	t.Setenv("JOBFIT_STORE_PATH", storePath)
	return storePath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtract_HTMLFile(t *testing.T) {
	storePath := isolate(t)
	page := writeFile(t, "profile.html", profileHTML)

	out, err := run(t, "extract", "--html-file", page, "--url", "https://www.linkedin.com/in/jane")
	require.NoError(t, err)
	assert.Contains(t, out, "EXTRACTED PROFILE")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "ML Engineer")

	data, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), types.ProfileStorageKey)
	assert.Contains(t, string(data), "https://www.linkedin.com/in/jane")
}

func TestExtract_URL(t *testing.T) {
	isolate(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(profileHTML))
	}))
	defer ts.Close()

	out, err := run(t, "--json", "extract", "--url", ts.URL+"/in/jane")
	require.NoError(t, err)

	var profile types.ExtractedProfile
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.Equal(t, "Jane Doe", profile.FullName)
	assert.Equal(t, ts.URL+"/in/jane", profile.URL)
}

func TestExtract_FlagErrors(t *testing.T) {
	isolate(t)

	_, err := run(t, "extract")
	assert.ErrorContains(t, err, "must provide --html-file or --url")

	_, err = run(t, "extract", "--html-file", "x.html", "--browser")
	assert.ErrorContains(t, err, "cannot use --browser with --html-file")

	_, err = run(t, "extract", "--html-file", filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorContains(t, err, "failed to open HTML file")
}

func TestScore_Mock(t *testing.T) {
	isolate(t)
	page := writeFile(t, "profile.html", profileHTML)
	_, err := run(t, "extract", "--html-file", page)
	require.NoError(t, err)

	out, err := run(t, "score", "--mock", "--target", "cybersecurity")
	require.NoError(t, err)
	assert.Contains(t, out, "JOB FIT SCORE")
	assert.Contains(t, out, "Target:     Cybersecurity")
	assert.Contains(t, out, "Overall:    80.5")
}

func TestScore_ProfileFileJSON(t *testing.T) {
	isolate(t)
	profile := writeFile(t, "profile.json", `{
		"fullName": "Jane Doe", "currentRole": "ML Engineer", "about": "",
		"experience": [], "skills": ["Python", "PyTorch"],
		"hasFeaturedMedia": false, "url": "https://www.linkedin.com/in/jane"
	}`)

	out, err := run(t, "--json", "score", "--mock", "--profile-file", profile)
	require.NoError(t, err)

	var result scoreOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Jane Doe", result.Profile.FullName)
	assert.InDelta(t, 80.5, result.Result.OverallScore, 0.001)
	assert.Nil(t, result.Scan)
}

func TestScore_InvalidProfileFile(t *testing.T) {
	isolate(t)
	profile := writeFile(t, "profile.json", `{"fullName": "Jane Doe"}`)

	_, err := run(t, "score", "--mock", "--profile-file", profile)
	var ve *schemas.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestScore_Errors(t *testing.T) {
	isolate(t)

	_, err := run(t, "score", "--mock")
	assert.ErrorIs(t, err, pipeline.ErrNoProfile)

	_, err = run(t, "score", "--mock", "--target", "Quantum")
	assert.ErrorContains(t, err, "unknown target category")

	_, err = run(t, "score", "--mock", "--policy", "average")
	assert.Error(t, err)

	_, err = run(t, "score", "--mock", "--user-id", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid --user-id")

	_, err = run(t, "score", "--mock", "--save")
	assert.ErrorContains(t, err, "--save requires a database URL")

	page := writeFile(t, "profile.html", profileHTML)
	_, err = run(t, "extract", "--html-file", page)
	require.NoError(t, err)
	_, err = run(t, "score")
	assert.ErrorContains(t, err, "API key is required")
}

func TestHistory_RequiresUser(t *testing.T) {
	isolate(t)

	_, err := run(t, "history")
	assert.ErrorIs(t, err, pipeline.ErrNotSignedIn)

	_, err = run(t, "history", "--user-id", "5f0c6a4e-8d6b-4c1f-9a53-0d3c7a3e2b11")
	assert.ErrorContains(t, err, "database URL is required")

	_, err = run(t, "history", "--limit", "0")
	assert.ErrorContains(t, err, "--limit must be positive")
}

func TestWatch_RejectsNonProfileURL(t *testing.T) {
	isolate(t)

	_, err := run(t, "watch", "--url", "https://example.com/jobs/1")
	assert.ErrorContains(t, err, "not a profile page")
}

func TestConfigFileIsValidated(t *testing.T) {
	isolate(t)
	cfg := writeFile(t, "config.yaml", "target_category: Astrology\n")

	_, err := run(t, "--config", cfg, "score", "--mock")
	assert.ErrorContains(t, err, "config error")
}

func TestNewServer_WithoutDatabase(t *testing.T) {
	isolate(t)
	a := &app{out: &bytes.Buffer{}}
	require.NoError(t, a.init())

	srv, cleanup, err := a.newServer(t.Context(), 0, true)
	require.NoError(t, err)
	defer cleanup()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scans", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNewServer_RequiresAPIKeyWithoutMock(t *testing.T) {
	isolate(t)
	a := &app{out: &bytes.Buffer{}}
	require.NoError(t, a.init())

	_, _, err := a.newServer(t.Context(), 0, false)
	assert.ErrorContains(t, err, "API key is required")
}
