package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ScoringSystemPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(ScoringFile, "system")
	require.NoError(t, err)
	assert.Contains(t, prompt, "JobFit Analyzer")
	assert.Contains(t, prompt, "{{.Alpha}}")
	assert.Contains(t, prompt, "Zero Trust")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "system")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(ScoringFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() { MustGet(ScoringFile, "missing") })
	assert.NotPanics(t, func() { MustGet(ScoringFile, "target-part") })
}

func TestRender(t *testing.T) {
	got, err := Render(ScoringFile, "target-part", map[string]string{"Target": "AI_ML"})
	require.NoError(t, err)
	assert.Equal(t, "Target Niche: AI_ML", got)

	_, err = Render(ScoringFile, "missing", nil)
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "a=1 b=2 {{.C}}", Format("a={{.A}} b={{.B}} {{.C}}", map[string]string{"A": "1", "B": "2"}))
	assert.Equal(t, "unchanged {{.A}}", Format("unchanged {{.A}}", nil))
	// values are not re-expanded
	assert.Equal(t, "{{.B}}", Format("{{.A}}", map[string]string{"A": "{{.B}}", "B": "x"}))
}

func TestList(t *testing.T) {
	keys, err := List(ScoringFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"offline-analysis", "profile-part", "system", "target-part"}, keys)
}
