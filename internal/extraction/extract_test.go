package extraction

import (
	"os"
	"testing"

	"github.com/jonathan/jobfit-analyzer/internal/dom"
	"github.com/jonathan/jobfit-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const profileURL = "https://www.linkedin.com/in/jane-doe/"

func loadSnapshot(t *testing.T, path string) dom.Snapshot {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	snap, err := dom.FromReader(f, profileURL)
	require.NoError(t, err)
	return snap
}

func snapshotOf(t *testing.T, html string) dom.Snapshot {
	t.Helper()
	snap, err := dom.FromHTML(html, profileURL)
	require.NoError(t, err)
	return snap
}

func TestExtract_FullProfile(t *testing.T) {
	e := New(DefaultSelectors(), nil)

	p := e.Extract(loadSnapshot(t, "testdata/profile.html"))

	assert.Equal(t, "Jane Doe", p.FullName)
	assert.Equal(t, "ML Engineer", p.CurrentRole)
	assert.Equal(t, "I build production machine learning systems.", p.About)
	assert.True(t, p.HasFeaturedMedia)
	assert.Equal(t, profileURL, p.URL)

	assert.Equal(t, []types.Experience{
		{Title: "Senior ML Engineer", Company: "Acme Corp", Duration: "2021 - Present"},
		{Title: "Data Scientist", Company: "Globex", Duration: ""},
	}, p.Experience)

	assert.Equal(t, []string{"Python", "PyTorch", "MLOps", "Kubernetes", "Statistics", "LLM Fine-tuning"}, p.Skills)
	for _, s := range p.Skills {
		assert.LessOrEqual(t, len([]rune(s)), 100)
	}
}

func TestExtract_EmptySnapshotDefaults(t *testing.T) {
	e := New(DefaultSelectors(), nil)

	p := e.Extract(dom.Empty(profileURL))

	assert.Equal(t, "", p.FullName)
	assert.Equal(t, "", p.CurrentRole)
	assert.Equal(t, "", p.About)
	assert.NotNil(t, p.Experience)
	assert.Empty(t, p.Experience)
	assert.NotNil(t, p.Skills)
	assert.Empty(t, p.Skills)
	assert.False(t, p.HasFeaturedMedia)
	assert.Equal(t, profileURL, p.URL)
}

func TestExtract_NameFallback(t *testing.T) {
	e := New(DefaultSelectors(), nil)

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "h1 preferred",
			html: `<div class="text-heading-xlarge">Div Name</div><h1 class="text-heading-xlarge">H1 Name</h1>`,
			want: "H1 Name",
		},
		{
			name: "class-only fallback",
			html: `<div class="text-heading-xlarge"> Fallback Name </div>`,
			want: "Fallback Name",
		},
		{
			name: "absent",
			html: `<h1>Plain heading</h1>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := e.Extract(snapshotOf(t, tt.html))
			assert.Equal(t, tt.want, p.FullName)
		})
	}
}

func TestExtract_SectionsWithoutAnchors(t *testing.T) {
	e := New(DefaultSelectors(), nil)

	// list items outside an anchored section are ignored
	html := `<ul><li class="pvs-list__paged-list-item"><div class="t-bold"><span aria-hidden="true">Orphan</span></div></li></ul>
	<div class="display-flex ph5 pv3">Orphan about</div>`

	p := e.Extract(snapshotOf(t, html))

	assert.Empty(t, p.Experience)
	assert.Empty(t, p.Skills)
	assert.Equal(t, "", p.About)
}

func TestExtract_CustomSelectors(t *testing.T) {
	sel := DefaultSelectors()
	sel.Name = []string{".profile-name"}
	sel.FeaturedMedia = ".featured"
	e := New(sel, nil)

	p := e.Extract(snapshotOf(t, `<span class="profile-name">Custom</span><div class="featured"></div>`))

	assert.Equal(t, "Custom", p.FullName)
	assert.True(t, p.HasFeaturedMedia)
}

func TestExtract_LogsSummary(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	e := New(DefaultSelectors(), zap.New(core))

	e.Extract(loadSnapshot(t, "testdata/profile.html"))

	entries := observed.FilterMessage("profile extracted").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(2), fields["experience_count"])
	assert.Equal(t, int64(6), fields["skill_count"])
	assert.Equal(t, profileURL, fields["profile_url"])
}
