package terms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	in := Terms{
		Highlight: []string{"ADPKD", "biomarker"},
		Inclusion: []Category{
			{Name: "population", Terms: []string{"adpkd"}, Weight: 2, Cap: 2},
		},
		Exclusion: []Category{
			{Name: "study type", Terms: []string{"review", "editorial"}, Weight: 2, Cap: 2},
		},
	}

	path := filepath.Join(t.TempDir(), "terms.yaml")
	require.NoError(t, Write(path, in))

	out, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inclusion: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDefaultVocabulary(t *testing.T) {
	d := Default()
	assert.NotEmpty(t, d.Highlight)
	assert.NotEmpty(t, d.Inclusion)
	assert.NotEmpty(t, d.Exclusion)
	for _, cat := range append(append([]Category{}, d.Inclusion...), d.Exclusion...) {
		assert.NotEmpty(t, cat.Terms, "category %s has no terms", cat.Name)
		assert.Greater(t, cat.Weight, 0.0, "category %s has no weight", cat.Name)
		assert.Greater(t, cat.Cap, 0.0, "category %s has no cap", cat.Name)
	}
}
