package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pydash/internal/scanner"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	data := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Empty(t, data.Projects)
	assert.Len(t, data.Snippets, 2)
	assert.Empty(t, data.Sessions)
	for _, s := range data.Snippets {
		assert.NotEmpty(t, s.ID)
		assert.NotEmpty(t, s.Title)
	}
}

func TestLoad_FillsMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	// Document with only a projects key: snippets and sessions are filled.
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"projects":[{"name":"p","path":"/p","type":"folder"}]}`), 0o644))

	data := Load(path)
	require.Len(t, data.Projects, 1)
	assert.Equal(t, "p", data.Projects[0].Name)
	assert.Len(t, data.Snippets, 2)
	assert.NotNil(t, data.Sessions)
}

func TestLoad_EmptyKeysAreRespected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"projects":[],"snippets":[],"sessions":[]}`), 0o644))

	data := Load(path)
	// An explicitly empty snippets list must not be reseeded.
	assert.Empty(t, data.Snippets)
}

func TestLoad_MalformedFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	data := Load(path)
	assert.Len(t, data.Snippets, 2)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.json")

	data := Default()
	data.Projects = []scanner.Project{{Name: "proj", Path: "/x/proj", Type: scanner.KindFolder, Favorite: true}}
	require.NoError(t, Save(path, data))

	loaded := Load(path)
	require.Len(t, loaded.Projects, 1)
	assert.True(t, loaded.Projects[0].Favorite)
	assert.Equal(t, data.Snippets[0].ID, loaded.Snippets[0].ID)
}
