package nodeedit

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository(`{}`)
	text, err := repo.Read()
	require.NoError(t, err)
	assert.Equal(t, `{}`, text)
	require.NoError(t, repo.Write(`[]`))
	text, _ = repo.Read()
	assert.Equal(t, `[]`, text)
}

func TestFileRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	repo := NewFileRepository(path)
	assert.Equal(t, path, repo.Path())

	text, err := repo.Read()
	require.NoError(t, err)
	assert.Equal(t, "", text, "a missing file is an empty document")

	require.NoError(t, repo.Write(`{"a":1}`))
	d, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", string(d))

	text, err = repo.Read()
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", text)
}

func TestFileRepositoryKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))
	require.NoError(t, NewFileRepository(path).Write("{\"b\":2}\n"))

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileRepositorySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(customerDoc+"\n"), 0o644))
	repo := NewFileRepository(path)
	s := selectAt(t, repo, P("customer"))
	require.NoError(t, s.Edit())
	require.NoError(t, s.SetFieldText("name", "Grace"))
	_, err := s.Save()
	require.NoError(t, err)

	d, err := os.ReadFile(path)
	require.NoError(t, err)
	adds, removes := diffStats(unifiedDiff(customerDoc+"\n", string(d)))
	assert.Equal(t, 1, adds)
	assert.Equal(t, 1, removes)
}

func TestWriterMirror(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriterMirror{W: &buf}.SetContents(Contents{Contents: `{"a":1}`}))
	assert.Equal(t, "{\"a\":1}\n", buf.String())
	assert.Error(t, WriterMirror{}.SetContents(Contents{}))
}
