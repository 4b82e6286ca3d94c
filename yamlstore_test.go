package nodeedit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indentlessYAML = `name: demo
deploy:
    # replicas and images
    replicas: 3
    images:
    - web
    - worker
    ratio: 0.5
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestDetectLayout(t *testing.T) {
	l := detectLayout([]byte(indentlessYAML))
	assert.Equal(t, 4, l.indent)
	assert.False(t, l.indentSeq)

	l = detectLayout([]byte("a:\n  b:\n    - x\n    - y\n"))
	assert.Equal(t, 2, l.indent)
	assert.True(t, l.indentSeq)

	l = detectLayout([]byte("a: 1\nb: 2\n"))
	assert.Equal(t, 2, l.indent)
	assert.True(t, l.indentSeq)
}

func TestEndsWithMappingKey(t *testing.T) {
	assert.True(t, endsWithMappingKey([]byte("  items:")))
	assert.True(t, endsWithMappingKey([]byte("items:   # list")))
	assert.False(t, endsWithMappingKey([]byte("items: [a]")))
	assert.False(t, endsWithMappingKey([]byte("- plain")))
}

func TestYAMLRepositoryReadsInOrder(t *testing.T) {
	repo := NewYAMLFileRepository(writeTemp(t, "app.yaml", indentlessYAML))
	text, err := repo.Read()
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"demo","deploy":{"replicas":3,"images":["web","worker"],"ratio":0.5}}`, text)
	assert.Less(t, strings.Index(text, `"replicas"`), strings.Index(text, `"images"`))
	assert.Less(t, strings.Index(text, `"images"`), strings.Index(text, `"ratio"`))
}

func TestYAMLRepositoryScalars(t *testing.T) {
	repo := NewYAMLFileRepository(writeTemp(t, "s.yml", "a: ~\nb: yes\nc: true\nd: 0x10\ne: 1e3\nf: \"007\"\ng: .inf\n"))
	text, err := repo.Read()
	require.NoError(t, err)
	// yes is a plain string in YAML 1.2; 0x10 has no JSON literal
	assert.JSONEq(t, `{"a":null,"b":"yes","c":true,"d":16,"e":1e3,"f":"007","g":".inf"}`, text)
}

func TestYAMLRepositoryWritePreservesLayout(t *testing.T) {
	path := writeTemp(t, "app.yaml", indentlessYAML)
	repo := NewYAMLFileRepository(path)
	s := selectAt(t, repo, P("deploy"))
	require.NoError(t, s.Edit())
	require.NoError(t, s.SetFieldText("replicas", "5"))
	_, err := s.Save()
	require.NoError(t, err)

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "    replicas: 5\n")
	assert.Contains(t, string(out), "    images:\n    - web\n")
	assert.NotContains(t, string(out), "\t")

	// a second read sees the saved value and the same layout
	text, err := repo.Read()
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"demo","deploy":{"replicas":5,"images":["web","worker"],"ratio":0.5}}`, text)
	assert.Equal(t, yamlLayout{indent: 4, indentSeq: false}, repo.layout)
}

func TestYAMLRepositoryMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.yaml")
	repo := NewYAMLFileRepository(path)
	text, err := repo.Read()
	require.NoError(t, err)
	assert.Equal(t, "", text)

	require.NoError(t, repo.Write(`{"b":1,"a":[true]}`))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b: 1\na:\n  - true\n", string(out))
}

func TestYAMLRepositoryErrors(t *testing.T) {
	repo := NewYAMLFileRepository(writeTemp(t, "bad.yaml", "a: [1, 2\n"))
	_, err := repo.Read()
	assert.Error(t, err)

	repo = NewYAMLFileRepository(writeTemp(t, "key.yaml", "? [a, b]\n: 1\n"))
	_, err = repo.Read()
	assert.ErrorContains(t, err, "not a scalar")

	err = NewYAMLFileRepository(filepath.Join(t.TempDir(), "x.yaml")).Write(`{"a":`)
	assert.ErrorIs(t, err, ErrParse)
}

func TestToYAMLValueWholeNumbers(t *testing.T) {
	assert.Equal(t, int64(3), toYAMLValue(float64(3)))
	assert.Equal(t, 2.5, toYAMLValue(2.5))
	assert.Equal(t, int64(7), toYAMLValue(mustDecode(t, `7`)))
	assert.Equal(t, 0.25, toYAMLValue(mustDecode(t, `0.25`)))
}
