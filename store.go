package nodeedit

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DocumentRepository holds the canonical text of the whole document.
type DocumentRepository interface {
	Read() (string, error)
	Write(text string) error
}

// Contents is what a text editor mirror is asked to show.
type Contents struct {
	Contents   string
	HasChanges bool
	SkipUpdate bool
}

// EditorMirror keeps a text view of the document in sync. Mirroring is best
// effort: a Session logs a SetContents error and carries on.
type EditorMirror interface {
	SetContents(Contents) error
}

// MirrorFunc adapts a function to EditorMirror.
type MirrorFunc func(Contents) error

// SetContents calls f(c).
func (f MirrorFunc) SetContents(c Contents) error { return f(c) }

// NodePublisher receives the node rebuilt after a commit.
type NodePublisher interface {
	SetSelectedNode(Node)
}

// PublisherFunc adapts a function to NodePublisher.
type PublisherFunc func(Node)

// SetSelectedNode calls f(n).
func (f PublisherFunc) SetSelectedNode(n Node) { f(n) }

// MemoryRepository keeps the document text in memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	text string
}

// NewMemoryRepository returns a repository holding text.
func NewMemoryRepository(text string) *MemoryRepository {
	return &MemoryRepository{text: text}
}

// Read returns the stored text.
func (r *MemoryRepository) Read() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.text, nil
}

// Write replaces the stored text.
func (r *MemoryRepository) Write(text string) error {
	r.mu.Lock()
	r.text = text
	r.mu.Unlock()
	return nil
}

// FileRepository stores JSON text in a file. A missing file reads as an
// empty document.
type FileRepository struct {
	mu   sync.RWMutex
	path string
}

// NewFileRepository returns a repository backed by the JSON file at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Path returns the file path.
func (r *FileRepository) Path() string { return r.path }

// Read returns the file contents, or "" when the file does not exist.
func (r *FileRepository) Read() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, err := readFileOrEmpty(r.path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Write replaces the file, adding a trailing newline.
func (r *FileRepository) Write(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data := []byte(text)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return writeFileAtomic(r.path, data)
}

func readFileOrEmpty(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("nodeedit: failed to read %s: %w", path, err)
	}
	return b, nil
}

// writeFileAtomic replaces path via a temp file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("nodeedit: failed to write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("nodeedit: failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("nodeedit: failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("nodeedit: failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("nodeedit: failed to write %s: %w", path, err)
	}
	return nil
}

// WriterMirror writes each mirrored document to W, followed by a newline.
type WriterMirror struct {
	W io.Writer
}

// SetContents writes c.Contents to W.
func (m WriterMirror) SetContents(c Contents) error {
	if m.W == nil {
		return errors.New("nodeedit: mirror has no writer")
	}
	_, err := io.WriteString(m.W, c.Contents+"\n")
	return err
}
