package nodeedit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"

	gyaml "github.com/goccy/go-yaml"
	"gopkg.in/yaml.v3"
)

// YAMLFileRepository stores the document as YAML while handing JSON text to
// sessions. Key order survives the round trip, and writes reuse the indent
// and sequence style detected in the file.
type YAMLFileRepository struct {
	mu     sync.RWMutex
	path   string
	layout yamlLayout
}

type yamlLayout struct {
	indent    int  // base indent, 2 or 4 spaces typically
	indentSeq bool // whether sequences under a key are indented
}

// NewYAMLFileRepository returns a repository backed by the YAML file at path.
func NewYAMLFileRepository(path string) *YAMLFileRepository {
	return &YAMLFileRepository{path: path, layout: yamlLayout{indent: 2, indentSeq: true}}
}

// Path returns the file path.
func (r *YAMLFileRepository) Path() string { return r.path }

// Read returns the YAML file as indented JSON and records its layout.
func (r *YAMLFileRepository) Read() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := readFileOrEmpty(r.path)
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", nil
	}
	v, err := parseYAML(data)
	if err != nil {
		return "", fmt.Errorf("nodeedit: %s: %w", r.path, err)
	}
	r.layout = detectLayout(data)
	return Encode(v, DefaultIndent)
}

// Write converts JSON text to YAML in the recorded layout and replaces the file.
func (r *YAMLFileRepository) Write(text string) error {
	v, err := Decode([]byte(text))
	if err != nil {
		return &ParseError{Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := marshalYAML(v, r.layout)
	if err != nil {
		return fmt.Errorf("nodeedit: %s: %w", r.path, err)
	}
	return writeFileAtomic(r.path, out)
}

func parseYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return fromYAML(&doc)
}

func fromYAML(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		return fromYAML(n.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key is not a scalar", k.Line)
			}
			val, err := fromYAML(v)
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}

func yamlScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int", "!!float":
		if json.Valid([]byte(n.Value)) {
			return json.Number(n.Value), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			// no JSON form; keep the text
			return n.Value, nil
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return json.Number(strconv.FormatInt(int64(f), 10)), nil
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	}
	return n.Value, nil
}

func marshalYAML(v any, layout yamlLayout) ([]byte, error) {
	var buf bytes.Buffer
	enc := gyaml.NewEncoder(&buf, gyaml.Indent(layout.indent), gyaml.IndentSequence(layout.indentSeq))
	if err := enc.Encode(toYAMLValue(v)); err != nil {
		_ = enc.Close()
		return nil, err
	}
	_ = enc.Close()
	return buf.Bytes(), nil
}

// toYAMLValue converts a document value to what goccy/go-yaml encodes in
// order: objects become MapSlices, numbers become ints where they are whole.
func toYAMLValue(v any) any {
	switch t := v.(type) {
	case *Object:
		ms := make(gyaml.MapSlice, 0, t.Len())
		for p := t.Oldest(); p != nil; p = p.Next() {
			ms = append(ms, gyaml.MapItem{Key: p.Key, Value: toYAMLValue(p.Value)})
		}
		return ms
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toYAMLValue(e)
		}
		return out
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	return v
}

// detectLayout returns the base indent, and whether sequences that are values
// of mapping keys are indented one level (true) or "indentless" (false).
func detectLayout(b []byte) yamlLayout {
	lines := bytes.Split(b, []byte("\n"))
	layout := yamlLayout{indent: detectIndent(lines), indentSeq: true}

	votes := 0 // >0 prefer indented seq, <0 prefer indentless
	for i, ln := range lines {
		if isBlankOrComment(ln) || !endsWithMappingKey(ln) {
			continue
		}
		keyIndent := leadingSpaces(ln)
		next := nextContentLine(lines, i+1)
		if next == nil {
			continue
		}
		if t := bytes.TrimLeft(next, " "); len(t) == 0 || t[0] != '-' {
			continue
		}
		switch leadingSpaces(next) {
		case keyIndent + layout.indent:
			votes++
		case keyIndent:
			votes--
		}
	}
	// no evidence either way keeps indented sequences
	if votes < 0 {
		layout.indentSeq = false
	}
	return layout
}

func nextContentLine(lines [][]byte, from int) []byte {
	for j := from; j < len(lines); j++ {
		if !isBlankOrComment(lines[j]) {
			return lines[j]
		}
	}
	return nil
}

func isBlankOrComment(ln []byte) bool {
	t := bytes.TrimSpace(ln)
	return len(t) == 0 || t[0] == '#'
}

// endsWithMappingKey matches the block form "key:" with an optional comment.
func endsWithMappingKey(ln []byte) bool {
	idx := bytes.IndexByte(ln, ':')
	if idx < 0 {
		return false
	}
	rest := bytes.TrimSpace(ln[idx+1:])
	return len(rest) == 0 || rest[0] == '#'
}

// detectIndent is the GCD of all non-zero indents, 2 when there are none.
func detectIndent(lines [][]byte) int {
	result := 0
	for _, ln := range lines {
		if isBlankOrComment(ln) {
			continue
		}
		if n := leadingSpaces(ln); n > 0 {
			result = gcd(result, n)
		}
	}
	if result > 0 && result <= 8 {
		return result
	}
	return 2
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func leadingSpaces(line []byte) int {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}
