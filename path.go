package nodeedit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: an array index or an object key.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// KeySegment returns an object key segment.
func KeySegment(k string) Segment { return Segment{key: k} }

// IndexSegment returns an array index segment. i must not be negative.
func IndexSegment(i int) Segment { return Segment{index: i, isIndex: true} }

// IsIndex reports whether s addresses an array element.
func (s Segment) IsIndex() bool { return s.isIndex }

// Key returns the object key, or the decimal form of the index.
func (s Segment) Key() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Index returns the array index; ok is false for key segments.
func (s Segment) Index() (int, bool) {
	return s.index, s.isIndex
}

func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return quoteKey(s.key)
}

// Path locates a subtree of a document. The empty path is the root.
type Path []Segment

// P builds a Path from ints (indices) and strings (keys).
// It panics on any other element type or a negative index.
func P(segs ...any) Path {
	p := make(Path, 0, len(segs))
	for _, s := range segs {
		switch v := s.(type) {
		case int:
			if v < 0 {
				panic(fmt.Sprintf("nodeedit: negative index %d", v))
			}
			p = append(p, IndexSegment(v))
		case string:
			p = append(p, KeySegment(v))
		default:
			panic(fmt.Sprintf("nodeedit: invalid path segment %T", s))
		}
	}
	return p
}

// String renders the path as $["key"][0]...; the root renders as "$".
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var sb strings.Builder
	sb.WriteByte('$')
	for _, s := range p {
		sb.WriteByte('[')
		sb.WriteString(s.String())
		sb.WriteByte(']')
	}
	return sb.String()
}

// Pointer renders the path as an RFC 6901 JSON pointer.
func (p Path) Pointer() string {
	var sb strings.Builder
	for _, s := range p {
		sb.WriteByte('/')
		k := strings.ReplaceAll(s.Key(), "~", "~0")
		sb.WriteString(strings.ReplaceAll(k, "/", "~1"))
	}
	return sb.String()
}

// MarshalJSON encodes the path as an array of numbers and strings.
func (p Path) MarshalJSON() ([]byte, error) {
	segs := make([]any, len(p))
	for i, s := range p {
		if idx, ok := s.Index(); ok {
			segs[i] = idx
		} else {
			segs[i] = s.key
		}
	}
	return json.Marshal(segs)
}

// UnmarshalJSON decodes an array of non-negative integers and strings.
func (p *Path) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPath, err)
	}
	out := make(Path, 0, len(raw))
	for _, r := range raw {
		seg, err := segmentFromJSON(r)
		if err != nil {
			return err
		}
		out = append(out, seg)
	}
	*p = out
	return nil
}

func segmentFromJSON(r json.RawMessage) (Segment, error) {
	var k string
	if err := json.Unmarshal(r, &k); err == nil {
		return KeySegment(k), nil
	}
	i, err := strconv.Atoi(string(bytes.TrimSpace(r)))
	if err != nil || i < 0 {
		return Segment{}, fmt.Errorf("%w: segment %s is neither a key nor an index", ErrBadPath, r)
	}
	return IndexSegment(i), nil
}

// ParsePath accepts the rendered form ($["a"][0]) or a JSON array (["a",0]).
// "" and "$" denote the root.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "$":
		return Path{}, nil
	case s[0] == '[':
		var p Path
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, err
		}
		if p == nil {
			p = Path{}
		}
		return p, nil
	case s[0] != '$':
		return nil, fmt.Errorf("%w: %q must start with $ or [", ErrBadPath, s)
	}
	var p Path
	rest := s[1:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return nil, fmt.Errorf("%w: expected [ at %q", ErrBadPath, rest)
		}
		rest = rest[1:]
		if len(rest) > 0 && rest[0] == '"' {
			k, n, err := scanQuoted(rest)
			if err != nil {
				return nil, err
			}
			rest = rest[n:]
			p = append(p, KeySegment(k))
		} else {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated segment in %q", ErrBadPath, s)
			}
			i, err := strconv.Atoi(rest[:end])
			if err != nil || i < 0 {
				return nil, fmt.Errorf("%w: bad index %q", ErrBadPath, rest[:end])
			}
			rest = rest[end:]
			p = append(p, IndexSegment(i))
		}
		if len(rest) == 0 || rest[0] != ']' {
			return nil, fmt.Errorf("%w: unterminated segment in %q", ErrBadPath, s)
		}
		rest = rest[1:]
	}
	return p, nil
}

// scanQuoted reads a JSON string literal at the start of s and returns its
// value and byte length.
func scanQuoted(s string) (string, int, error) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			var k string
			if err := json.Unmarshal([]byte(s[:i+1]), &k); err != nil {
				return "", 0, fmt.Errorf("%w: %v", ErrBadPath, err)
			}
			return k, i + 1, nil
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated key in %q", ErrBadPath, s)
}

func quoteKey(k string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(k)
	return strings.TrimSuffix(buf.String(), "\n")
}
