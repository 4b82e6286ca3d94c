package nodeedit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object that keeps keys in insertion order.
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an empty Object.
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// DefaultIndent is used when re-serializing documents.
const DefaultIndent = "  "

// Decode parses JSON text into a document value. Objects decode to *Object,
// arrays to []any and numbers to json.Number so their literal text survives.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool or nil
		return tok, nil
	}
	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, want string", kt)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

// Encode serializes v as JSON indented with indent. An empty indent gives
// compact output.
func Encode(v any, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("nodeedit: failed to encode document: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func isPlainObject(v any) bool {
	o, ok := v.(*Object)
	return ok && o != nil
}

// shallowMerge returns base's keys overridden by patch's keys. Keys new to
// base are appended in patch order.
func shallowMerge(base, patch *Object) *Object {
	out := NewObject()
	for p := base.Oldest(); p != nil; p = p.Next() {
		out.Set(p.Key, p.Value)
	}
	for p := patch.Oldest(); p != nil; p = p.Next() {
		out.Set(p.Key, p.Value)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil
		}
		out := NewObject()
		for p := t.Oldest(); p != nil; p = p.Next() {
			out.Set(p.Key, cloneValue(p.Value))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		return cloneValue(normalize(t))
	default:
		return v
	}
}

// normalize converts plain Go containers handed in by callers into the
// document representation. map keys are sorted since Go maps carry no order.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := NewObject()
		for _, k := range keys {
			out.Set(k, normalize(t[k]))
		}
		return out
	case []any:
		if t == nil {
			return []any{}
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case *Object:
		if t == nil {
			return nil
		}
		return t
	default:
		return v
	}
}
