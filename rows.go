package nodeedit

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RowType is the declared type of a row.
type RowType string

const (
	TypeString  RowType = "string"
	TypeNumber  RowType = "number"
	TypeBoolean RowType = "boolean"
	TypeNull    RowType = "null"
	TypeArray   RowType = "array"
	TypeObject  RowType = "object"
)

// Valid reports whether t is one of the known row types.
func (t RowType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeNull, TypeArray, TypeObject:
		return true
	}
	return false
}

// Composite reports whether rows of type t are placeholders for nested
// containers rather than editable values.
func (t RowType) Composite() bool {
	return t == TypeArray || t == TypeObject
}

func (t *RowType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("nodeedit: row type: %w", err)
	}
	if !RowType(s).Valid() {
		return fmt.Errorf("nodeedit: unknown row type %q", s)
	}
	*t = RowType(s)
	return nil
}

// TypeOf infers the row type of a document value.
func TypeOf(v any) RowType {
	switch t := v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeNumber
	case string:
		return TypeString
	case []any:
		return TypeArray
	case *Object:
		if t == nil {
			return TypeNull
		}
		return TypeObject
	case map[string]any:
		return TypeObject
	}
	return TypeString
}

// Row is one field of a selected node. An empty Key marks the single row of
// an unkeyed root scalar.
type Row struct {
	Key   string
	Value any
	Type  RowType
}

// Keyed reports whether the row has a key.
func (r Row) Keyed() bool { return r.Key != "" }

type rowJSON struct {
	Key   *string         `json:"key"`
	Value json.RawMessage `json:"value,omitempty"`
	Type  RowType         `json:"type"`
}

func (r Row) MarshalJSON() ([]byte, error) {
	out := rowJSON{Type: r.Type}
	if r.Keyed() {
		k := r.Key
		out.Key = &k
	}
	v, err := Encode(normalize(r.Value), "")
	if err != nil {
		return nil, err
	}
	out.Value = json.RawMessage(v)
	return json.Marshal(out)
}

func (r *Row) UnmarshalJSON(data []byte) error {
	var in rowJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Type == "" {
		return fmt.Errorf("nodeedit: row is missing its type")
	}
	*r = Row{Type: in.Type}
	if in.Key != nil {
		r.Key = *in.Key
	}
	if len(in.Value) > 0 {
		v, err := Decode(in.Value)
		if err != nil {
			return fmt.Errorf("nodeedit: row %q value: %w", r.Key, err)
		}
		r.Value = v
	}
	return nil
}

// Node is the selected subtree: its path and its rows.
type Node struct {
	Path Path  `json:"path"`
	Text []Row `json:"text"`
}

// PrimitiveRows returns the rows that are not array or object placeholders.
func PrimitiveRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !r.Type.Composite() {
			out = append(out, r)
		}
	}
	return out
}

// DeriveDisplay renders rows for read-only display. A single unkeyed row
// renders as its bare value; otherwise keyed primitive rows render as an
// indented object.
func DeriveDisplay(rows []Row) string {
	if len(rows) == 0 {
		return "{}"
	}
	if len(rows) == 1 && !rows[0].Keyed() {
		return scalarText(rows[0].Value)
	}
	obj := NewObject()
	for _, r := range rows {
		if r.Type.Composite() || !r.Keyed() {
			continue
		}
		obj.Set(r.Key, normalize(r.Value))
	}
	s, err := Encode(obj, DefaultIndent)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return s
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	s, err := Encode(normalize(v), "")
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// RowsFromValue builds the rows of a node whose value is v: one row per
// array element or object entry, or a single unkeyed row for a scalar.
// Nested containers become placeholder rows without a value.
func RowsFromValue(v any) []Row {
	switch t := normalize(v).(type) {
	case []any:
		rows := make([]Row, 0, len(t))
		for i, e := range t {
			rows = append(rows, rowFor(strconv.Itoa(i), e))
		}
		return rows
	case *Object:
		rows := make([]Row, 0, t.Len())
		for p := t.Oldest(); p != nil; p = p.Next() {
			rows = append(rows, rowFor(p.Key, p.Value))
		}
		return rows
	default:
		return []Row{rowFor("", t)}
	}
}

func rowFor(key string, v any) Row {
	typ := TypeOf(v)
	if typ.Composite() {
		return Row{Key: key, Type: typ}
	}
	return Row{Key: key, Value: v, Type: typ}
}
