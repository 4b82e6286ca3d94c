package nodeedit

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// RootField is the field key of a node that is a single unkeyed scalar.
const RootField = "__root"

// MaxDenseIndex bounds the arrays Reconstruct and SetAtPath will allocate.
const MaxDenseIndex = 1 << 20

type fieldKind uint8

const (
	textField fieldKind = iota
	numberField
	boolField
)

// FieldValue is the raw input of one field, as produced by a text box, a
// number box or a checkbox.
type FieldValue struct {
	kind fieldKind
	text string
	num  float64
	b    bool
}

// TextValue is input from a text box.
func TextValue(s string) FieldValue { return FieldValue{kind: textField, text: s} }

// NumberValue is input from a number box.
func NumberValue(f float64) FieldValue { return FieldValue{kind: numberField, num: f} }

// BoolValue is input from a checkbox.
func BoolValue(b bool) FieldValue { return FieldValue{kind: boolField, b: b} }

// AsText returns the text input; ok is false for other variants.
func (f FieldValue) AsText() (string, bool) { return f.text, f.kind == textField }

// AsNumber returns the number input; ok is false for other variants.
func (f FieldValue) AsNumber() (float64, bool) { return f.num, f.kind == numberField }

// AsBool returns the checkbox input; ok is false for other variants.
func (f FieldValue) AsBool() (bool, bool) { return f.b, f.kind == boolField }

// String renders the raw input the way a text box would show it.
func (f FieldValue) String() string {
	switch f.kind {
	case numberField:
		return strconv.FormatFloat(f.num, 'f', -1, 64)
	case boolField:
		return strconv.FormatBool(f.b)
	}
	return f.text
}

func (f FieldValue) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case numberField:
		if math.IsNaN(f.num) || math.IsInf(f.num, 0) {
			return json.Marshal(f.String())
		}
		return json.Marshal(f.num)
	case boolField:
		return json.Marshal(f.b)
	}
	return json.Marshal(f.text)
}

// FieldMap holds the raw input of every editable field, keyed by row key or
// RootField.
type FieldMap map[string]FieldValue

// Clone returns a copy of m.
func (m FieldMap) Clone() FieldMap {
	out := make(FieldMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func isRootScalar(prims []Row) bool {
	return len(prims) == 1 && !prims[0].Keyed()
}

// EditableKeys returns the field keys of rows in row order.
func EditableKeys(rows []Row) []string {
	prims := PrimitiveRows(rows)
	if isRootScalar(prims) {
		return []string{RootField}
	}
	keys := make([]string, 0, len(prims))
	for _, r := range prims {
		if r.Keyed() {
			keys = append(keys, r.Key)
		}
	}
	return keys
}

// DeriveEditable seeds the field map for rows. Array and object rows are
// never exposed as fields.
func DeriveEditable(rows []Row) FieldMap {
	prims := PrimitiveRows(rows)
	if isRootScalar(prims) {
		return FieldMap{RootField: seedField(prims[0])}
	}
	fm := make(FieldMap, len(prims))
	for _, r := range prims {
		if r.Keyed() {
			fm[r.Key] = seedField(r)
		}
	}
	return fm
}

func seedField(r Row) FieldValue {
	switch r.Type {
	case TypeNumber:
		switch v := r.Value.(type) {
		case nil:
			return TextValue("")
		case string:
			return TextValue(v)
		case json.Number:
			// keep the literal so untouched numbers are written back as read
			return TextValue(v.String())
		}
		if f, ok := toFloat(r.Value); ok {
			return NumberValue(f)
		}
		return TextValue(scalarText(r.Value))
	case TypeBoolean:
		return BoolValue(truthy(r.Value))
	case TypeString:
		if r.Value == nil {
			return TextValue("")
		}
		if s, ok := r.Value.(string); ok {
			return TextValue(s)
		}
		return TextValue(scalarText(r.Value))
	case TypeNull:
		return TextValue("")
	case TypeArray, TypeObject:
		return TextValue("")
	}
	return TextValue("")
}

// FieldFromText converts text typed into a plain text box into the variant
// a field of type t expects.
func FieldFromText(key string, t RowType, raw string) (FieldValue, error) {
	switch t {
	case TypeBoolean:
		if strings.TrimSpace(raw) == "" {
			return BoolValue(false), nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return FieldValue{}, &CoercionError{Key: key, Type: t, Raw: raw, Reason: "not a boolean"}
		}
		return BoolValue(b), nil
	case TypeNumber, TypeString, TypeNull:
		return TextValue(raw), nil
	case TypeArray, TypeObject:
		return FieldValue{}, &CoercionError{Key: key, Type: t, Raw: raw, Reason: "containers are not editable"}
	}
	return FieldValue{}, &CoercionError{Key: key, Type: t, Raw: raw, Reason: "unknown type"}
}

// NumberPolicy decides what happens to number input that does not parse.
type NumberPolicy string

const (
	// NumberStrict rejects the commit with a CoercionError.
	NumberStrict NumberPolicy = "strict"
	// NumberNull stores null instead.
	NumberNull NumberPolicy = "null"
)

// Reconstruct rebuilds the typed value of a node from its rows and field
// input: a scalar for a single unkeyed row, an array when every key is a
// decimal index, and an object otherwise.
func Reconstruct(rows []Row, fields FieldMap) (any, error) {
	return ReconstructWithPolicy(rows, fields, NumberStrict)
}

// ReconstructWithPolicy is Reconstruct with an explicit NumberPolicy.
func ReconstructWithPolicy(rows []Row, fields FieldMap, policy NumberPolicy) (any, error) {
	prims := PrimitiveRows(rows)
	if isRootScalar(prims) {
		fv, ok := fields[RootField]
		return coerce(prims[0], RootField, fv, ok, policy)
	}

	keyed := make([]Row, 0, len(prims))
	for _, r := range prims {
		if r.Keyed() {
			keyed = append(keyed, r)
		}
	}

	if allIndexKeys(keyed) {
		maxIdx := 0
		idx := make([]int, len(keyed))
		for i, r := range keyed {
			n, err := strconv.Atoi(r.Key)
			if err != nil || n > MaxDenseIndex {
				return nil, &CoercionError{Key: r.Key, Type: r.Type, Raw: r.Key, Reason: "array index out of range"}
			}
			idx[i] = n
			maxIdx = max(maxIdx, n)
		}
		arr := make([]any, maxIdx+1)
		for i, r := range keyed {
			fv, ok := fields[r.Key]
			v, err := coerce(r, r.Key, fv, ok, policy)
			if err != nil {
				return nil, err
			}
			arr[idx[i]] = v
		}
		return arr, nil
	}

	obj := NewObject()
	for _, r := range keyed {
		fv, ok := fields[r.Key]
		v, err := coerce(r, r.Key, fv, ok, policy)
		if err != nil {
			return nil, err
		}
		obj.Set(r.Key, v)
	}
	return obj, nil
}

func allIndexKeys(rows []Row) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		for i := 0; i < len(r.Key); i++ {
			if r.Key[i] < '0' || r.Key[i] > '9' {
				return false
			}
		}
	}
	return true
}

func coerce(r Row, key string, fv FieldValue, present bool, policy NumberPolicy) (any, error) {
	switch r.Type {
	case TypeNumber:
		if !present {
			return nil, nil
		}
		return coerceNumber(r, key, fv, policy)
	case TypeBoolean:
		if !present {
			return false, nil
		}
		switch fv.kind {
		case boolField:
			return fv.b, nil
		case numberField:
			return fv.num != 0 && !math.IsNaN(fv.num), nil
		}
		return fv.text != "", nil
	case TypeNull:
		return nil, nil
	case TypeString:
		if !present {
			return nil, nil
		}
		return fv.String(), nil
	case TypeArray, TypeObject:
		return nil, &CoercionError{Key: key, Type: r.Type, Raw: fv.String(), Reason: "containers are not editable"}
	}
	return nil, &CoercionError{Key: key, Type: r.Type, Raw: fv.String(), Reason: "unknown type"}
}

func coerceNumber(r Row, key string, fv FieldValue, policy NumberPolicy) (any, error) {
	var f float64
	switch fv.kind {
	case numberField:
		f = fv.num
	case boolField:
		if fv.b {
			return float64(1), nil
		}
		return float64(0), nil
	default:
		s := strings.TrimSpace(fv.text)
		if s == "" {
			return nil, nil
		}
		var err error
		f, err = strconv.ParseFloat(s, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return rejectNumber(r, key, fv, policy, "not a finite number")
			}
			return rejectNumber(r, key, fv, policy, "not a number")
		}
		if isJSONNumber(s) {
			return json.Number(s), nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return rejectNumber(r, key, fv, policy, "not a finite number")
	}
	return f, nil
}

// isJSONNumber reports whether s is a number literal in JSON syntax.
func isJSONNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

func rejectNumber(r Row, key string, fv FieldValue, policy NumberPolicy, reason string) (any, error) {
	if policy == NumberNull {
		return nil, nil
	}
	return nil, &CoercionError{Key: key, Type: r.Type, Raw: fv.String(), Reason: reason}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	}
	if f, ok := toFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint64:
		return float64(t), true
	case uint32:
		return float64(t), true
	}
	return 0, false
}

// describe is used in log attributes.
func describe(fields FieldMap) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, fields[k]))
	}
	return strings.Join(parts, ",")
}
