package nodeedit

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerRows() []Row {
	return []Row{
		{Key: "name", Value: "Ada", Type: TypeString},
		{Key: "age", Value: json.Number("36"), Type: TypeNumber},
		{Key: "vip", Value: true, Type: TypeBoolean},
		{Key: "note", Type: TypeNull},
		{Key: "tags", Type: TypeArray},
	}
}

func TestDeriveEditableSkipsContainers(t *testing.T) {
	fm := DeriveEditable(customerRows())
	assert.Equal(t, FieldMap{
		"name": TextValue("Ada"),
		"age":  TextValue("36"),
		"vip":  BoolValue(true),
		"note": TextValue(""),
	}, fm)
	assert.Equal(t, []string{"name", "age", "vip", "note"}, EditableKeys(customerRows()))
}

func TestDeriveEditableRootScalar(t *testing.T) {
	rows := []Row{{Value: json.Number("42"), Type: TypeNumber}}
	assert.Equal(t, FieldMap{RootField: TextValue("42")}, DeriveEditable(rows))
	assert.Equal(t, []string{RootField}, EditableKeys(rows))
}

func TestReconstructIsIdempotent(t *testing.T) {
	for _, src := range []string{
		`{"name":"Ada","age":36,"vip":true,"note":null}`,
		`["a",2,false,null]`,
		`"just text"`,
		`12.5`,
		`true`,
		`null`,
	} {
		v := mustDecode(t, src)
		rows := RowsFromValue(v)
		got, err := Reconstruct(rows, DeriveEditable(rows))
		require.NoError(t, err, src)
		assert.Equal(t, src, compact(t, got))
	}
}

func TestReconstructDropsContainerRows(t *testing.T) {
	got, err := Reconstruct(customerRows(), DeriveEditable(customerRows()))
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Ada","age":36,"vip":true,"note":null}`, compact(t, got))
}

func TestReconstructShape(t *testing.T) {
	str := func(keys ...string) []Row {
		rows := make([]Row, len(keys))
		for i, k := range keys {
			rows[i] = Row{Key: k, Value: k, Type: TypeString}
		}
		return rows
	}
	fields := func(rows []Row) FieldMap { return DeriveEditable(rows) }

	rows := str("0", "1", "2")
	got, err := Reconstruct(rows, fields(rows))
	require.NoError(t, err)
	assert.Equal(t, `["0","1","2"]`, compact(t, got))

	rows = str("0", "x")
	got, err = Reconstruct(rows, fields(rows))
	require.NoError(t, err)
	assert.Equal(t, `{"0":"0","x":"x"}`, compact(t, got))

	rows = str("2", "0")
	got, err = Reconstruct(rows, fields(rows))
	require.NoError(t, err)
	assert.Equal(t, `["0",null,"2"]`, compact(t, got))

	rows = str(strconv.Itoa(MaxDenseIndex + 1))
	_, err = Reconstruct(rows, fields(rows))
	assert.True(t, errors.Is(err, ErrCoercion))
}

func TestReconstructEmptyRows(t *testing.T) {
	got, err := Reconstruct(nil, FieldMap{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, compact(t, got))
}

func TestCoerceNumber(t *testing.T) {
	rows := []Row{{Key: "n", Type: TypeNumber}}
	tests := []struct {
		name string
		in   FieldValue
		want string
		err  bool
	}{
		{name: "text", in: TextValue(" 12.5 "), want: `{"n":12.5}`},
		{name: "number", in: NumberValue(3), want: `{"n":3}`},
		{name: "empty text", in: TextValue(""), want: `{"n":null}`},
		{name: "bool", in: BoolValue(true), want: `{"n":1}`},
		{name: "garbage", in: TextValue("abc"), err: true},
		{name: "infinite", in: TextValue("Inf"), err: true},
		{name: "nan", in: TextValue("NaN"), err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconstruct(rows, FieldMap{"n": tt.in})
			if tt.err {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrCoercion))
				var ce *CoercionError
				require.True(t, errors.As(err, &ce))
				assert.Equal(t, "n", ce.Key)
				assert.Equal(t, TypeNumber, ce.Type)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, compact(t, got))
		})
	}
}

func TestNumberNullPolicy(t *testing.T) {
	rows := []Row{{Key: "n", Type: TypeNumber}, {Key: "s", Type: TypeString}}
	got, err := ReconstructWithPolicy(rows, FieldMap{"n": TextValue("abc"), "s": TextValue("x")}, NumberNull)
	require.NoError(t, err)
	assert.Equal(t, `{"n":null,"s":"x"}`, compact(t, got))
}

func TestReconstructKeepsNumberLiterals(t *testing.T) {
	src := `{"id":12345678901234567890,"price":1.10,"n":-3e2}`
	rows := RowsFromValue(mustDecode(t, src))
	got, err := Reconstruct(rows, DeriveEditable(rows))
	require.NoError(t, err)
	assert.Equal(t, src, compact(t, got))
}

func TestCoerceNumberNonJSONSyntax(t *testing.T) {
	rows := []Row{{Key: "n", Type: TypeNumber}}
	got, err := Reconstruct(rows, FieldMap{"n": TextValue("+5")})
	require.NoError(t, err)
	assert.Equal(t, `{"n":5}`, compact(t, got))

	got, err = Reconstruct(rows, FieldMap{"n": TextValue(".5")})
	require.NoError(t, err)
	assert.Equal(t, `{"n":0.5}`, compact(t, got))

	_, err = Reconstruct(rows, FieldMap{"n": TextValue("1e999")})
	assert.True(t, errors.Is(err, ErrCoercion))
}

func TestCoerceBooleanStringAndNull(t *testing.T) {
	rows := []Row{
		{Key: "b1", Type: TypeBoolean},
		{Key: "b2", Type: TypeBoolean},
		{Key: "b3", Type: TypeBoolean},
		{Key: "b4", Type: TypeBoolean},
		{Key: "s1", Type: TypeString},
		{Key: "s2", Type: TypeString},
		{Key: "s3", Type: TypeString},
		{Key: "z", Type: TypeNull},
	}
	got, err := Reconstruct(rows, FieldMap{
		"b1": TextValue(""),
		"b2": TextValue("x"),
		"b3": NumberValue(0),
		"s1": NumberValue(2.5),
		"s2": BoolValue(true),
		"z":  TextValue("ignored"),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"b1":false,"b2":true,"b3":false,"b4":false,"s1":"2.5","s2":"true","s3":null,"z":null}`, compact(t, got))
}

func TestFieldFromText(t *testing.T) {
	v, err := FieldFromText("vip", TypeBoolean, "true")
	require.NoError(t, err)
	assert.Equal(t, BoolValue(true), v)

	v, err = FieldFromText("vip", TypeBoolean, " ")
	require.NoError(t, err)
	assert.Equal(t, BoolValue(false), v)

	_, err = FieldFromText("vip", TypeBoolean, "yes please")
	assert.True(t, errors.Is(err, ErrCoercion))

	v, err = FieldFromText("age", TypeNumber, "abc")
	require.NoError(t, err, "numbers are checked on save")
	assert.Equal(t, TextValue("abc"), v)

	_, err = FieldFromText("tags", TypeArray, "[]")
	assert.True(t, errors.Is(err, ErrCoercion))
}

func TestFieldValue(t *testing.T) {
	s, ok := TextValue("x").AsText()
	assert.True(t, ok)
	assert.Equal(t, "x", s)
	_, ok = TextValue("x").AsNumber()
	assert.False(t, ok)
	f, ok := NumberValue(2.5).AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)
	b, ok := BoolValue(true).AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	assert.Equal(t, "2.5", NumberValue(2.5).String())
	assert.Equal(t, "false", BoolValue(false).String())

	d, err := json.Marshal(FieldMap{"a": NumberValue(1), "b": BoolValue(true), "c": TextValue("t")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":true,"c":"t"}`, string(d))
}

func TestFieldMapClone(t *testing.T) {
	fm := FieldMap{"a": TextValue("1")}
	c := fm.Clone()
	c["a"] = TextValue("2")
	assert.Equal(t, TextValue("1"), fm["a"])
}

func TestDescribeIsSorted(t *testing.T) {
	assert.Equal(t, "a=1,b=true,c=x", describe(FieldMap{"c": TextValue("x"), "a": NumberValue(1), "b": BoolValue(true)}))
}

func TestDeriveEditableTwiceIsEqual(t *testing.T) {
	assert.Equal(t, DeriveEditable(customerRows()), DeriveEditable(customerRows()))
}

func TestSingleScalarRoundTrip(t *testing.T) {
	rows := []Row{{Value: json.Number("42"), Type: TypeNumber}}
	assert.Equal(t, "42", DeriveDisplay(rows))

	fv, err := FieldFromText(RootField, TypeNumber, "7")
	require.NoError(t, err)
	got, err := Reconstruct(rows, FieldMap{RootField: fv})
	require.NoError(t, err)
	assert.Equal(t, json.Number("7"), got)
	assert.Equal(t, "7", compact(t, got))
}
