package domain_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueFromAny(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want domain.Value
	}{
		{"nil", nil, domain.Null{}},
		{"bool", true, domain.Bool(true)},
		{"string", "hi", domain.String("hi")},
		{"json number", json.Number("12.50"), domain.Number("12.50")},
		{"big json number", json.Number("123456789012345678901234567890"), domain.Number("123456789012345678901234567890")},
		{"float64", 1.5, domain.Number("1.5")},
		{"integral float64", float64(5), domain.Number("5")},
		{"float32", float32(2.5), domain.Number("2.5")},
		{"int", -3, domain.Number("-3")},
		{"int32", int32(7), domain.Number("7")},
		{"int64", int64(math.MinInt64), domain.Number("-9223372036854775808")},
		{"uint", uint(9), domain.Number("9")},
		{"uint32", uint32(math.MaxUint32), domain.Number("4294967295")},
		{"uint64", uint64(math.MaxUint64), domain.Number("18446744073709551615")},
		{"strings", []string{"a", "b"}, domain.Array{domain.String("a"), domain.String("b")}},
		{"value passthrough", domain.Object{"k": domain.Null{}}, domain.Object{"k": domain.Null{}}},
		{
			"nested",
			map[string]any{"xs": []any{1, nil, map[string]any{"ok": false}}},
			domain.Object{"xs": domain.Array{domain.Number("1"), domain.Null{}, domain.Object{"ok": domain.Bool(false)}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ValueFromAny(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueFromAny_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		message string
	}{
		{"nan", math.NaN(), "non-finite"},
		{"positive infinity", math.Inf(1), "non-finite"},
		{"negative infinity float32", float32(math.Inf(-1)), "non-finite"},
		{"bad json number", json.Number("1.2.3"), `"1.2.3"`},
		{"nan json number", json.Number("NaN"), `"NaN"`},
		{"hex json number", json.Number("0x10"), `"0x10"`},
		{"leading zero", json.Number("012"), `"012"`},
		{"unsupported type", struct{}{}, "struct {}"},
		{"nested in array", []any{"ok", math.NaN()}, "index 1"},
		{"nested in object", map[string]any{"inner": map[string]any{"x": make(chan int)}}, `key "inner": key "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ValueFromAny(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUnsupportedValue)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestArgumentsFromMap(t *testing.T) {
	args, err := domain.ArgumentsFromMap(map[string]any{"title": "A", "limit": float64(10), "parent": nil})
	require.NoError(t, err)
	assert.Equal(t, domain.Arguments{
		"title":  domain.String("A"),
		"limit":  domain.Number("10"),
		"parent": domain.Null{},
	}, args)

	_, err = domain.ArgumentsFromMap(map[string]any{"limit": math.Inf(1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedValue)
	assert.Contains(t, err.Error(), `argument "limit"`)

	args, err = domain.ArgumentsFromMap(nil)
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestNumber_Int64(t *testing.T) {
	tests := []struct {
		lit  string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"-7", -7, true},
		{"9223372036854775807", math.MaxInt64, true},
		{"1e3", 1000, true},
		{"2.0", 2, true},
		{"1.5", 0, false},
		{"98765432109876543210", 0, false},
		{"1e300", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.lit, func(t *testing.T) {
			got, ok := domain.Number(tt.lit).Int64()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumber_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(domain.Object{
		"big":  domain.Number("123456789012345678901234567890"),
		"exp":  domain.Number("1e3"),
		"none": domain.Null{},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"big":123456789012345678901234567890,"exp":1000,"none":null}`, string(out))
	assert.Contains(t, string(out), "123456789012345678901234567890", "literal text is kept")

	_, err = domain.Number("NaN").MarshalJSON()
	assert.ErrorIs(t, err, domain.ErrUnsupportedValue)

	_, err = domain.Number("").MarshalJSON()
	assert.ErrorIs(t, err, domain.ErrUnsupportedValue)
}

func TestFloatValue(t *testing.T) {
	assert.Equal(t, domain.Null{}, domain.FloatValue(math.NaN()))
	assert.Equal(t, domain.Null{}, domain.FloatValue(math.Inf(-1)))
	assert.Equal(t, domain.Number("0.25"), domain.FloatValue(0.25))
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "null", domain.TypeName(nil))
	assert.Equal(t, "null", domain.TypeName(domain.Null{}))
	assert.Equal(t, "boolean", domain.TypeName(domain.Bool(false)))
	assert.Equal(t, "number", domain.TypeName(domain.Number("1")))
	assert.Equal(t, "string", domain.TypeName(domain.String("")))
	assert.Equal(t, "array", domain.TypeName(domain.Array{}))
	assert.Equal(t, "object", domain.TypeName(domain.Object{}))
}
