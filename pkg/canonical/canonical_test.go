package canonical_test

import (
	"encoding/json"
	"testing"

	"github.com/kamiazya/scopes/pkg/canonical"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		args domain.Arguments
		want string
	}{
		{"empty", domain.Arguments{}, `{}`},
		{"nil map", nil, `{}`},
		{
			"sorted keys",
			domain.Arguments{"title": domain.String("A"), "description": domain.String("B")},
			`{"description":"B","title":"A"}`,
		},
		{
			"top-level nulls dropped",
			domain.Arguments{"title": domain.String("A"), "parentId": domain.Null{}, "x": nil},
			`{"title":"A"}`,
		},
		{
			"nested nulls kept",
			domain.Arguments{"meta": domain.Object{"b": domain.Null{}, "a": domain.Bool(true)}},
			`{"meta":{"a":true,"b":null}}`,
		},
		{
			"array order kept",
			domain.Arguments{"tags": domain.Array{domain.String("b"), domain.String("a"), domain.Null{}}},
			`{"tags":["b","a",null]}`,
		},
		{
			"escapes",
			domain.Arguments{"s": domain.String("q\"b\\n\nr\rt\tb\bf\f\x01é")},
			`{"s":"q\"b\\n\nr\rt\tb\bf\f\u0001é"}`,
		},
		{
			"escaped keys",
			domain.Arguments{"a\"b": domain.Bool(false)},
			`{"a\"b":false}`,
		},
		{
			"number spellings",
			domain.Arguments{
				"a": domain.Number("1.0"),
				"b": domain.Number("-0"),
				"c": domain.Number("1e3"),
				"d": domain.Number("0.10"),
				"e": domain.Number("123456789012345678901234567890"),
				"f": domain.Number("1e21"),
			},
			`{"a":1,"b":0,"c":1000,"d":0.1,"e":123456789012345678901234567890,"f":1000000000000000000000}`,
		},
		{
			"fractions stay floats",
			domain.Arguments{"a": domain.Number("1.5e300"), "b": domain.Number("9007199254740993.5")},
			`{"a":1.5e+300,"b":9.007199254740994e+15}`,
		},
		{
			"invalid utf-8",
			domain.Arguments{"s": domain.String("a\xffb\xc3")},
			"{\"s\":\"a\uFFFDb\uFFFD\"}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := canonical.Canonicalize(tt.args)
			assert.Equal(t, tt.want, got)
			assert.True(t, json.Valid([]byte(got)), "canonical form must be valid JSON")
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []domain.Arguments{
		{"title": domain.String("Roadmap"), "generateAlias": domain.Bool(true)},
		{"n": domain.Number("2.50"), "big": domain.Number("98765432109876543210")},
		{"nested": domain.Object{"z": domain.Array{domain.Object{"k": domain.Null{}}}, "a": domain.String("\x1f")}},
		{"unicode": domain.String("日本語 🎉"), "empty": domain.String("")},
		{"invalid": domain.String("a\xffb"), "big": domain.Number("1e20")},
	}

	for _, in := range inputs {
		first := canonical.Canonicalize(in)
		parsed, err := canonical.Parse(first)
		require.NoError(t, err)
		assert.Equal(t, first, canonical.Canonicalize(parsed))
	}
}

func TestCanonicalize_IntegralSpellingsAgree(t *testing.T) {
	spellings := []string{"1e20", "1E20", "100000000000000000000", "100000000000000000000.0", "1.0e20", "0.1e21"}
	want := canonical.Canonicalize(domain.Arguments{"n": domain.Number(spellings[0])})
	assert.Equal(t, `{"n":100000000000000000000}`, want)

	for _, lit := range spellings {
		args := domain.Arguments{"n": domain.Number(lit)}
		assert.Equal(t, want, canonical.Canonicalize(args), lit)
		assert.Equal(t, canonical.BuildCacheKey("scopes.list", args, "key-0001"),
			canonical.BuildCacheKey("scopes.list", domain.Arguments{"n": domain.Number("1e20")}, "key-0001"), lit)
	}
}

func TestCanonicalize_KeyOrderInsensitive(t *testing.T) {
	a := domain.Arguments{
		"b": domain.Number("1"),
		"a": domain.Object{"y": domain.String("2"), "x": domain.String("1")},
	}
	b := domain.Arguments{}
	b["a"] = domain.Object{"x": domain.String("1"), "y": domain.String("2")}
	b["b"] = domain.Number("1")

	assert.Equal(t, canonical.Canonicalize(a), canonical.Canonicalize(b))
}

func TestCanonicalize_NullStripping(t *testing.T) {
	a := domain.Arguments{"title": domain.String("A")}
	b := domain.Arguments{"title": domain.String("A"), "description": domain.Null{}}
	assert.Equal(t, canonical.Canonicalize(a), canonical.Canonicalize(b))
}

func TestCanonicalize_ArrayOrderSignificant(t *testing.T) {
	a := domain.Arguments{"xs": domain.Array{domain.Number("1"), domain.Number("2")}}
	b := domain.Arguments{"xs": domain.Array{domain.Number("2"), domain.Number("1")}}
	assert.NotEqual(t, canonical.Canonicalize(a), canonical.Canonicalize(b))
}

func TestEncode_KeepsNull(t *testing.T) {
	assert.Equal(t, "null", canonical.Encode(domain.Null{}))
	assert.Equal(t, `{"a":null}`, canonical.Encode(domain.Object{"a": domain.Null{}}))
}

func TestParse(t *testing.T) {
	args, err := canonical.Parse(`{"title":"A","n":12345678901234567890,"ok":true,"xs":[1,null]}`)
	require.NoError(t, err)
	assert.Equal(t, domain.String("A"), args["title"])
	assert.Equal(t, domain.Number("12345678901234567890"), args["n"])
	assert.Equal(t, domain.Bool(true), args["ok"])
	assert.Equal(t, domain.Array{domain.Number("1"), domain.Null{}}, args["xs"])

	_, err = canonical.Parse(`[1,2]`)
	assert.ErrorIs(t, err, domain.ErrUnsupportedValue)

	_, err = canonical.Parse(`{"a":1} {}`)
	assert.Error(t, err)

	_, err = canonical.Parse(`{`)
	assert.Error(t, err)
}
