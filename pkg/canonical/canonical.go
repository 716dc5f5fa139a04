package canonical

import (
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kamiazya/scopes/pkg/domain"
)

const hexDigits = "0123456789abcdef"

// Canonicalize renders args as compact JSON with sorted keys.
// Top-level null entries are dropped; nested nulls are kept.
func Canonicalize(args domain.Arguments) string {
	keys := make([]string, 0, len(args))
	for k, v := range args {
		if isNull(v) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(&b, k)
		b.WriteByte(':')
		writeValue(&b, args[k])
	}
	b.WriteByte('}')
	return b.String()
}

// Encode renders a single value in canonical form. Unlike Canonicalize it keeps nulls.
func Encode(v domain.Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func isNull(v domain.Value) bool {
	switch v.(type) {
	case nil, domain.Null:
		return true
	}
	return false
}

func writeValue(b *strings.Builder, v domain.Value) {
	switch val := v.(type) {
	case nil, domain.Null:
		b.WriteString("null")
	case domain.Bool:
		b.WriteString(strconv.FormatBool(bool(val)))
	case domain.Number:
		b.WriteString(normalizeNumber(string(val)))
	case domain.String:
		writeString(b, string(val))
	case domain.Array:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			writeValue(b, item)
		}
		b.WriteByte(']')
	case domain.Object:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeString(b, k)
			b.WriteByte(':')
			writeValue(b, val[k])
		}
		b.WriteByte('}')
	}
}

func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				// Same rune a JSON decoder substitutes for an invalid byte.
				b.WriteRune(utf8.RuneError)
			} else {
				b.WriteString(s[i : i+size])
			}
			i += size
			continue
		}
		i++
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0xf])
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}

// normalizeNumber maps every spelling of a number to one literal. Values that
// are exact integers are written in base 10 at any magnitude, so 1e20 and
// 100000000000000000000 agree; other values use the shortest float text.
func normalizeNumber(lit string) string {
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if n, ok := new(big.Int).SetString(lit, 10); ok {
		return n.String()
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return lit
		}
		return "null"
	}
	if f == math.Trunc(f) {
		if math.Abs(f) < 1<<53 {
			return strconv.FormatInt(int64(f), 10)
		}
		// f is finite, which bounds the exponent and so the size of r.
		if r, ok := new(big.Rat).SetString(lit); ok && r.IsInt() {
			return r.Num().String()
		}
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
