package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/kamiazya/scopes/pkg/domain"
)

// Parse decodes a JSON object into Arguments. Numbers keep their literal text.
func Parse(s string) (domain.Arguments, error) {
	v, err := ParseValue(s)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(domain.Object)
	if !ok {
		return nil, fmt.Errorf("%w: expected object, got %s", domain.ErrUnsupportedValue, domain.TypeName(v))
	}
	return domain.Arguments(obj), nil
}

// ParseValue decodes any JSON document into a Value.
func ParseValue(s string) (domain.Value, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode json: trailing data")
	}
	return domain.ValueFromAny(raw)
}
