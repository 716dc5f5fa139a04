package canonical

import "github.com/kamiazya/scopes/pkg/domain"

// GetString reads a string argument.
// A missing or null argument is an error only when required; a non-string value always is.
// Failures are domain.ContractError values.
func GetString(args domain.Arguments, key string, required bool) (string, error) {
	s, ok, err := LookupString(args, key)
	if err != nil {
		return "", err
	}
	if !ok && required {
		return "", domain.MissingRequiredParameter{Name: key}
	}
	return s, nil
}

// LookupString is GetString for optional arguments that must be told apart from "".
func LookupString(args domain.Arguments, key string) (string, bool, error) {
	v, ok := args[key]
	if !ok || isNull(v) {
		return "", false, nil
	}
	s, ok := v.(domain.String)
	if !ok {
		return "", false, domain.WrongParameterType{Name: key, Expected: "string", Actual: domain.TypeName(v)}
	}
	return string(s), true, nil
}

// OptionalString returns a pointer to the argument, or nil when it is absent.
func OptionalString(args domain.Arguments, key string) (*string, error) {
	s, ok, err := LookupString(args, key)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

// GetBoolean reads a boolean argument, falling back to def for absent or non-boolean values.
func GetBoolean(args domain.Arguments, key string, def bool) bool {
	if b, ok := args[key].(domain.Bool); ok {
		return bool(b)
	}
	return def
}

// GetInt reads an integer argument, falling back to def when it is absent.
// A present value that is not an integral number is an error.
func GetInt(args domain.Arguments, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || isNull(v) {
		return def, nil
	}
	n, ok := v.(domain.Number)
	if !ok {
		return 0, domain.WrongParameterType{Name: key, Expected: "integer", Actual: domain.TypeName(v)}
	}
	i, ok := n.Int64()
	if !ok {
		return 0, domain.WrongParameterType{Name: key, Expected: "integer", Actual: "number"}
	}
	return int(i), nil
}
