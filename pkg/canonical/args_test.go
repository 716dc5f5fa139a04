package canonical_test

import (
	"testing"

	"github.com/kamiazya/scopes/pkg/canonical"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetString(t *testing.T) {
	args := domain.Arguments{
		"title":  domain.String("Roadmap"),
		"empty":  domain.String(""),
		"count":  domain.Number("3"),
		"parent": domain.Null{},
	}

	s, err := canonical.GetString(args, "title", true)
	require.NoError(t, err)
	assert.Equal(t, "Roadmap", s)

	s, err = canonical.GetString(args, "empty", true)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	s, err = canonical.GetString(args, "missing", false)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	_, err = canonical.GetString(args, "missing", true)
	var missing domain.MissingRequiredParameter
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "missing", missing.Name)

	_, err = canonical.GetString(args, "parent", true)
	assert.ErrorAs(t, err, &missing, "null counts as absent")

	_, err = canonical.GetString(args, "count", false)
	var wrong domain.WrongParameterType
	require.ErrorAs(t, err, &wrong)
	assert.Equal(t, "count", wrong.Name)
	assert.Equal(t, "string", wrong.Expected)
	assert.Equal(t, "number", wrong.Actual)
}

func TestOptionalString(t *testing.T) {
	args := domain.Arguments{"d": domain.String("x"), "n": domain.Bool(true)}

	p, err := canonical.OptionalString(args, "d")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "x", *p)

	p, err = canonical.OptionalString(args, "absent")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = canonical.OptionalString(args, "n")
	assert.Error(t, err)
}

func TestGetBoolean(t *testing.T) {
	args := domain.Arguments{"yes": domain.Bool(true), "no": domain.Bool(false), "str": domain.String("true")}

	assert.True(t, canonical.GetBoolean(args, "yes", false))
	assert.False(t, canonical.GetBoolean(args, "no", true))
	assert.True(t, canonical.GetBoolean(args, "missing", true))
	assert.False(t, canonical.GetBoolean(args, "str", false), "non-boolean values fall back to the default")
}

func TestGetInt(t *testing.T) {
	args := domain.Arguments{"limit": domain.Number("20"), "f": domain.Number("2.5"), "s": domain.String("1")}

	n, err := canonical.GetInt(args, "limit", 10)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = canonical.GetInt(args, "offset", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = canonical.GetInt(args, "f", 0)
	assert.Error(t, err)
	_, err = canonical.GetInt(args, "s", 0)
	assert.Error(t, err)
}
