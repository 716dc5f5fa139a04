package errmap_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/errmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectedCode(t *testing.T, err domain.ContractError) int {
	t.Helper()
	switch err.Tier() {
	case domain.TierInput:
		return domain.CodeInvalidParams
	case domain.TierSystem:
		return domain.CodeInfrastructure
	case domain.TierDataInconsistency:
		return domain.CodeDataInconsistency
	}
	families := []struct {
		code  int
		kinds []string
	}{
		{domain.CodeNotFound, []string{"NotFound", "AliasNotFound", "ContextNotFound"}},
		{domain.CodeDuplicate, []string{"DuplicateAlias", "DuplicateTitle", "DuplicateContextKey"}},
		{domain.CodeStateConflict, []string{"AlreadyDeleted", "ArchivedScope", "NotArchived"}},
		{domain.CodeBusinessConstraint, []string{"HasChildren", "CannotRemoveCanonicalAlias"}},
		{domain.CodeAliasGeneration, []string{"AliasGenerationFailed", "AliasGenerationValidationFailed"}},
	}
	leaf := strings.TrimPrefix(err.Kind(), "BusinessError.")
	if strings.HasPrefix(leaf, "HierarchyViolation.") {
		return domain.CodeHierarchyViolation
	}
	for _, f := range families {
		for _, k := range f.kinds {
			if k == leaf {
				return f.code
			}
		}
	}
	t.Fatalf("no family for %s", err.Kind())
	return 0
}

func TestMapContractError_Total(t *testing.T) {
	seen := make(map[string]bool)

	for _, variant := range domain.ContractErrorVariants() {
		t.Run(variant.Kind(), func(t *testing.T) {
			require.False(t, seen[variant.Kind()], "kind must be unique")
			seen[variant.Kind()] = true

			var env domain.Envelope
			require.NotPanics(t, func() { env = errmap.MapContractError(variant) })

			assert.True(t, env.IsError)
			code, ok := env.CodeValue()
			require.True(t, ok, "error envelopes always carry a code")
			assert.Equal(t, expectedCode(t, variant), code)
			assert.Equal(t, variant.Error(), env.Message)
			assert.NotEmpty(t, env.Message)
			assert.Equal(t, variant.Kind(), env.ErrorType())
			assert.Equal(t, domain.Bool(errmap.Retryable(code)), env.Details[domain.DetailRetryable])
			assert.Greater(t, len(env.Details), 2, "variant fields are carried as details")
		})
	}
}

func TestMapContractError_Details(t *testing.T) {
	env := errmap.MapContractError(domain.HierarchyViolation{
		Violation: domain.MaxDepthExceeded{ScopeID: "01HA", AttemptedDepth: 11, MaximumDepth: 10},
	})
	assert.Equal(t, domain.CodeHierarchyViolation, *env.Code)
	assert.Equal(t, "BusinessError.HierarchyViolation.MaxDepthExceeded", env.ErrorType())
	assert.Equal(t, domain.String("MaxDepthExceeded"), env.Details["violation"])
	assert.Equal(t, domain.Number("10"), env.Details["maximumDepth"])
	assert.Equal(t, domain.Number("11"), env.Details["attemptedDepth"])

	env = errmap.MapContractError(domain.InvalidTitle{Title: "x", Failure: domain.TitleTooShort{Min: 2}})
	assert.Equal(t, "InputError.InvalidTitle.TooShort", env.ErrorType())
	assert.Equal(t, domain.String("TooShort"), env.Details["failure"])
	assert.Equal(t, domain.Number("2"), env.Details["minLength"])

	env = errmap.MapContractError(domain.DuplicateTitle{Title: "Roadmap", ExistingScopeID: "01HA"})
	assert.Equal(t, domain.Null{}, env.Details["parentId"], "a root-level duplicate has a null parent")

	env = errmap.MapContractError(domain.ServiceUnavailable{Service: "db"})
	assert.Equal(t, domain.Bool(true), env.Details[domain.DetailRetryable])
	assert.Contains(t, env.Message, "db")
}

func TestMapContractError_PointerVariants(t *testing.T) {
	for _, variant := range domain.ContractErrorVariants() {
		t.Run(variant.Kind(), func(t *testing.T) {
			ptr := reflect.New(reflect.TypeOf(variant))
			ptr.Elem().Set(reflect.ValueOf(variant))
			pointer, ok := ptr.Interface().(domain.ContractError)
			require.True(t, ok)

			var env domain.Envelope
			require.NotPanics(t, func() { env = errmap.MapContractError(pointer) })
			assert.Equal(t, errmap.MapContractError(variant), env)
		})
	}

	env := errmap.MapContractError(domain.InvalidAlias{Alias: "a", Failure: &domain.AliasTooShort{Min: 2}})
	assert.Equal(t, "InputError.InvalidAlias.TooShort", env.ErrorType())
	assert.Equal(t, domain.Number("2"), env.Details["minLength"])

	var missing *domain.NotFound
	assert.NotPanics(t, func() { env = errmap.MapContractError(missing) })
	assert.Equal(t, domain.CodeServerError, *env.Code)
}

type foreignError struct{ domain.ContractError }

func TestMapContractError_UnknownVariantPanics(t *testing.T) {
	rogue := foreignError{ContractError: domain.NotFound{ScopeID: "x"}}
	assert.Panics(t, func() { errmap.MapContractError(rogue) })
}

func TestErrorResult(t *testing.T) {
	env := errmap.ErrorResult("boom")
	assert.True(t, env.IsError)
	assert.Equal(t, domain.CodeServerError, *env.Code)
	assert.Equal(t, "boom", env.Message)

	env = errmap.ErrorResult("unknown tool: x", domain.CodeMethodNotFound)
	assert.Equal(t, domain.CodeMethodNotFound, *env.Code)
}

func TestSuccessResult(t *testing.T) {
	env := errmap.SuccessResult(`{"id":"1"}`)
	assert.False(t, env.IsError)
	assert.Nil(t, env.Code)
	assert.Equal(t, `{"id":"1"}`, env.Message)
}
