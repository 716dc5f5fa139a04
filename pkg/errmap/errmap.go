// Package errmap flattens the contract error taxonomy into envelopes.
//
// The mapping is total: every variant declared in pkg/domain has a case here,
// and an unknown variant panics instead of degrading into a generic error.
package errmap

import (
	"fmt"

	"github.com/kamiazya/scopes/pkg/domain"
)

// MapContractError converts err into an error envelope carrying its family code,
// its diagnostic message, and its fields as details. Pointer variants map like
// their values; a nil variant maps to a generic server error.
func MapContractError(err domain.ContractError) domain.Envelope {
	err, ok := domain.Normalize(err)
	if !ok {
		return ErrorResult("unspecified contract error")
	}
	code, d := classify(err)
	d[domain.DetailErrorType] = domain.String(err.Kind())
	d[domain.DetailRetryable] = domain.Bool(Retryable(code))
	return domain.NewErrorEnvelope(code, err.Error(), d)
}

// ErrorResult builds a generic error envelope. The code defaults to domain.CodeServerError.
func ErrorResult(message string, code ...int) domain.Envelope {
	c := domain.CodeServerError
	if len(code) > 0 {
		c = code[0]
	}
	return domain.NewErrorEnvelope(c, message, nil)
}

// SuccessResult wraps a serialized payload.
func SuccessResult(content string) domain.Envelope {
	return domain.NewSuccessEnvelope(content)
}

// Retryable reports whether a caller may retry after an error with this code.
func Retryable(code int) bool {
	switch code {
	case domain.CodeAliasGeneration, domain.CodeInfrastructure:
		return true
	}
	return false
}

type details map[string]domain.Value

func str(s string) domain.Value { return domain.String(s) }
func num(i int) domain.Value    { return domain.IntValue(int64(i)) }

func classify(err domain.ContractError) (int, details) {
	switch e := err.(type) {
	// InputError
	case domain.InvalidID:
		return domain.CodeInvalidParams, details{"id": str(e.ID), "expectedFormat": str(e.ExpectedFormat)}
	case domain.InvalidTitle:
		d := details{"title": str(e.Title), "failure": str(name(e.Failure))}
		switch f := e.Failure.(type) {
		case domain.TitleTooShort:
			d["minLength"] = num(f.Min)
		case domain.TitleTooLong:
			d["maxLength"] = num(f.Max)
		case domain.TitleInvalidCharacters:
			d["prohibitedCharacters"] = domain.Strings(f.Chars)
		}
		return domain.CodeInvalidParams, d
	case domain.InvalidDescription:
		d := details{"failure": str(name(e.Failure))}
		if f, ok := e.Failure.(domain.DescriptionTooLong); ok {
			d["maxLength"] = num(f.Max)
			d["actualLength"] = num(len([]rune(e.Description)))
		}
		return domain.CodeInvalidParams, d
	case domain.InvalidParentID:
		return domain.CodeInvalidParams, details{"parentId": str(e.ParentID), "expectedFormat": str(e.ExpectedFormat)}
	case domain.InvalidAlias:
		d := details{"alias": str(e.Alias), "failure": str(name(e.Failure))}
		switch f := e.Failure.(type) {
		case domain.AliasTooShort:
			d["minLength"] = num(f.Min)
		case domain.AliasTooLong:
			d["maxLength"] = num(f.Max)
		case domain.AliasInvalidFormat:
			d["expectedPattern"] = str(f.Pattern)
		}
		return domain.CodeInvalidParams, d
	case domain.InvalidContextKey:
		return domain.CodeInvalidParams, details{"key": str(e.Key), "reason": str(e.Reason)}
	case domain.InvalidContextFilter:
		return domain.CodeInvalidParams, details{"filter": str(e.Filter), "reason": str(e.Reason)}
	case domain.MissingRequiredParameter:
		return domain.CodeInvalidParams, details{"parameter": str(e.Name)}
	case domain.WrongParameterType:
		return domain.CodeInvalidParams, details{
			"parameter": str(e.Name), "expectedType": str(e.Expected), "actualType": str(e.Actual),
		}
	case domain.ValidationFailure:
		return domain.CodeInvalidParams, details{
			"field": str(e.Field), "value": str(e.Value), "constraint": str(e.Constraint),
		}

	// BusinessError: not found
	case domain.NotFound:
		return domain.CodeNotFound, details{"scopeId": str(e.ScopeID)}
	case domain.AliasNotFound:
		return domain.CodeNotFound, details{"alias": str(e.Alias)}
	case domain.ContextNotFound:
		return domain.CodeNotFound, details{"key": str(e.Key)}

	// BusinessError: duplicate
	case domain.DuplicateAlias:
		return domain.CodeDuplicate, details{
			"alias": str(e.Alias), "existingScopeId": str(e.ExistingScopeID), "attemptedScopeId": str(e.AttemptedScopeID),
		}
	case domain.DuplicateTitle:
		return domain.CodeDuplicate, details{
			"title": str(e.Title), "parentId": domain.OptionalString(e.ParentID), "existingScopeId": str(e.ExistingScopeID),
		}
	case domain.DuplicateContextKey:
		return domain.CodeDuplicate, details{"key": str(e.Key), "existingContextId": str(e.ExistingContextID)}

	// BusinessError: hierarchy
	case domain.HierarchyViolation:
		return domain.CodeHierarchyViolation, hierarchyDetails(e.Violation)

	// BusinessError: state conflict
	case domain.AlreadyDeleted:
		return domain.CodeStateConflict, details{"scopeId": str(e.ScopeID)}
	case domain.ArchivedScope:
		return domain.CodeStateConflict, details{"scopeId": str(e.ScopeID)}
	case domain.NotArchived:
		return domain.CodeStateConflict, details{"scopeId": str(e.ScopeID)}

	// BusinessError: constraint
	case domain.HasChildren:
		return domain.CodeBusinessConstraint, details{"scopeId": str(e.ScopeID), "childrenCount": num(e.ChildrenCount)}
	case domain.CannotRemoveCanonicalAlias:
		return domain.CodeBusinessConstraint, details{"scopeId": str(e.ScopeID), "alias": str(e.Alias)}

	// BusinessError: alias generation
	case domain.AliasGenerationFailed:
		return domain.CodeAliasGeneration, details{"scopeId": str(e.ScopeID), "retryCount": num(e.RetryCount)}
	case domain.AliasGenerationValidationFailed:
		return domain.CodeAliasGeneration, details{"scopeId": str(e.ScopeID), "alias": str(e.Alias), "reason": str(e.Reason)}

	// SystemError
	case domain.ServiceUnavailable:
		return domain.CodeInfrastructure, details{"service": str(e.Service)}
	case domain.Timeout:
		return domain.CodeInfrastructure, details{
			"operation": str(e.Operation), "timeoutMs": domain.IntValue(e.Timeout.Milliseconds()),
		}
	case domain.ConcurrentModification:
		return domain.CodeInfrastructure, details{
			"scopeId":         str(e.ScopeID),
			"expectedVersion": domain.IntValue(e.ExpectedVersion),
			"actualVersion":   domain.IntValue(e.ActualVersion),
		}

	// DataInconsistency
	case domain.MissingCanonicalAlias:
		return domain.CodeDataInconsistency, details{"scopeId": str(e.ScopeID)}

	default:
		panic(fmt.Sprintf("errmap: unmapped contract error %T", err))
	}
}

func hierarchyDetails(v domain.Violation) details {
	d := details{"violation": str(name(v))}
	switch h := v.(type) {
	case domain.CircularReference:
		d["scopeId"] = str(h.ScopeID)
		d["parentId"] = str(h.ParentID)
		d["cyclePath"] = domain.Strings(h.CyclePath)
	case domain.MaxDepthExceeded:
		d["scopeId"] = str(h.ScopeID)
		d["attemptedDepth"] = num(h.AttemptedDepth)
		d["maximumDepth"] = num(h.MaximumDepth)
	case domain.MaxChildrenExceeded:
		d["parentId"] = str(h.ParentID)
		d["currentChildrenCount"] = num(h.CurrentChildrenCount)
		d["maximumChildren"] = num(h.MaximumChildren)
	case domain.SelfParenting:
		d["scopeId"] = str(h.ScopeID)
	case domain.ParentNotFound:
		d["scopeId"] = str(h.ScopeID)
		d["parentId"] = str(h.ParentID)
	default:
		panic(fmt.Sprintf("errmap: unmapped hierarchy violation %T", v))
	}
	return d
}

func name(n interface{ Name() string }) string {
	if n == nil {
		return "Unspecified"
	}
	return n.Name()
}
