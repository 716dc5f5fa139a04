package domain

import (
	"fmt"
	"strings"
	"time"
)

// Tier is the top-level family of a contract error.
type Tier string

const (
	TierInput             Tier = "InputError"
	TierBusiness          Tier = "BusinessError"
	TierSystem            Tier = "SystemError"
	TierDataInconsistency Tier = "DataInconsistency"
)

// ContractError is a structured failure reported by the command and query ports.
// The interface is sealed: only this package declares variants, and every variant
// is listed by ContractErrorVariants.
type ContractError interface {
	error
	Tier() Tier
	// Kind is unique per leaf variant, e.g. "BusinessError.DuplicateAlias".
	Kind() string
	contractError()
}

type inputTier struct{}

func (inputTier) Tier() Tier     { return TierInput }
func (inputTier) contractError() {}

type businessTier struct{}

func (businessTier) Tier() Tier     { return TierBusiness }
func (businessTier) contractError() {}

type systemTier struct{}

func (systemTier) Tier() Tier     { return TierSystem }
func (systemTier) contractError() {}

type inconsistencyTier struct{}

func (inconsistencyTier) Tier() Tier     { return TierDataInconsistency }
func (inconsistencyTier) contractError() {}

func kind(t Tier, name string) string { return string(t) + "." + name }

// --- InputError ---

type InvalidID struct {
	inputTier
	ID             string
	ExpectedFormat string
}

func (e InvalidID) Kind() string { return kind(TierInput, "InvalidId") }
func (e InvalidID) Error() string {
	return fmt.Sprintf("invalid id '%s': expected %s", e.ID, e.ExpectedFormat)
}

// TitleFailure explains why a title was rejected.
type TitleFailure interface {
	Name() string
	titleFailure()
}

type TitleEmpty struct{}
type TitleTooShort struct{ Min int }
type TitleTooLong struct{ Max int }
type TitleInvalidCharacters struct{ Chars []string }

func (TitleEmpty) Name() string             { return "Empty" }
func (TitleTooShort) Name() string          { return "TooShort" }
func (TitleTooLong) Name() string           { return "TooLong" }
func (TitleInvalidCharacters) Name() string { return "InvalidCharacters" }

func (TitleEmpty) titleFailure()             {}
func (TitleTooShort) titleFailure()          {}
func (TitleTooLong) titleFailure()           {}
func (TitleInvalidCharacters) titleFailure() {}

type InvalidTitle struct {
	inputTier
	Title   string
	Failure TitleFailure
}

func (e InvalidTitle) Kind() string { return kind(TierInput, "InvalidTitle."+failureName(e.Failure)) }
func (e InvalidTitle) Error() string {
	var reason string
	switch f := e.Failure.(type) {
	case TitleEmpty:
		reason = "title is empty"
	case TitleTooShort:
		reason = fmt.Sprintf("title is shorter than %d characters", f.Min)
	case TitleTooLong:
		reason = fmt.Sprintf("title is longer than %d characters", f.Max)
	case TitleInvalidCharacters:
		reason = fmt.Sprintf("title contains prohibited characters [%s]", strings.Join(f.Chars, ", "))
	default:
		reason = "title is invalid"
	}
	return fmt.Sprintf("invalid title '%s': %s", e.Title, reason)
}

// DescriptionFailure explains why a description was rejected.
type DescriptionFailure interface {
	Name() string
	descriptionFailure()
}

type DescriptionTooLong struct{ Max int }

func (DescriptionTooLong) Name() string        { return "TooLong" }
func (DescriptionTooLong) descriptionFailure() {}

type InvalidDescription struct {
	inputTier
	Description string
	Failure     DescriptionFailure
}

func (e InvalidDescription) Kind() string {
	return kind(TierInput, "InvalidDescription."+failureName(e.Failure))
}
func (e InvalidDescription) Error() string {
	if f, ok := e.Failure.(DescriptionTooLong); ok {
		return fmt.Sprintf("invalid description: longer than %d characters (got %d)", f.Max, len([]rune(e.Description)))
	}
	return "invalid description"
}

type InvalidParentID struct {
	inputTier
	ParentID       string
	ExpectedFormat string
}

func (e InvalidParentID) Kind() string { return kind(TierInput, "InvalidParentId") }
func (e InvalidParentID) Error() string {
	return fmt.Sprintf("invalid parent id '%s': expected %s", e.ParentID, e.ExpectedFormat)
}

// AliasFailure explains why an alias was rejected.
type AliasFailure interface {
	Name() string
	aliasFailure()
}

type AliasEmpty struct{}
type AliasTooShort struct{ Min int }
type AliasTooLong struct{ Max int }
type AliasInvalidFormat struct{ Pattern string }

func (AliasEmpty) Name() string         { return "Empty" }
func (AliasTooShort) Name() string      { return "TooShort" }
func (AliasTooLong) Name() string       { return "TooLong" }
func (AliasInvalidFormat) Name() string { return "InvalidFormat" }

func (AliasEmpty) aliasFailure()         {}
func (AliasTooShort) aliasFailure()      {}
func (AliasTooLong) aliasFailure()       {}
func (AliasInvalidFormat) aliasFailure() {}

type InvalidAlias struct {
	inputTier
	Alias   string
	Failure AliasFailure
}

func (e InvalidAlias) Kind() string { return kind(TierInput, "InvalidAlias."+failureName(e.Failure)) }
func (e InvalidAlias) Error() string {
	var reason string
	switch f := e.Failure.(type) {
	case AliasEmpty:
		reason = "alias is empty"
	case AliasTooShort:
		reason = fmt.Sprintf("alias is shorter than %d characters", f.Min)
	case AliasTooLong:
		reason = fmt.Sprintf("alias is longer than %d characters", f.Max)
	case AliasInvalidFormat:
		reason = fmt.Sprintf("alias does not match %s", f.Pattern)
	default:
		reason = "alias is invalid"
	}
	return fmt.Sprintf("invalid alias '%s': %s", e.Alias, reason)
}

type InvalidContextKey struct {
	inputTier
	Key    string
	Reason string
}

func (e InvalidContextKey) Kind() string { return kind(TierInput, "InvalidContextKey") }
func (e InvalidContextKey) Error() string {
	return fmt.Sprintf("invalid context key '%s': %s", e.Key, e.Reason)
}

type InvalidContextFilter struct {
	inputTier
	Filter string
	Reason string
}

func (e InvalidContextFilter) Kind() string { return kind(TierInput, "InvalidContextFilter") }
func (e InvalidContextFilter) Error() string {
	return fmt.Sprintf("invalid context filter '%s': %s", e.Filter, e.Reason)
}

type MissingRequiredParameter struct {
	inputTier
	Name string
}

func (e MissingRequiredParameter) Kind() string { return kind(TierInput, "MissingRequiredParameter") }
func (e MissingRequiredParameter) Error() string {
	return fmt.Sprintf("missing required parameter '%s'", e.Name)
}

type WrongParameterType struct {
	inputTier
	Name     string
	Expected string
	Actual   string
}

func (e WrongParameterType) Kind() string { return kind(TierInput, "WrongParameterType") }
func (e WrongParameterType) Error() string {
	return fmt.Sprintf("parameter '%s' must be %s, got %s", e.Name, e.Expected, e.Actual)
}

type ValidationFailure struct {
	inputTier
	Field      string
	Value      string
	Constraint string
}

func (e ValidationFailure) Kind() string { return kind(TierInput, "ValidationFailure") }
func (e ValidationFailure) Error() string {
	return fmt.Sprintf("validation failed for '%s' (value '%s'): %s", e.Field, e.Value, e.Constraint)
}

// --- BusinessError ---

type NotFound struct {
	businessTier
	ScopeID string
}

func (e NotFound) Kind() string  { return kind(TierBusiness, "NotFound") }
func (e NotFound) Error() string { return fmt.Sprintf("scope '%s' not found", e.ScopeID) }

type AliasNotFound struct {
	businessTier
	Alias string
}

func (e AliasNotFound) Kind() string  { return kind(TierBusiness, "AliasNotFound") }
func (e AliasNotFound) Error() string { return fmt.Sprintf("alias '%s' not found", e.Alias) }

type ContextNotFound struct {
	businessTier
	Key string
}

func (e ContextNotFound) Kind() string  { return kind(TierBusiness, "ContextNotFound") }
func (e ContextNotFound) Error() string { return fmt.Sprintf("context '%s' not found", e.Key) }

type DuplicateAlias struct {
	businessTier
	Alias            string
	ExistingScopeID  string
	AttemptedScopeID string
}

func (e DuplicateAlias) Kind() string { return kind(TierBusiness, "DuplicateAlias") }
func (e DuplicateAlias) Error() string {
	return fmt.Sprintf("alias '%s' already assigned to scope '%s' (attempted for '%s')",
		e.Alias, e.ExistingScopeID, e.AttemptedScopeID)
}

type DuplicateTitle struct {
	businessTier
	Title           string
	ParentID        *string
	ExistingScopeID string
}

func (e DuplicateTitle) Kind() string { return kind(TierBusiness, "DuplicateTitle") }
func (e DuplicateTitle) Error() string {
	parent := "root"
	if e.ParentID != nil {
		parent = "'" + *e.ParentID + "'"
	}
	return fmt.Sprintf("title '%s' already used by scope '%s' under %s", e.Title, e.ExistingScopeID, parent)
}

type DuplicateContextKey struct {
	businessTier
	Key               string
	ExistingContextID string
}

func (e DuplicateContextKey) Kind() string { return kind(TierBusiness, "DuplicateContextKey") }
func (e DuplicateContextKey) Error() string {
	return fmt.Sprintf("context key '%s' already used by '%s'", e.Key, e.ExistingContextID)
}

// Violation is a hierarchy rule a scope operation broke.
type Violation interface {
	Name() string
	violation()
}

type CircularReference struct {
	ScopeID   string
	ParentID  string
	CyclePath []string
}

type MaxDepthExceeded struct {
	ScopeID        string
	AttemptedDepth int
	MaximumDepth   int
}

type MaxChildrenExceeded struct {
	ParentID             string
	CurrentChildrenCount int
	MaximumChildren      int
}

type SelfParenting struct {
	ScopeID string
}

type ParentNotFound struct {
	ScopeID  string
	ParentID string
}

func (CircularReference) Name() string   { return "CircularReference" }
func (MaxDepthExceeded) Name() string    { return "MaxDepthExceeded" }
func (MaxChildrenExceeded) Name() string { return "MaxChildrenExceeded" }
func (SelfParenting) Name() string       { return "SelfParenting" }
func (ParentNotFound) Name() string      { return "ParentNotFound" }

func (CircularReference) violation()   {}
func (MaxDepthExceeded) violation()    {}
func (MaxChildrenExceeded) violation() {}
func (SelfParenting) violation()       {}
func (ParentNotFound) violation()      {}

type HierarchyViolation struct {
	businessTier
	Violation Violation
}

func (e HierarchyViolation) Kind() string {
	return kind(TierBusiness, "HierarchyViolation."+failureName(e.Violation))
}
func (e HierarchyViolation) Error() string {
	switch v := e.Violation.(type) {
	case CircularReference:
		return fmt.Sprintf("hierarchy violation: making '%s' a child of '%s' creates a cycle [%s]",
			v.ScopeID, v.ParentID, strings.Join(v.CyclePath, " -> "))
	case MaxDepthExceeded:
		return fmt.Sprintf("hierarchy violation: scope '%s' would be at depth %d, maximum is %d",
			v.ScopeID, v.AttemptedDepth, v.MaximumDepth)
	case MaxChildrenExceeded:
		return fmt.Sprintf("hierarchy violation: parent '%s' already has %d children, maximum is %d",
			v.ParentID, v.CurrentChildrenCount, v.MaximumChildren)
	case SelfParenting:
		return fmt.Sprintf("hierarchy violation: scope '%s' cannot be its own parent", v.ScopeID)
	case ParentNotFound:
		return fmt.Sprintf("hierarchy violation: parent '%s' of scope '%s' not found", v.ParentID, v.ScopeID)
	default:
		return "hierarchy violation"
	}
}

type AlreadyDeleted struct {
	businessTier
	ScopeID string
}

func (e AlreadyDeleted) Kind() string  { return kind(TierBusiness, "AlreadyDeleted") }
func (e AlreadyDeleted) Error() string { return fmt.Sprintf("scope '%s' is already deleted", e.ScopeID) }

type ArchivedScope struct {
	businessTier
	ScopeID string
}

func (e ArchivedScope) Kind() string  { return kind(TierBusiness, "ArchivedScope") }
func (e ArchivedScope) Error() string { return fmt.Sprintf("scope '%s' is archived", e.ScopeID) }

type NotArchived struct {
	businessTier
	ScopeID string
}

func (e NotArchived) Kind() string  { return kind(TierBusiness, "NotArchived") }
func (e NotArchived) Error() string { return fmt.Sprintf("scope '%s' is not archived", e.ScopeID) }

type HasChildren struct {
	businessTier
	ScopeID       string
	ChildrenCount int
}

func (e HasChildren) Kind() string { return kind(TierBusiness, "HasChildren") }
func (e HasChildren) Error() string {
	return fmt.Sprintf("scope '%s' has %d children", e.ScopeID, e.ChildrenCount)
}

type CannotRemoveCanonicalAlias struct {
	businessTier
	ScopeID string
	Alias   string
}

func (e CannotRemoveCanonicalAlias) Kind() string {
	return kind(TierBusiness, "CannotRemoveCanonicalAlias")
}
func (e CannotRemoveCanonicalAlias) Error() string {
	return fmt.Sprintf("alias '%s' is the canonical alias of scope '%s'", e.Alias, e.ScopeID)
}

type AliasGenerationFailed struct {
	businessTier
	ScopeID    string
	RetryCount int
}

func (e AliasGenerationFailed) Kind() string { return kind(TierBusiness, "AliasGenerationFailed") }
func (e AliasGenerationFailed) Error() string {
	return fmt.Sprintf("alias generation for scope '%s' failed after %d retries", e.ScopeID, e.RetryCount)
}

type AliasGenerationValidationFailed struct {
	businessTier
	ScopeID string
	Alias   string
	Reason  string
}

func (e AliasGenerationValidationFailed) Kind() string {
	return kind(TierBusiness, "AliasGenerationValidationFailed")
}
func (e AliasGenerationValidationFailed) Error() string {
	return fmt.Sprintf("generated alias '%s' for scope '%s' is invalid: %s", e.Alias, e.ScopeID, e.Reason)
}

// --- SystemError ---

type ServiceUnavailable struct {
	systemTier
	Service string
}

func (e ServiceUnavailable) Kind() string { return kind(TierSystem, "ServiceUnavailable") }
func (e ServiceUnavailable) Error() string {
	return fmt.Sprintf("service '%s' is unavailable", e.Service)
}

type Timeout struct {
	systemTier
	Operation string
	Timeout   time.Duration
}

func (e Timeout) Kind() string { return kind(TierSystem, "Timeout") }
func (e Timeout) Error() string {
	return fmt.Sprintf("operation '%s' timed out after %s", e.Operation, e.Timeout)
}

type ConcurrentModification struct {
	systemTier
	ScopeID         string
	ExpectedVersion int64
	ActualVersion   int64
}

func (e ConcurrentModification) Kind() string { return kind(TierSystem, "ConcurrentModification") }
func (e ConcurrentModification) Error() string {
	return fmt.Sprintf("scope '%s' was modified concurrently (expected version %d, actual %d)",
		e.ScopeID, e.ExpectedVersion, e.ActualVersion)
}

// --- DataInconsistency ---

type MissingCanonicalAlias struct {
	inconsistencyTier
	ScopeID string
}

func (e MissingCanonicalAlias) Kind() string {
	return kind(TierDataInconsistency, "MissingCanonicalAlias")
}
func (e MissingCanonicalAlias) Error() string {
	return fmt.Sprintf("scope '%s' has no canonical alias", e.ScopeID)
}

type named interface{ Name() string }

func failureName(f named) string {
	if f == nil {
		return "Unspecified"
	}
	return f.Name()
}

// ContractErrorVariants returns one sample of every declared leaf variant.
// A variant added to this package must be added here as well.
func ContractErrorVariants() []ContractError {
	parent := "01HPARENT"
	return []ContractError{
		InvalidID{ID: "bad id", ExpectedFormat: "ULID"},
		InvalidTitle{Title: "", Failure: TitleEmpty{}},
		InvalidTitle{Title: "x", Failure: TitleTooShort{Min: 2}},
		InvalidTitle{Title: strings.Repeat("x", 201), Failure: TitleTooLong{Max: 200}},
		InvalidTitle{Title: "a\nb", Failure: TitleInvalidCharacters{Chars: []string{"\n"}}},
		InvalidDescription{Description: strings.Repeat("d", 1001), Failure: DescriptionTooLong{Max: 1000}},
		InvalidParentID{ParentID: "nope", ExpectedFormat: "ULID"},
		InvalidAlias{Alias: "", Failure: AliasEmpty{}},
		InvalidAlias{Alias: "a", Failure: AliasTooShort{Min: 2}},
		InvalidAlias{Alias: strings.Repeat("a", 65), Failure: AliasTooLong{Max: 64}},
		InvalidAlias{Alias: "Bad Alias", Failure: AliasInvalidFormat{Pattern: "^[a-z][a-z0-9-_]+$"}},
		InvalidContextKey{Key: "bad key", Reason: "contains whitespace"},
		InvalidContextFilter{Filter: "status ==", Reason: "unexpected end of expression"},
		MissingRequiredParameter{Name: "title"},
		WrongParameterType{Name: "title", Expected: "string", Actual: "number"},
		ValidationFailure{Field: "limit", Value: "-1", Constraint: "must be >= 0"},
		NotFound{ScopeID: "01HSCOPE"},
		AliasNotFound{Alias: "quiet-river"},
		ContextNotFound{Key: "work"},
		DuplicateAlias{Alias: "quiet-river", ExistingScopeID: "01HA", AttemptedScopeID: "01HB"},
		DuplicateTitle{Title: "Roadmap", ParentID: &parent, ExistingScopeID: "01HA"},
		DuplicateContextKey{Key: "work", ExistingContextID: "01HCTX"},
		HierarchyViolation{Violation: CircularReference{ScopeID: "01HA", ParentID: "01HB", CyclePath: []string{"01HA", "01HB", "01HA"}}},
		HierarchyViolation{Violation: MaxDepthExceeded{ScopeID: "01HA", AttemptedDepth: 11, MaximumDepth: 10}},
		HierarchyViolation{Violation: MaxChildrenExceeded{ParentID: "01HP", CurrentChildrenCount: 1000, MaximumChildren: 1000}},
		HierarchyViolation{Violation: SelfParenting{ScopeID: "01HA"}},
		HierarchyViolation{Violation: ParentNotFound{ScopeID: "01HA", ParentID: "01HMISSING"}},
		AlreadyDeleted{ScopeID: "01HA"},
		ArchivedScope{ScopeID: "01HA"},
		NotArchived{ScopeID: "01HA"},
		HasChildren{ScopeID: "01HA", ChildrenCount: 3},
		CannotRemoveCanonicalAlias{ScopeID: "01HA", Alias: "quiet-river"},
		AliasGenerationFailed{ScopeID: "01HA", RetryCount: 10},
		AliasGenerationValidationFailed{ScopeID: "01HA", Alias: "-bad", Reason: "must start with a letter"},
		ServiceUnavailable{Service: "scope-repository"},
		Timeout{Operation: "scopes.create", Timeout: 5 * time.Second},
		ConcurrentModification{ScopeID: "01HA", ExpectedVersion: 3, ActualVersion: 4},
		MissingCanonicalAlias{ScopeID: "01HA"},
	}
}
