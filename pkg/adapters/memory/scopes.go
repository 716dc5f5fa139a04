package memory

import (
	"context"
	"encoding/hex"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/ports"
)

// Limits enforced by the demo backend.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MinAliasLength       = 2
	MaxAliasLength       = 64
	MaxDepth             = 10
	MaxChildren          = 1000
	AliasRetries         = 10
	AliasPattern         = `^[a-z][a-z0-9-_]{1,63}$`
)

var aliasRegexp = regexp.MustCompile(AliasPattern)

var (
	adjectives = []string{
		"amber", "bold", "brisk", "calm", "clever", "crisp", "eager", "gentle",
		"golden", "keen", "lucid", "merry", "nimble", "quiet", "rapid", "silver",
	}
	nouns = []string{
		"badger", "brook", "cedar", "comet", "falcon", "forest", "harbor", "lantern",
		"meadow", "otter", "pebble", "river", "sparrow", "summit", "thistle", "willow",
	}
)

// GenerateAlias returns a random "adjective-noun-xxxx" alias.
func GenerateAlias() string {
	u := uuid.New()
	return adjectives[int(u[0])%len(adjectives)] + "-" +
		nouns[int(u[1])%len(nouns)] + "-" +
		hex.EncodeToString(u[2:4])
}

type scopeRecord struct {
	result   domain.ScopeResult
	children []string
}

// Scopes is an in-memory implementation of ports.CommandPort and ports.QueryPort.
// It enforces a small subset of the scopes rules so the gateway can be exercised
// end to end; it is not the authoritative business logic. Safe for concurrent use.
type Scopes struct {
	mu      sync.RWMutex
	scopes  map[string]*scopeRecord
	roots   []string
	aliases map[string]domain.AliasInfo

	clock    ports.Clock
	newID    func() string
	newAlias func() string
}

// ScopesOption configures Scopes.
type ScopesOption func(*Scopes)

// WithScopesClock replaces the time source used for timestamps.
func WithScopesClock(clock ports.Clock) ScopesOption {
	return func(s *Scopes) {
		s.clock = clock
	}
}

// WithIDGenerator replaces the scope ID generator.
func WithIDGenerator(fn func() string) ScopesOption {
	return func(s *Scopes) {
		s.newID = fn
	}
}

// WithAliasGenerator replaces the canonical alias generator.
func WithAliasGenerator(fn func() string) ScopesOption {
	return func(s *Scopes) {
		s.newAlias = fn
	}
}

// NewScopes creates an empty backend.
func NewScopes(opts ...ScopesOption) *Scopes {
	s := &Scopes{
		scopes:   make(map[string]*scopeRecord),
		aliases:  make(map[string]domain.AliasInfo),
		clock:    ports.SystemClock,
		newID:    uuid.NewString,
		newAlias: GenerateAlias,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	_ ports.CommandPort = (*Scopes)(nil)
	_ ports.QueryPort   = (*Scopes)(nil)
)

func validateTitle(title string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return domain.InvalidTitle{Title: title, Failure: domain.TitleEmpty{}}
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return domain.InvalidTitle{Title: title, Failure: domain.TitleTooLong{Max: MaxTitleLength}}
	}
	var bad []string
	for _, c := range []string{"\n", "\r", "\t"} {
		if strings.Contains(title, c) {
			bad = append(bad, c)
		}
	}
	if len(bad) > 0 {
		return domain.InvalidTitle{Title: title, Failure: domain.TitleInvalidCharacters{Chars: bad}}
	}
	return nil
}

func validateDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > MaxDescriptionLength {
		return domain.InvalidDescription{Description: *desc, Failure: domain.DescriptionTooLong{Max: MaxDescriptionLength}}
	}
	return nil
}

func validateAlias(alias string) error {
	switch n := len(alias); {
	case n == 0:
		return domain.InvalidAlias{Alias: alias, Failure: domain.AliasEmpty{}}
	case n < MinAliasLength:
		return domain.InvalidAlias{Alias: alias, Failure: domain.AliasTooShort{Min: MinAliasLength}}
	case n > MaxAliasLength:
		return domain.InvalidAlias{Alias: alias, Failure: domain.AliasTooLong{Max: MaxAliasLength}}
	case !aliasRegexp.MatchString(alias):
		return domain.InvalidAlias{Alias: alias, Failure: domain.AliasInvalidFormat{Pattern: AliasPattern}}
	}
	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.InvalidID{ID: id, ExpectedFormat: "UUID"}
	}
	return nil
}

func validatePage(offset, limit int) error {
	if offset < 0 {
		return domain.ValidationFailure{Field: "offset", Value: strconv.Itoa(offset), Constraint: "must be >= 0"}
	}
	if limit < 1 || limit > MaxChildren {
		return domain.ValidationFailure{Field: "limit", Value: strconv.Itoa(limit), Constraint: "must be between 1 and 1000"}
	}
	return nil
}

// depth returns the number of scopes from the root down to id, inclusive.
func (s *Scopes) depth(id string) int {
	d := 0
	for cur := id; cur != ""; {
		d++
		rec := s.scopes[cur]
		if rec == nil || rec.result.ParentID == nil {
			break
		}
		cur = *rec.result.ParentID
	}
	return d
}

func (s *Scopes) siblings(parentID *string) []string {
	if parentID == nil {
		return s.roots
	}
	if rec := s.scopes[*parentID]; rec != nil {
		return rec.children
	}
	return nil
}

func (s *Scopes) findSiblingTitle(parentID *string, title, except string) (string, bool) {
	for _, id := range s.siblings(parentID) {
		if id != except && strings.EqualFold(s.scopes[id].result.Title, title) {
			return id, true
		}
	}
	return "", false
}

func (s *Scopes) CreateScope(ctx context.Context, cmd domain.CreateScope) (domain.ScopeResult, error) {
	if err := validateTitle(cmd.Title); err != nil {
		return domain.ScopeResult{}, err
	}
	if err := validateDescription(cmd.Description); err != nil {
		return domain.ScopeResult{}, err
	}
	if cmd.ParentID != nil {
		if _, err := uuid.Parse(*cmd.ParentID); err != nil {
			return domain.ScopeResult{}, domain.InvalidParentID{ParentID: *cmd.ParentID, ExpectedFormat: "UUID"}
		}
	}
	if cmd.CustomAlias != "" {
		if err := validateAlias(cmd.CustomAlias); err != nil {
			return domain.ScopeResult{}, err
		}
	} else if !cmd.GenerateAlias {
		return domain.ScopeResult{}, domain.ValidationFailure{
			Field: "customAlias", Value: "", Constraint: "required when generateAlias is false",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()

	if cmd.ParentID != nil {
		parent, ok := s.scopes[*cmd.ParentID]
		if !ok {
			return domain.ScopeResult{}, domain.HierarchyViolation{
				Violation: domain.ParentNotFound{ScopeID: id, ParentID: *cmd.ParentID},
			}
		}
		if d := s.depth(*cmd.ParentID) + 1; d > MaxDepth {
			return domain.ScopeResult{}, domain.HierarchyViolation{
				Violation: domain.MaxDepthExceeded{ScopeID: id, AttemptedDepth: d, MaximumDepth: MaxDepth},
			}
		}
		if n := len(parent.children); n >= MaxChildren {
			return domain.ScopeResult{}, domain.HierarchyViolation{
				Violation: domain.MaxChildrenExceeded{ParentID: *cmd.ParentID, CurrentChildrenCount: n, MaximumChildren: MaxChildren},
			}
		}
	} else if len(s.roots) >= MaxChildren {
		return domain.ScopeResult{}, domain.HierarchyViolation{
			Violation: domain.MaxChildrenExceeded{CurrentChildrenCount: len(s.roots), MaximumChildren: MaxChildren},
		}
	}

	if existing, ok := s.findSiblingTitle(cmd.ParentID, cmd.Title, ""); ok {
		return domain.ScopeResult{}, domain.DuplicateTitle{Title: cmd.Title, ParentID: cmd.ParentID, ExistingScopeID: existing}
	}

	alias := cmd.CustomAlias
	if alias != "" {
		if existing, ok := s.aliases[alias]; ok {
			return domain.ScopeResult{}, domain.DuplicateAlias{Alias: alias, ExistingScopeID: existing.ScopeID, AttemptedScopeID: id}
		}
	} else {
		generated, err := s.generateAliasLocked(id)
		if err != nil {
			return domain.ScopeResult{}, err
		}
		alias = generated
	}

	now := s.clock.Now()
	result := domain.ScopeResult{
		ID:             id,
		Title:          cmd.Title,
		Description:    cmd.Description,
		ParentID:       cmd.ParentID,
		CanonicalAlias: alias,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.scopes[id] = &scopeRecord{result: result}
	if cmd.ParentID != nil {
		parent := s.scopes[*cmd.ParentID]
		parent.children = append(parent.children, id)
	} else {
		s.roots = append(s.roots, id)
	}
	s.aliases[alias] = domain.AliasInfo{Name: alias, ScopeID: id, IsCanonical: true, CreatedAt: now}

	return result, nil
}

func (s *Scopes) generateAliasLocked(scopeID string) (string, error) {
	for i := 0; i < AliasRetries; i++ {
		alias := s.newAlias()
		if err := validateAlias(alias); err != nil {
			return "", domain.AliasGenerationValidationFailed{ScopeID: scopeID, Alias: alias, Reason: err.Error()}
		}
		if _, taken := s.aliases[alias]; !taken {
			return alias, nil
		}
	}
	return "", domain.AliasGenerationFailed{ScopeID: scopeID, RetryCount: AliasRetries}
}

func (s *Scopes) lookupLocked(id string) (*scopeRecord, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	rec, ok := s.scopes[id]
	if !ok {
		return nil, domain.NotFound{ScopeID: id}
	}
	if rec.result.CanonicalAlias == "" {
		return nil, domain.MissingCanonicalAlias{ScopeID: id}
	}
	return rec, nil
}

func (s *Scopes) UpdateScope(ctx context.Context, cmd domain.UpdateScope) (domain.ScopeResult, error) {
	if cmd.Title != nil {
		if err := validateTitle(*cmd.Title); err != nil {
			return domain.ScopeResult{}, err
		}
	}
	if err := validateDescription(cmd.Description); err != nil {
		return domain.ScopeResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookupLocked(cmd.ID)
	if err != nil {
		return domain.ScopeResult{}, err
	}

	if cmd.Title != nil {
		if existing, ok := s.findSiblingTitle(rec.result.ParentID, *cmd.Title, cmd.ID); ok {
			return domain.ScopeResult{}, domain.DuplicateTitle{
				Title: *cmd.Title, ParentID: rec.result.ParentID, ExistingScopeID: existing,
			}
		}
		rec.result.Title = *cmd.Title
	}
	if cmd.Description != nil {
		desc := *cmd.Description
		rec.result.Description = &desc
	}
	rec.result.UpdatedAt = s.clock.Now()
	return rec.result, nil
}

func (s *Scopes) DeleteScope(ctx context.Context, cmd domain.DeleteScope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookupLocked(cmd.ID)
	if err != nil {
		return err
	}
	if n := len(rec.children); n > 0 && !cmd.Cascade {
		return domain.HasChildren{ScopeID: cmd.ID, ChildrenCount: n}
	}

	if rec.result.ParentID != nil {
		parent := s.scopes[*rec.result.ParentID]
		parent.children = without(parent.children, cmd.ID)
	} else {
		s.roots = without(s.roots, cmd.ID)
	}
	s.removeTreeLocked(cmd.ID)
	return nil
}

func (s *Scopes) removeTreeLocked(id string) {
	rec := s.scopes[id]
	for _, child := range rec.children {
		s.removeTreeLocked(child)
	}
	for name, info := range s.aliases {
		if info.ScopeID == id {
			delete(s.aliases, name)
		}
	}
	delete(s.scopes, id)
}

func (s *Scopes) AddAlias(ctx context.Context, cmd domain.AliasCommand) error {
	if err := validateAlias(cmd.Alias); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookupLocked(cmd.ScopeID); err != nil {
		return err
	}
	if existing, ok := s.aliases[cmd.Alias]; ok {
		return domain.DuplicateAlias{Alias: cmd.Alias, ExistingScopeID: existing.ScopeID, AttemptedScopeID: cmd.ScopeID}
	}
	s.aliases[cmd.Alias] = domain.AliasInfo{Name: cmd.Alias, ScopeID: cmd.ScopeID, CreatedAt: s.clock.Now()}
	return nil
}

func (s *Scopes) ownedAliasLocked(cmd domain.AliasCommand) (domain.AliasInfo, *scopeRecord, error) {
	rec, err := s.lookupLocked(cmd.ScopeID)
	if err != nil {
		return domain.AliasInfo{}, nil, err
	}
	info, ok := s.aliases[cmd.Alias]
	if !ok || info.ScopeID != cmd.ScopeID {
		return domain.AliasInfo{}, nil, domain.AliasNotFound{Alias: cmd.Alias}
	}
	return info, rec, nil
}

func (s *Scopes) RemoveAlias(ctx context.Context, cmd domain.AliasCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, _, err := s.ownedAliasLocked(cmd)
	if err != nil {
		return err
	}
	if info.IsCanonical {
		return domain.CannotRemoveCanonicalAlias{ScopeID: cmd.ScopeID, Alias: cmd.Alias}
	}
	delete(s.aliases, cmd.Alias)
	return nil
}

func (s *Scopes) SetCanonicalAlias(ctx context.Context, cmd domain.AliasCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, rec, err := s.ownedAliasLocked(cmd)
	if err != nil {
		return err
	}
	if info.IsCanonical {
		return nil
	}

	if prev, ok := s.aliases[rec.result.CanonicalAlias]; ok {
		prev.IsCanonical = false
		s.aliases[prev.Name] = prev
	}
	info.IsCanonical = true
	s.aliases[info.Name] = info
	rec.result.CanonicalAlias = info.Name
	rec.result.UpdatedAt = s.clock.Now()
	return nil
}

func (s *Scopes) GetScope(ctx context.Context, id string) (domain.ScopeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.lookupLocked(id)
	if err != nil {
		return domain.ScopeResult{}, err
	}
	return rec.result, nil
}

func (s *Scopes) GetScopeByAlias(ctx context.Context, alias string) (domain.ScopeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.aliases[alias]
	if !ok {
		return domain.ScopeResult{}, domain.AliasNotFound{Alias: alias}
	}
	rec, err := s.lookupLocked(info.ScopeID)
	if err != nil {
		return domain.ScopeResult{}, err
	}
	return rec.result, nil
}

func (s *Scopes) ListRootScopes(ctx context.Context, offset, limit int) ([]domain.ScopeResult, error) {
	if err := validatePage(offset, limit); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page(s.roots, offset, limit), nil
}

func (s *Scopes) ListChildren(ctx context.Context, parentID string, offset, limit int) ([]domain.ScopeResult, error) {
	if err := validatePage(offset, limit); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.lookupLocked(parentID)
	if err != nil {
		return nil, err
	}
	return s.page(rec.children, offset, limit), nil
}

func (s *Scopes) ListAliases(ctx context.Context, scopeID string) ([]domain.AliasInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.lookupLocked(scopeID); err != nil {
		return nil, err
	}

	var out []domain.AliasInfo
	for _, info := range s.aliases {
		if info.ScopeID == scopeID {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsCanonical != out[j].IsCanonical {
			return out[i].IsCanonical
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Scopes) page(ids []string, offset, limit int) []domain.ScopeResult {
	out := make([]domain.ScopeResult, 0, limit)
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, s.scopes[ids[i]].result)
	}
	return out
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
