package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kamiazya/scopes/pkg/canonical"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/ports"
)

// DefaultLimit is the page size of list tools.
const DefaultLimit = 20

type scopeTools struct {
	commands ports.CommandPort
	queries  ports.QueryPort
}

// ScopeTools builds the scopes and aliases tool catalog over the given ports.
func ScopeTools(commands ports.CommandPort, queries ports.QueryPort) []Tool {
	st := &scopeTools{commands: commands, queries: queries}

	aliasParam := func(name, desc string) Param {
		return Param{Name: name, Type: TypeString, Description: desc, Required: true}
	}
	paging := []Param{
		{Name: "offset", Type: TypeInteger, Description: "Number of scopes to skip", Default: 0},
		{Name: "limit", Type: TypeInteger, Description: "Maximum number of scopes to return", Default: DefaultLimit},
	}

	return []Tool{
		{
			Name:        "scopes.create",
			Description: "Create a scope, optionally under a parent, with a custom or generated canonical alias",
			Kind:        KindCommand,
			Params: []Param{
				{Name: "title", Type: TypeString, Description: "Scope title", Required: true},
				{Name: "description", Type: TypeString, Description: "Optional description"},
				{Name: "parentId", Type: TypeString, Description: "ID of the parent scope"},
				{Name: "customAlias", Type: TypeString, Description: "Canonical alias to use instead of a generated one"},
				{Name: "generateAlias", Type: TypeBoolean, Description: "Generate a canonical alias when none is given", Default: true},
			},
			Handler: st.create,
		},
		{
			Name:        "scopes.get",
			Description: "Get a scope by alias",
			Kind:        KindQuery,
			Params:      []Param{aliasParam("alias", "Any alias of the scope")},
			Handler:     st.get,
		},
		{
			Name:        "scopes.update",
			Description: "Update the title or description of a scope",
			Kind:        KindCommand,
			Params: []Param{
				aliasParam("alias", "Any alias of the scope"),
				{Name: "title", Type: TypeString, Description: "New title"},
				{Name: "description", Type: TypeString, Description: "New description"},
			},
			Handler: st.update,
		},
		{
			Name:        "scopes.delete",
			Description: "Delete a scope; descendants are deleted only with cascade",
			Kind:        KindCommand,
			Params: []Param{
				aliasParam("alias", "Any alias of the scope"),
				{Name: "cascade", Type: TypeBoolean, Description: "Delete descendants as well", Default: false},
			},
			Handler: st.delete,
		},
		{
			Name:        "scopes.children",
			Description: "List the children of a scope, or the root scopes without a parent",
			Kind:        KindQuery,
			Params: append([]Param{
				{Name: "parentAlias", Type: TypeString, Description: "Alias of the parent scope"},
			}, paging...),
			Handler: st.children,
		},
		{
			Name:        "scopes.roots",
			Description: "List root scopes",
			Kind:        KindQuery,
			Params:      paging,
			Handler:     st.roots,
		},
		{
			Name:        "aliases.add",
			Description: "Add an alias to a scope",
			Kind:        KindCommand,
			Params:      []Param{aliasParam("scopeAlias", "Existing alias of the scope"), aliasParam("alias", "Alias to add")},
			Handler:     st.aliasCommand(func(ctx context.Context, cmd domain.AliasCommand) error { return st.commands.AddAlias(ctx, cmd) }),
		},
		{
			Name:        "aliases.remove",
			Description: "Remove a non-canonical alias from a scope",
			Kind:        KindCommand,
			Params:      []Param{aliasParam("scopeAlias", "Existing alias of the scope"), aliasParam("alias", "Alias to remove")},
			Handler:     st.aliasCommand(func(ctx context.Context, cmd domain.AliasCommand) error { return st.commands.RemoveAlias(ctx, cmd) }),
		},
		{
			Name:        "aliases.setCanonical",
			Description: "Make an existing alias the canonical alias of its scope",
			Kind:        KindCommand,
			Params:      []Param{aliasParam("scopeAlias", "Existing alias of the scope"), aliasParam("alias", "Alias to promote")},
			Handler: st.aliasCommand(func(ctx context.Context, cmd domain.AliasCommand) error {
				return st.commands.SetCanonicalAlias(ctx, cmd)
			}),
		},
		{
			Name:        "aliases.list",
			Description: "List the aliases of a scope, canonical first",
			Kind:        KindQuery,
			Params:      []Param{aliasParam("scopeAlias", "Any alias of the scope")},
			Handler:     st.listAliases,
		},
		{
			Name:        "aliases.resolve",
			Description: "Resolve an alias to its scope",
			Kind:        KindQuery,
			Params:      []Param{aliasParam("alias", "Alias to resolve")},
			Handler:     st.resolve,
		},
	}
}

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return string(data), nil
}

func (st *scopeTools) resolve(ctx context.Context, args domain.Arguments) (string, error) {
	alias, err := canonical.GetString(args, "alias", true)
	if err != nil {
		return "", err
	}
	scope, err := st.queries.GetScopeByAlias(ctx, alias)
	if err != nil {
		return "", err
	}
	return encode(map[string]any{
		"alias":          alias,
		"scopeId":        scope.ID,
		"canonicalAlias": scope.CanonicalAlias,
		"title":          scope.Title,
	})
}

// scopeByArg resolves the alias held in args[key] to a scope.
func (st *scopeTools) scopeByArg(ctx context.Context, args domain.Arguments, key string) (domain.ScopeResult, error) {
	alias, err := canonical.GetString(args, key, true)
	if err != nil {
		return domain.ScopeResult{}, err
	}
	return st.queries.GetScopeByAlias(ctx, alias)
}

func (st *scopeTools) create(ctx context.Context, args domain.Arguments) (string, error) {
	title, err := canonical.GetString(args, "title", true)
	if err != nil {
		return "", err
	}
	description, err := canonical.OptionalString(args, "description")
	if err != nil {
		return "", err
	}
	parentID, err := canonical.OptionalString(args, "parentId")
	if err != nil {
		return "", err
	}
	customAlias, err := canonical.GetString(args, "customAlias", false)
	if err != nil {
		return "", err
	}

	scope, err := st.commands.CreateScope(ctx, domain.CreateScope{
		Title:         title,
		Description:   description,
		ParentID:      parentID,
		CustomAlias:   customAlias,
		GenerateAlias: canonical.GetBoolean(args, "generateAlias", true),
	})
	if err != nil {
		return "", err
	}
	return encode(scope)
}

func (st *scopeTools) get(ctx context.Context, args domain.Arguments) (string, error) {
	scope, err := st.scopeByArg(ctx, args, "alias")
	if err != nil {
		return "", err
	}
	return encode(scope)
}

func (st *scopeTools) update(ctx context.Context, args domain.Arguments) (string, error) {
	scope, err := st.scopeByArg(ctx, args, "alias")
	if err != nil {
		return "", err
	}
	title, err := canonical.OptionalString(args, "title")
	if err != nil {
		return "", err
	}
	description, err := canonical.OptionalString(args, "description")
	if err != nil {
		return "", err
	}

	updated, err := st.commands.UpdateScope(ctx, domain.UpdateScope{ID: scope.ID, Title: title, Description: description})
	if err != nil {
		return "", err
	}
	return encode(updated)
}

func (st *scopeTools) delete(ctx context.Context, args domain.Arguments) (string, error) {
	scope, err := st.scopeByArg(ctx, args, "alias")
	if err != nil {
		return "", err
	}
	cascade := canonical.GetBoolean(args, "cascade", false)

	if err := st.commands.DeleteScope(ctx, domain.DeleteScope{ID: scope.ID, Cascade: cascade}); err != nil {
		return "", err
	}
	return encode(map[string]any{"deleted": scope.ID, "canonicalAlias": scope.CanonicalAlias, "cascade": cascade})
}

func pageArgs(args domain.Arguments) (int, int, error) {
	offset, err := canonical.GetInt(args, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err := canonical.GetInt(args, "limit", DefaultLimit)
	if err != nil {
		return 0, 0, err
	}
	return offset, limit, nil
}

type scopePage struct {
	ParentID *string              `json:"parentId,omitempty"`
	Scopes   []domain.ScopeResult `json:"scopes"`
	Offset   int                  `json:"offset"`
	Limit    int                  `json:"limit"`
}

func (st *scopeTools) children(ctx context.Context, args domain.Arguments) (string, error) {
	parentAlias, ok, err := canonical.LookupString(args, "parentAlias")
	if err != nil {
		return "", err
	}
	if !ok {
		return st.roots(ctx, args)
	}

	parent, err := st.queries.GetScopeByAlias(ctx, parentAlias)
	if err != nil {
		return "", err
	}
	offset, limit, err := pageArgs(args)
	if err != nil {
		return "", err
	}
	scopes, err := st.queries.ListChildren(ctx, parent.ID, offset, limit)
	if err != nil {
		return "", err
	}
	return encode(scopePage{ParentID: &parent.ID, Scopes: scopes, Offset: offset, Limit: limit})
}

func (st *scopeTools) roots(ctx context.Context, args domain.Arguments) (string, error) {
	offset, limit, err := pageArgs(args)
	if err != nil {
		return "", err
	}
	scopes, err := st.queries.ListRootScopes(ctx, offset, limit)
	if err != nil {
		return "", err
	}
	return encode(scopePage{Scopes: scopes, Offset: offset, Limit: limit})
}

func (st *scopeTools) aliasCommand(run func(context.Context, domain.AliasCommand) error) Handler {
	return func(ctx context.Context, args domain.Arguments) (string, error) {
		scope, err := st.scopeByArg(ctx, args, "scopeAlias")
		if err != nil {
			return "", err
		}
		alias, err := canonical.GetString(args, "alias", true)
		if err != nil {
			return "", err
		}
		if err := run(ctx, domain.AliasCommand{ScopeID: scope.ID, Alias: alias}); err != nil {
			return "", err
		}
		return encode(map[string]any{"scopeId": scope.ID, "alias": alias})
	}
}

func (st *scopeTools) listAliases(ctx context.Context, args domain.Arguments) (string, error) {
	scope, err := st.scopeByArg(ctx, args, "scopeAlias")
	if err != nil {
		return "", err
	}
	aliases, err := st.queries.ListAliases(ctx, scope.ID)
	if err != nil {
		return "", err
	}
	return encode(map[string]any{"scopeId": scope.ID, "aliases": aliases})
}
