package ports

import (
	"context"

	"github.com/kamiazya/scopes/pkg/domain"
)

// CommandPort is the write side of the scopes application layer.
// Structured failures are returned as domain.ContractError; any other error is a fault.
type CommandPort interface {
	CreateScope(ctx context.Context, cmd domain.CreateScope) (domain.ScopeResult, error)
	UpdateScope(ctx context.Context, cmd domain.UpdateScope) (domain.ScopeResult, error)
	DeleteScope(ctx context.Context, cmd domain.DeleteScope) error
	AddAlias(ctx context.Context, cmd domain.AliasCommand) error
	RemoveAlias(ctx context.Context, cmd domain.AliasCommand) error
	SetCanonicalAlias(ctx context.Context, cmd domain.AliasCommand) error
}

// QueryPort is the read side of the scopes application layer.
type QueryPort interface {
	GetScope(ctx context.Context, id string) (domain.ScopeResult, error)
	GetScopeByAlias(ctx context.Context, alias string) (domain.ScopeResult, error)
	ListRootScopes(ctx context.Context, offset, limit int) ([]domain.ScopeResult, error)
	ListChildren(ctx context.Context, parentID string, offset, limit int) ([]domain.ScopeResult, error)
	ListAliases(ctx context.Context, scopeID string) ([]domain.AliasInfo, error)
}
