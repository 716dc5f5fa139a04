package testutils

import (
	"context"
	"sync"

	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/ports"
)

// CountingPorts wraps a command and a query port and records how often each
// operation reached them. Err, when set, is returned by every call instead.
type CountingPorts struct {
	Commands ports.CommandPort
	Queries  ports.QueryPort

	mu    sync.Mutex
	calls map[string]int
	Err   error
}

// NewCountingPorts wraps the given ports, usually the memory demo backend.
func NewCountingPorts(commands ports.CommandPort, queries ports.QueryPort) *CountingPorts {
	return &CountingPorts{Commands: commands, Queries: queries, calls: make(map[string]int)}
}

// Calls returns how often op was invoked.
func (c *CountingPorts) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

// Total returns the number of calls across every operation.
func (c *CountingPorts) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

// SetErr makes every subsequent call fail with err.
func (c *CountingPorts) SetErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Err = err
}

func (c *CountingPorts) record(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[op]++
	return c.Err
}

func (c *CountingPorts) CreateScope(ctx context.Context, cmd domain.CreateScope) (domain.ScopeResult, error) {
	if err := c.record("CreateScope"); err != nil {
		return domain.ScopeResult{}, err
	}
	return c.Commands.CreateScope(ctx, cmd)
}

func (c *CountingPorts) UpdateScope(ctx context.Context, cmd domain.UpdateScope) (domain.ScopeResult, error) {
	if err := c.record("UpdateScope"); err != nil {
		return domain.ScopeResult{}, err
	}
	return c.Commands.UpdateScope(ctx, cmd)
}

func (c *CountingPorts) DeleteScope(ctx context.Context, cmd domain.DeleteScope) error {
	if err := c.record("DeleteScope"); err != nil {
		return err
	}
	return c.Commands.DeleteScope(ctx, cmd)
}

func (c *CountingPorts) AddAlias(ctx context.Context, cmd domain.AliasCommand) error {
	if err := c.record("AddAlias"); err != nil {
		return err
	}
	return c.Commands.AddAlias(ctx, cmd)
}

func (c *CountingPorts) RemoveAlias(ctx context.Context, cmd domain.AliasCommand) error {
	if err := c.record("RemoveAlias"); err != nil {
		return err
	}
	return c.Commands.RemoveAlias(ctx, cmd)
}

func (c *CountingPorts) SetCanonicalAlias(ctx context.Context, cmd domain.AliasCommand) error {
	if err := c.record("SetCanonicalAlias"); err != nil {
		return err
	}
	return c.Commands.SetCanonicalAlias(ctx, cmd)
}

func (c *CountingPorts) GetScope(ctx context.Context, id string) (domain.ScopeResult, error) {
	if err := c.record("GetScope"); err != nil {
		return domain.ScopeResult{}, err
	}
	return c.Queries.GetScope(ctx, id)
}

func (c *CountingPorts) GetScopeByAlias(ctx context.Context, alias string) (domain.ScopeResult, error) {
	if err := c.record("GetScopeByAlias"); err != nil {
		return domain.ScopeResult{}, err
	}
	return c.Queries.GetScopeByAlias(ctx, alias)
}

func (c *CountingPorts) ListRootScopes(ctx context.Context, offset, limit int) ([]domain.ScopeResult, error) {
	if err := c.record("ListRootScopes"); err != nil {
		return nil, err
	}
	return c.Queries.ListRootScopes(ctx, offset, limit)
}

func (c *CountingPorts) ListChildren(ctx context.Context, parentID string, offset, limit int) ([]domain.ScopeResult, error) {
	if err := c.record("ListChildren"); err != nil {
		return nil, err
	}
	return c.Queries.ListChildren(ctx, parentID, offset, limit)
}

func (c *CountingPorts) ListAliases(ctx context.Context, scopeID string) ([]domain.AliasInfo, error) {
	if err := c.record("ListAliases"); err != nil {
		return nil, err
	}
	return c.Queries.ListAliases(ctx, scopeID)
}
