package domain

import "time"

// ScopeResult is the read model of a scope returned by the ports.
type ScopeResult struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	ParentID       *string   `json:"parentId,omitempty"`
	CanonicalAlias string    `json:"canonicalAlias"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AliasInfo describes one alias of a scope.
type AliasInfo struct {
	Name        string    `json:"name"`
	ScopeID     string    `json:"scopeId"`
	IsCanonical bool      `json:"isCanonical"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateScope asks the command port to create a scope.
// GenerateAlias requests a generated canonical alias when CustomAlias is empty.
type CreateScope struct {
	Title         string
	Description   *string
	ParentID      *string
	CustomAlias   string
	GenerateAlias bool
}

// UpdateScope changes the fields that are non-nil.
type UpdateScope struct {
	ID          string
	Title       *string
	Description *string
}

// DeleteScope removes a scope, and its descendants when Cascade is set.
type DeleteScope struct {
	ID      string
	Cascade bool
}

// AliasCommand targets one alias of one scope.
type AliasCommand struct {
	ScopeID string
	Alias   string
}
