// Package tool defines the callable capabilities that equip Choreo roles,
// and the process-wide discovery loader that caches them.
package tool

import (
	"context"

	"github.com/choreolab/choreo/pkg/errors"
)

// Provider identifies where a tool descriptor came from.
type Provider string

const (
	ProviderBuiltin Provider = "builtin"
	ProviderMCP     Provider = "mcp"
)

// InvokeFunc executes a tool call. userID is optional; when present, auth
// wrapped tools resolve a per-user credential before forwarding the call.
type InvokeFunc func(ctx context.Context, args map[string]any, userID string) (string, error)

// Descriptor is a named, invocable capability. Descriptors are immutable
// values shared read-only across all roles that reference them; decorators
// compose a new descriptor instead of mutating the callable in place.
type Descriptor struct {
	ID               string
	Provider         Provider
	RequiresUserAuth bool

	invoke InvokeFunc
}

// NewDescriptor builds a descriptor around an invocation function.
func NewDescriptor(id string, provider Provider, fn InvokeFunc) Descriptor {
	return Descriptor{
		ID:       id,
		Provider: provider,
		invoke:   fn,
	}
}

// Invoke executes the tool.
func (d Descriptor) Invoke(ctx context.Context, args map[string]any, userID string) (string, error) {
	if d.invoke == nil {
		return "", errors.New(errors.CodeToolFailure, "tool has no implementation", nil).
			WithContext("tool", d.ID)
	}
	return d.invoke(ctx, args, userID)
}

// IDs returns the descriptor IDs in order.
func IDs(descriptors []Descriptor) []string {
	ids := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		ids = append(ids, d.ID)
	}
	return ids
}
