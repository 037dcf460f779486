// Package role holds the bound execution unit of the orchestration engine:
// a resolved instruction, a model, a tool set and a turn budget around an
// injected completion provider. Roles are immutable after construction and
// shared read-only by the dispatcher.
package role

import (
	"context"
	"log/slog"

	"github.com/choreolab/choreo/pkg/errors"
	"github.com/choreolab/choreo/pkg/llm"
	"github.com/choreolab/choreo/pkg/tool"
)

// Role is one bound role. Construct with New; the zero value is not usable.
type Role struct {
	Name        string
	Instruction string
	Model       string
	Tools       []tool.Descriptor
	MaxTurns    int

	provider llm.Provider
}

// New binds a role to its completion provider. maxTurns is floored at 1.
func New(name, instruction, model string, tools []tool.Descriptor, maxTurns int, provider llm.Provider) *Role {
	if maxTurns < 1 {
		maxTurns = 1
	}
	return &Role{
		Name:        name,
		Instruction: instruction,
		Model:       model,
		Tools:       tools,
		MaxTurns:    maxTurns,
		provider:    provider,
	}
}

// Invoke produces the role's reply to input. The system message carries the
// resolved instruction.
func (r *Role) Invoke(ctx context.Context, input string) (string, error) {
	if r == nil || r.provider == nil {
		return "", errors.New(errors.CodeInternal, "role has no completion provider", nil)
	}

	resp, err := r.provider.Chat(ctx, llm.ChatRequest{
		Model: r.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: r.Instruction},
			{Role: llm.RoleUser, Content: input},
		},
	})
	if err != nil {
		return "", errors.New(errors.CodeLLMError, "role invocation failed", err).
			WithContext("role", r.Name).
			WithContext("model", r.Model)
	}

	slog.DebugContext(ctx, "role invoked",
		"role", r.Name,
		"model", r.Model,
		"tokens", resp.Usage.TotalTokens)
	return resp.Content, nil
}

// Tool returns the bound descriptor with the given ID.
func (r *Role) Tool(id string) (tool.Descriptor, bool) {
	for _, d := range r.Tools {
		if d.ID == id {
			return d, true
		}
	}
	return tool.Descriptor{}, false
}
