// Package runtime turns a declarative runtime configuration into a set of
// bound roles and executes one of five topologies over them. One deployable
// unit behaves as any pattern, driven entirely by configuration.
package runtime

import (
	"encoding/json"
)

// ExecutionType selects the topology the dispatcher runs.
type ExecutionType string

const (
	ExecSingle      ExecutionType = "single"
	ExecSequential  ExecutionType = "sequential"
	ExecParallel    ExecutionType = "parallel"
	ExecCoordinator ExecutionType = "coordinator"
	ExecHubSpoke    ExecutionType = "hub-spoke"
)

// Known reports whether the value is one of the five supported patterns.
func (e ExecutionType) Known() bool {
	switch e {
	case ExecSingle, ExecSequential, ExecParallel, ExecCoordinator, ExecHubSpoke:
		return true
	}
	return false
}

// Normalize maps unknown values to single.
func (e ExecutionType) Normalize() ExecutionType {
	if e.Known() {
		return e
	}
	return ExecSingle
}

// ToolRef references a tool by ID. On the wire it is either a bare string
// or an object with id/tool_id/name, an optional provider and an active flag.
type ToolRef struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Active   bool   `json:"active"`
}

// UnmarshalJSON accepts both the string shorthand and the object form.
func (t *ToolRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ToolRef{ID: s, Provider: "builtin", Active: true}
		return nil
	}
	var obj struct {
		ID       string `json:"id"`
		ToolID   string `json:"tool_id"`
		Name     string `json:"name"`
		Provider string `json:"provider"`
		Active   *bool  `json:"active"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	id := obj.ID
	if id == "" {
		id = obj.ToolID
	}
	if id == "" {
		id = obj.Name
	}
	provider := obj.Provider
	if provider == "" {
		provider = "builtin"
	}
	active := true
	if obj.Active != nil {
		active = *obj.Active
	}
	*t = ToolRef{ID: id, Provider: provider, Active: active}
	return nil
}

// RoleSpec is the declarative definition of one role. Immutable after load.
type RoleSpec struct {
	Name         string            `json:"name"`
	PromptInline string            `json:"prompt_inline,omitempty"`
	PromptRef    string            `json:"prompt_ref,omitempty"`
	Instruction  string            `json:"instruction,omitempty"`
	Tools        []ToolRef         `json:"tools,omitempty"`
	MaxTurns     int               `json:"max_turns,omitempty"`
	Model        string            `json:"model,omitempty"`
	Variables    map[string]string `json:"metadata,omitempty"`
}

// Config is the runtime configuration stored in the registry per agent.
// Role names referenced by the pattern-specific fields must exist in Roles;
// patterns whose named role is absent fall back to single.
type Config struct {
	ExecutionType   ExecutionType `json:"execution_type"`
	Roles           []RoleSpec    `json:"roles"`
	ChainOutput     *bool         `json:"chain_output,omitempty"`
	ParallelRoles   []string      `json:"parallel_roles,omitempty"`
	AggregatorRole  string        `json:"aggregator_role,omitempty"`
	CoordinatorRole string        `json:"coordinator_role,omitempty"`
	WorkerRoles     []string      `json:"worker_roles,omitempty"`
	HubRole         string        `json:"hub_role,omitempty"`
	SpokeRoles      []string      `json:"spoke_roles,omitempty"`
}

// ChainsOutput reports whether sequential roles feed their output forward.
// Defaults to true when the wire field is absent.
func (c *Config) ChainsOutput() bool {
	if c == nil || c.ChainOutput == nil {
		return true
	}
	return *c.ChainOutput
}
