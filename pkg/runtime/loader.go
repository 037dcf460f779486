package runtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/choreolab/choreo/pkg/config"
	"github.com/choreolab/choreo/pkg/llm"
	"github.com/choreolab/choreo/pkg/prompt"
	"github.com/choreolab/choreo/pkg/registry"
	"github.com/choreolab/choreo/pkg/resilience"
	"github.com/choreolab/choreo/pkg/role"
	"github.com/choreolab/choreo/pkg/telemetry"
	"github.com/choreolab/choreo/pkg/tool"
)

const (
	registryAttempts = 3
	registryBackoff  = 2 * time.Second
)

// Loader builds a Dispatcher from configuration. When an agent ID is set it
// fetches the runtime configuration from the registry; otherwise, or when
// the registry cannot serve one, it falls back to a legacy single-role setup
// from local configuration.
type Loader struct {
	Config   *config.Config
	Registry *registry.Client
	Prompts  *prompt.Resolver
	Tools    *tool.Loader
	Provider llm.Provider
	Metrics  *telemetry.OrchestrationMetrics

	// Retry overrides the registry fetch retry policy when MaxAttempts > 0.
	Retry resilience.RetryConfig
}

// Load resolves the runtime configuration and binds its roles.
func (l *Loader) Load(ctx context.Context) (*Dispatcher, error) {
	agentID := l.Config.Agent.ID
	if agentID == "" {
		slog.InfoContext(ctx, "no agent id configured, using legacy single-role mode")
		return l.legacy(ctx), nil
	}

	var agent *registry.Agent
	retry := l.Retry
	if retry.MaxAttempts < 1 {
		retry = resilience.FixedRetryConfig(registryAttempts, registryBackoff)
	}
	// Each attempt is bounded by the configured registry timeout.
	timeout := resilience.TimeoutConfig{Duration: l.Config.Registry.Timeout()}
	err := retry.Do(ctx, func() error {
		return resilience.WithTimeout(ctx, timeout, func(ctx context.Context) error {
			fetched, err := l.Registry.Agent(ctx, agentID)
			if err != nil {
				return err
			}
			agent = fetched
			return nil
		})
	})
	if err != nil {
		slog.ErrorContext(ctx, "registry unavailable, falling back to legacy mode",
			"agent_id", agentID, "error", err)
		return l.legacy(ctx), nil
	}

	if len(agent.RuntimeConfig) == 0 {
		slog.InfoContext(ctx, "agent has no runtime config, using legacy mode",
			"agent_id", agentID)
		return l.legacy(ctx), nil
	}

	var rc Config
	if err := json.Unmarshal(agent.RuntimeConfig, &rc); err != nil {
		slog.ErrorContext(ctx, "runtime config is malformed, using legacy mode",
			"agent_id", agentID, "error", err)
		return l.legacy(ctx), nil
	}
	if len(rc.Roles) == 0 {
		slog.WarnContext(ctx, "runtime config has no roles, using legacy mode",
			"agent_id", agentID)
		return l.legacy(ctx), nil
	}

	available := l.loadTools(ctx)
	roles := make([]*role.Role, 0, len(rc.Roles))
	for _, spec := range rc.Roles {
		roles = append(roles, l.bind(ctx, spec, available))
	}

	slog.InfoContext(ctx, "runtime loaded",
		"agent_id", agentID,
		"execution_type", string(rc.ExecutionType.Normalize()),
		"roles", len(roles))
	return NewDispatcher(&rc, roles, l.Metrics), nil
}

// bind resolves one RoleSpec into a bound role. An explicit model on the
// spec wins over a model pinned by the resolved prompt; the configured
// default comes last.
func (l *Loader) bind(ctx context.Context, spec RoleSpec, available []tool.Descriptor) *role.Role {
	res := l.Prompts.ResolveSpec(ctx, prompt.Spec{
		Name:         spec.Name,
		PromptInline: spec.PromptInline,
		PromptRef:    spec.PromptRef,
		Instruction:  spec.Instruction,
		Variables:    spec.Variables,
	}, nil)
	instruction := res.Text

	model := spec.Model
	if model == "" {
		model = res.Model
	}
	if model == "" {
		model = l.Config.LLM.Model
	}
	maxTurns := spec.MaxTurns
	if maxTurns < 1 {
		maxTurns = l.Config.Agent.MaxTurns
	}

	return role.New(spec.Name, instruction, model,
		l.selectTools(spec.Tools, available), maxTurns, l.Provider)
}

// selectTools picks the referenced active descriptors from the discovered
// set. A role without references gets the whole set.
func (l *Loader) selectTools(refs []ToolRef, available []tool.Descriptor) []tool.Descriptor {
	if len(refs) == 0 {
		return available
	}
	var out []tool.Descriptor
	for _, ref := range refs {
		if !ref.Active || ref.ID == "" {
			continue
		}
		for _, d := range available {
			if d.ID == ref.ID {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

func (l *Loader) loadTools(ctx context.Context) []tool.Descriptor {
	if l.Tools == nil {
		return nil
	}
	return l.Tools.LoadTools(ctx)
}

// legacy builds the single-role fallback from local configuration. The
// prompt chain still runs; when it bottoms out at the generic default, the
// per-role default takes its place.
func (l *Loader) legacy(ctx context.Context) *Dispatcher {
	name := l.Config.Agent.Role
	if name == "" {
		name = "general"
	}

	instruction := l.Prompts.Resolve(ctx, prompt.Spec{
		Name:        name,
		PromptRef:   l.Config.Agent.PromptRef,
		Instruction: l.Config.Agent.SystemPrompt,
	}, nil)
	if instruction == prompt.DefaultInstruction {
		instruction = prompt.RoleDefault(name)
	}

	bound := role.New(name, instruction, l.Config.LLM.Model,
		l.loadTools(ctx), l.Config.Agent.MaxTurns, l.Provider)

	cfg := &Config{
		ExecutionType: ExecSingle,
		Roles:         []RoleSpec{{Name: name}},
	}
	return NewDispatcher(cfg, []*role.Role{bound}, l.Metrics)
}
