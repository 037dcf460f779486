// Package prompt resolves a role's system instruction from an ordered chain
// of sources. Resolution never fails: every source failure (timeout,
// non-success status, empty body, missing file) means "source declined" and
// the chain moves on, ending at a hard-coded default.
package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/choreolab/choreo/pkg/registry"
	"github.com/choreolab/choreo/pkg/telemetry"
)

// Source labels where a resolved instruction came from.
const (
	SourceInline      = "inline"
	SourceStore       = "store"
	SourceMapping     = "mapping"
	SourceInstruction = "instruction"
	SourceRegistry    = "registry"
	SourceFile        = "file"
	SourceDefault     = "default"
)

// DefaultInstruction is the last-resort instruction text.
const DefaultInstruction = "You are an AI assistant."

// RoleDefault is the per-role default used by the legacy single-role loader.
func RoleDefault(role string) string {
	if role == "" {
		role = "general"
	}
	return fmt.Sprintf("You are a %s agent.", role)
}

// Spec carries the prompt-relevant fields of a role definition.
type Spec struct {
	Name         string
	PromptInline string
	PromptRef    string
	Instruction  string
	Variables    map[string]string
}

// Resolver walks the source chain. Any of the collaborators may be nil;
// a nil collaborator simply declines.
type Resolver struct {
	Store    *StoreClient
	Registry *registry.Client
	Dir      string
	Metrics  *telemetry.OrchestrationMetrics
}

// Resolution is the outcome of a chain walk. Model is an optional hint
// declared by whichever source produced Text.
type Resolution struct {
	Text   string
	Source string
	Model  string
}

// Resolve returns the instruction text for the spec. litellmPrompts is an
// externally supplied name-to-text mapping consulted after the prompt store.
func (r *Resolver) Resolve(ctx context.Context, spec Spec, litellmPrompts map[string]string) string {
	return r.ResolveSpec(ctx, spec, litellmPrompts).Text
}

// ResolveSpec walks the chain and returns the full resolution. Only the
// prompt store carries a model hint today.
func (r *Resolver) ResolveSpec(ctx context.Context, spec Spec, litellmPrompts map[string]string) Resolution {
	res := r.resolve(ctx, spec, litellmPrompts)
	slog.InfoContext(ctx, "prompt resolved", "role", spec.Name, "source", res.Source)
	if r != nil {
		r.Metrics.RecordPromptSource(ctx, spec.Name, res.Source)
	}
	return res
}

func (r *Resolver) resolve(ctx context.Context, spec Spec, litellmPrompts map[string]string) Resolution {
	if spec.PromptInline != "" {
		return Resolution{Text: spec.PromptInline, Source: SourceInline}
	}

	if r != nil && spec.PromptRef != "" {
		stored, err := r.Store.Fetch(ctx, spec.PromptRef)
		if err == nil {
			return Resolution{
				Text:   Substitute(stored.Body, spec.Variables),
				Source: SourceStore,
				Model:  stored.Model,
			}
		}
		slog.DebugContext(ctx, "prompt store declined",
			"ref", spec.PromptRef, "error", err)
	}

	if text, ok := litellmPrompts[spec.Name]; ok && text != "" {
		return Resolution{Text: text, Source: SourceMapping}
	}

	if spec.Instruction != "" {
		return Resolution{Text: spec.Instruction, Source: SourceInstruction}
	}

	if r != nil && r.Registry != nil {
		ref := spec.PromptRef
		if ref == "" {
			ref = spec.Name
		}
		if ref != "" {
			text, err := r.Registry.Prompt(ctx, ref)
			if err == nil && text != "" {
				return Resolution{Text: Substitute(text, spec.Variables), Source: SourceRegistry}
			}
		}
	}

	if r != nil && r.Dir != "" && spec.Name != "" {
		if text, ok := readPromptFile(r.Dir, spec.Name); ok {
			return Resolution{Text: text, Source: SourceFile}
		}
	}

	return Resolution{Text: DefaultInstruction, Source: SourceDefault}
}

// readPromptFile tries {role}.txt then {role}.md, then the default.* pair.
func readPromptFile(dir, role string) (string, bool) {
	names := []string{role + ".txt", role + ".md", "default.txt", "default.md"}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			return text, true
		}
	}
	return "", false
}
