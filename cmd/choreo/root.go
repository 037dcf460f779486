package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/choreolab/choreo/pkg/config"
	"github.com/choreolab/choreo/pkg/llm"
	"github.com/choreolab/choreo/pkg/mcp"
	"github.com/choreolab/choreo/pkg/prompt"
	"github.com/choreolab/choreo/pkg/registry"
	"github.com/choreolab/choreo/pkg/runtime"
	"github.com/choreolab/choreo/pkg/secrets"
	"github.com/choreolab/choreo/pkg/telemetry"
	"github.com/choreolab/choreo/pkg/tool"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "choreo",
	Short:         "Dynamic multi-role LLM orchestration engine",
	Long:          "Choreo composes LLM-backed roles into single, sequential, parallel,\ncoordinator and hub-spoke topologies, driven entirely by configuration.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML configuration file")
}

// engine bundles the wired components behind the CLI commands.
type engine struct {
	cfg     *config.Config
	tools   *tool.Loader
	mcp     *mcp.Discoverer
	runtime *runtime.Loader
}

// setup loads configuration, configures logging and wires the component
// graph. Commands share this path so flags behave the same everywhere.
func setup(ctx context.Context) (*engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	metrics, err := telemetry.NewOrchestrationMetrics()
	if err != nil {
		return nil, err
	}

	reg := registry.NewClient(cfg.Registry.URL)
	reg.AuthToken = cfg.LLM.APIKey
	if t := cfg.Registry.Timeout(); t > 0 {
		reg.HTTP.Timeout = t
	}

	resolver := secrets.EnvResolver{}
	servers := mcp.ListServers(ctx, reg)
	discoverer := mcp.NewDiscoverer(servers, resolver,
		mcp.WithMockMode(cfg.Tools.DebugMock))

	tools := tool.NewLoader(
		[]tool.Discoverer{discoverer},
		tool.WithTTL(cfg.Tools.CacheTTL()),
		tool.WithBuiltinSource(builtinSource(reg, cfg)),
		tool.WithMetrics(metrics),
	)

	prompts := &prompt.Resolver{
		Store:    prompt.NewStoreClient(cfg.LLM.BaseURL, cfg.LLM.APIKey),
		Registry: reg,
		Dir:      cfg.Agent.PromptsDir,
		Metrics:  metrics,
	}

	loader := &runtime.Loader{
		Config:   cfg,
		Registry: reg,
		Prompts:  prompts,
		Tools:    tools,
		Provider: llm.NewLiteLLM(cfg.LLM.BaseURL, cfg.LLM.APIKey),
		Metrics:  metrics,
	}

	return &engine{
		cfg:     cfg,
		tools:   tools,
		mcp:     discoverer,
		runtime: loader,
	}, nil
}

// builtinSource prefers the registry's builtin tool list and falls back to
// the configured default on failure or an empty answer.
func builtinSource(reg *registry.Client, cfg *config.Config) tool.BuiltinSource {
	return func(ctx context.Context) []string {
		ids, err := reg.BuiltinTools(ctx)
		if err != nil || len(ids) == 0 {
			return cfg.Tools.Builtin
		}
		return ids
	}
}

func (e *engine) close() {
	if e != nil && e.mcp != nil {
		e.mcp.Close()
	}
}
