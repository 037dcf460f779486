package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/choreolab/choreo/pkg/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		printConfig(cmd, cfg)
		return nil
	},
}

func printConfig(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "log.level: %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "log.format: %s\n", cfg.Log.Format)
	fmt.Fprintf(out, "llm.base_url: %s\n", cfg.LLM.BaseURL)
	fmt.Fprintf(out, "llm.api_key: %s\n", maskSecret(cfg.LLM.APIKey))
	fmt.Fprintf(out, "llm.model: %s\n", cfg.LLM.Model)
	fmt.Fprintf(out, "agent.id: %s\n", cfg.Agent.ID)
	fmt.Fprintf(out, "agent.role: %s\n", cfg.Agent.Role)
	fmt.Fprintf(out, "agent.prompt_ref: %s\n", cfg.Agent.PromptRef)
	fmt.Fprintf(out, "agent.prompts_dir: %s\n", cfg.Agent.PromptsDir)
	fmt.Fprintf(out, "agent.max_turns: %d\n", cfg.Agent.MaxTurns)
	fmt.Fprintf(out, "registry.url: %s\n", cfg.Registry.URL)
	fmt.Fprintf(out, "registry.timeout_seconds: %d\n", cfg.Registry.TimeoutSeconds)
	fmt.Fprintf(out, "tools.cache_ttl_seconds: %d\n", cfg.Tools.CacheTTLSeconds)
	fmt.Fprintf(out, "tools.debug_mock: %t\n", cfg.Tools.DebugMock)
	fmt.Fprintf(out, "tools.builtin: %v\n", cfg.Tools.Builtin)
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
