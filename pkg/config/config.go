// Package config loads the Choreo runtime configuration from defaults,
// an optional YAML file and CHOREO_* environment variables, in that order.
// Nested keys use a double underscore in env form: CHOREO_LLM__BASE_URL
// maps to llm.base_url.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log      LogConfig      `koanf:"log"`
	LLM      LLMConfig      `koanf:"llm"`
	Agent    AgentConfig    `koanf:"agent"`
	Registry RegistryConfig `koanf:"registry"`
	Tools    ToolsConfig    `koanf:"tools"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

// LLMConfig points at the OpenAI-compatible completion proxy. The same
// base URL and key serve the prompt-store endpoints of the proxy.
type LLMConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
}

// AgentConfig holds the identity and the legacy single-role fallbacks.
type AgentConfig struct {
	ID           string `koanf:"id"`
	Role         string `koanf:"role"`
	SystemPrompt string `koanf:"system_prompt"`
	PromptRef    string `koanf:"prompt_ref"`
	PromptsDir   string `koanf:"prompts_dir"`
	MaxTurns     int    `koanf:"max_turns"`
}

type RegistryConfig struct {
	URL            string `koanf:"url"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

type ToolsConfig struct {
	CacheTTLSeconds int      `koanf:"cache_ttl_seconds"`
	DebugMock       bool     `koanf:"debug_mock"`
	Builtin         []string `koanf:"builtin"`
}

// CacheTTL returns the tool cache TTL as a duration.
func (t ToolsConfig) CacheTTL() time.Duration {
	return time.Duration(t.CacheTTLSeconds) * time.Second
}

// Timeout returns the per-call registry timeout as a duration.
func (r RegistryConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Global k instance
var k = koanf.New(".")

func Load(path string) (*Config, error) {
	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("llm.base_url", "http://localhost:4000")
	k.Set("llm.api_key", "")
	k.Set("llm.model", "gpt-4o-mini")

	k.Set("agent.id", "")
	k.Set("agent.role", "general")
	k.Set("agent.system_prompt", "")
	k.Set("agent.prompt_ref", "")
	k.Set("agent.prompts_dir", "prompts")
	k.Set("agent.max_turns", 10)

	k.Set("registry.url", "http://localhost:9500")
	k.Set("registry.timeout_seconds", 10)

	k.Set("tools.cache_ttl_seconds", 300)
	k.Set("tools.debug_mock", false)
	k.Set("tools.builtin", []string{"code_search", "get_file_summary"})

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (CHOREO_LLM__BASE_URL -> llm.base_url)
	if err := k.Load(env.Provider("CHOREO_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "CHOREO_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if cfg.Agent.MaxTurns < 1 {
		cfg.Agent.MaxTurns = 1
	}

	return &cfg, nil
}
