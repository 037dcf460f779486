package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected default model gpt-4o-mini, got %s", cfg.LLM.Model)
	}
	if cfg.Tools.CacheTTLSeconds != 300 {
		t.Errorf("expected default cache ttl 300, got %d", cfg.Tools.CacheTTLSeconds)
	}
	if cfg.Agent.MaxTurns != 10 {
		t.Errorf("expected default max turns 10, got %d", cfg.Agent.MaxTurns)
	}
	if len(cfg.Tools.Builtin) != 2 {
		t.Errorf("expected default builtin tool list, got %v", cfg.Tools.Builtin)
	}
}

func TestLoadEnv(t *testing.T) {
	os.Setenv("CHOREO_LLM__BASE_URL", "http://litellm.internal:4000")
	os.Setenv("CHOREO_AGENT__ID", "agent-42")
	defer os.Unsetenv("CHOREO_LLM__BASE_URL")
	defer os.Unsetenv("CHOREO_AGENT__ID")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.BaseURL != "http://litellm.internal:4000" {
		t.Errorf("expected llm base url from env, got %s", cfg.LLM.BaseURL)
	}
	if cfg.Agent.ID != "agent-42" {
		t.Errorf("expected agent id from env, got %s", cfg.Agent.ID)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
registry:
  url: "http://registry:9500"
tools:
  cache_ttl_seconds: 60
  debug_mock: true
  builtin:
    - get_date_time
`
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Registry.URL != "http://registry:9500" {
		t.Errorf("expected registry url from file, got %s", cfg.Registry.URL)
	}
	if cfg.Tools.CacheTTLSeconds != 60 {
		t.Errorf("expected ttl 60, got %d", cfg.Tools.CacheTTLSeconds)
	}
	if !cfg.Tools.DebugMock {
		t.Error("expected debug mock enabled")
	}
	if len(cfg.Tools.Builtin) != 1 || cfg.Tools.Builtin[0] != "get_date_time" {
		t.Errorf("expected builtin list from file, got %v", cfg.Tools.Builtin)
	}
}

func TestMaxTurnsFloor(t *testing.T) {
	os.Setenv("CHOREO_AGENT__MAX_TURNS", "0")
	defer os.Unsetenv("CHOREO_AGENT__MAX_TURNS")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Agent.MaxTurns != 1 {
		t.Errorf("max turns must be floored at 1, got %d", cfg.Agent.MaxTurns)
	}
}
