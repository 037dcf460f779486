package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetupAppliesRegistryTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "choreo.yaml")
	yaml := "registry:\n  url: http://127.0.0.1:1\n  timeout_seconds: 3\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	old := configPath
	configPath = path
	defer func() { configPath = old }()

	e, err := setup(context.Background())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer e.close()

	if got := e.runtime.Registry.HTTP.Timeout; got != 3*time.Second {
		t.Errorf("registry client timeout = %v, want 3s", got)
	}
}
