package secrets

import (
	"context"
	"testing"
)

func TestEnvResolver(t *testing.T) {
	t.Setenv("CHOREO_USER_CREDENTIAL__ALICE__JIRA_MCP", "secret-token")

	r := EnvResolver{}
	got, ok := r.UserCredential(context.Background(), "alice", "jira-mcp")
	if !ok {
		t.Fatal("expected credential to resolve")
	}
	if got != "secret-token" {
		t.Errorf("unexpected credential %q", got)
	}
}

func TestEnvResolverAbsent(t *testing.T) {
	r := EnvResolver{}
	if _, ok := r.UserCredential(context.Background(), "nobody", "nothing"); ok {
		t.Error("expected no credential")
	}
}

func TestEnvResolverEmptyInputs(t *testing.T) {
	r := EnvResolver{}
	if _, ok := r.UserCredential(context.Background(), "", "svc"); ok {
		t.Error("empty user must not resolve")
	}
	if _, ok := r.UserCredential(context.Background(), "user", ""); ok {
		t.Error("empty service must not resolve")
	}
}

func TestStatic(t *testing.T) {
	r := Static{"bob/github": "tok"}
	if got, ok := r.UserCredential(context.Background(), "bob", "github"); !ok || got != "tok" {
		t.Errorf("expected tok, got %q ok=%v", got, ok)
	}
	if _, ok := r.UserCredential(context.Background(), "bob", "jira"); ok {
		t.Error("unexpected credential")
	}
}
