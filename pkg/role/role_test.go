package role

import (
	"context"
	"testing"

	"github.com/choreolab/choreo/pkg/llm"
	"github.com/choreolab/choreo/pkg/tool"
)

func TestInvokeSendsInstructionAndInput(t *testing.T) {
	mock := llm.NewScriptedMockProvider("the reply")
	r := New("reviewer", "You review code.", "gpt-4o-mini", nil, 5, mock)

	out, err := r.Invoke(context.Background(), "please review this")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if out != "the reply" {
		t.Errorf("got %q", out)
	}

	if len(mock.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(mock.Requests))
	}
	req := mock.Requests[0]
	if req.Model != "gpt-4o-mini" {
		t.Errorf("model %q", req.Model)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != llm.RoleSystem || req.Messages[0].Content != "You review code." {
		t.Errorf("bad system message %+v", req.Messages[0])
	}
	if req.Messages[1].Role != llm.RoleUser || req.Messages[1].Content != "please review this" {
		t.Errorf("bad user message %+v", req.Messages[1])
	}
}

func TestInvokeWrapsProviderError(t *testing.T) {
	r := New("reviewer", "x", "m", nil, 1, &llm.FailingMockProvider{})
	if _, err := r.Invoke(context.Background(), "hi"); err == nil {
		t.Fatal("expected error")
	}
}

func TestInvokeWithoutProvider(t *testing.T) {
	r := New("reviewer", "x", "m", nil, 1, nil)
	if _, err := r.Invoke(context.Background(), "hi"); err == nil {
		t.Fatal("expected error without provider")
	}
}

func TestMaxTurnsFloor(t *testing.T) {
	if r := New("x", "i", "m", nil, 0, nil); r.MaxTurns != 1 {
		t.Errorf("MaxTurns = %d, want 1", r.MaxTurns)
	}
	if r := New("x", "i", "m", nil, -3, nil); r.MaxTurns != 1 {
		t.Errorf("MaxTurns = %d, want 1", r.MaxTurns)
	}
}

func TestToolLookup(t *testing.T) {
	tools := []tool.Descriptor{
		tool.NewDescriptor("search", tool.ProviderBuiltin, nil),
		tool.NewDescriptor("create", tool.ProviderMCP, nil),
	}
	r := New("x", "i", "m", tools, 1, nil)
	if d, ok := r.Tool("create"); !ok || d.Provider != tool.ProviderMCP {
		t.Errorf("lookup failed: %+v %v", d, ok)
	}
	if _, ok := r.Tool("missing"); ok {
		t.Error("expected miss for unknown tool")
	}
}
