package mcp

import (
	"context"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/choreolab/choreo/pkg/secrets"
	"github.com/choreolab/choreo/pkg/tool"
)

// fakeCaller stands in for a live server connection.
type fakeCaller struct {
	tools    []mcp.Tool
	listErr  error
	lastArgs map[string]any
	closed   bool
}

func (f *fakeCaller) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	return f.tools, f.listErr
}

func (f *fakeCaller) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	f.lastArgs = args
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "result of " + name}},
	}, nil
}

func (f *fakeCaller) Close() error {
	f.closed = true
	return nil
}

func TestDiscoverAdaptsTools(t *testing.T) {
	caller := &fakeCaller{tools: []mcp.Tool{{Name: "search"}, {Name: "create_ticket"}}}
	d := NewDiscoverer(
		[]ServerConfig{{ServerName: "jira", Transport: "http", Endpoint: "http://jira"}},
		nil,
		withConnector(func(ctx context.Context, cfg ServerConfig) (toolCaller, error) {
			return caller, nil
		}),
	)

	descriptors, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(descriptors) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(descriptors))
	}
	if descriptors[0].ID != "search" || descriptors[0].Provider != tool.ProviderMCP {
		t.Errorf("unexpected descriptor %+v", descriptors[0])
	}

	out, err := descriptors[0].Invoke(context.Background(), map[string]any{"q": "bug"}, "")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if out != "result of search" {
		t.Errorf("unexpected tool output %q", out)
	}
}

func TestDiscoverSkipsFailingServer(t *testing.T) {
	good := &fakeCaller{tools: []mcp.Tool{{Name: "ok_tool"}}}
	d := NewDiscoverer(
		[]ServerConfig{
			{ServerName: "broken", Transport: "http", Endpoint: "http://broken"},
			{ServerName: "good", Transport: "http", Endpoint: "http://good"},
		},
		nil,
		withConnector(func(ctx context.Context, cfg ServerConfig) (toolCaller, error) {
			if cfg.ServerName == "broken" {
				return nil, fmt.Errorf("connection refused")
			}
			return good, nil
		}),
	)

	descriptors, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(descriptors) != 1 || descriptors[0].ID != "ok_tool" {
		t.Errorf("expected only the healthy server's tool, got %+v", tool.IDs(descriptors))
	}
}

func TestDiscoverWrapsUserAuth(t *testing.T) {
	caller := &fakeCaller{tools: []mcp.Tool{{Name: "secure_tool"}}}
	resolver := secrets.Static{"u1/jira": "tok-123"}
	d := NewDiscoverer(
		[]ServerConfig{{ServerName: "jira", Transport: "http", Endpoint: "http://jira", RequiresUserAuth: true}},
		resolver,
		withConnector(func(ctx context.Context, cfg ServerConfig) (toolCaller, error) {
			return caller, nil
		}),
	)

	descriptors, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(descriptors) != 1 || !descriptors[0].RequiresUserAuth {
		t.Fatalf("expected auth-wrapped descriptor, got %+v", descriptors)
	}

	if _, err := descriptors[0].Invoke(context.Background(), map[string]any{"id": "T-1"}, "u1"); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if caller.lastArgs["auth_token"] != "tok-123" {
		t.Errorf("credential not injected: %+v", caller.lastArgs)
	}
	if caller.lastArgs["id"] != "T-1" {
		t.Errorf("original args lost: %+v", caller.lastArgs)
	}

	// Without a user the call passes through without a credential.
	caller.lastArgs = nil
	if _, err := descriptors[0].Invoke(context.Background(), map[string]any{"id": "T-2"}, ""); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if _, present := caller.lastArgs["auth_token"]; present {
		t.Error("credential injected without a user")
	}
}

func TestDiscoverMockMode(t *testing.T) {
	d := NewDiscoverer(
		[]ServerConfig{
			{ServerName: "jira", Transport: "http", Endpoint: "http://jira"},
			{ServerName: "github", Transport: "http", Endpoint: "http://github", RequiresUserAuth: true},
		},
		secrets.Static{},
		WithMockMode(true),
	)

	descriptors, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(descriptors) != 2 {
		t.Fatalf("expected a mock tool per server, got %d", len(descriptors))
	}
	if descriptors[0].ID != "jira_auth_tool" {
		t.Errorf("unexpected mock tool id %q", descriptors[0].ID)
	}
	if !descriptors[1].RequiresUserAuth {
		t.Error("mock descriptor lost auth requirement")
	}

	out, err := descriptors[0].Invoke(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if out != "Mock result from jira" {
		t.Errorf("unexpected mock output %q", out)
	}
}

func TestCloseShutsDownClients(t *testing.T) {
	caller := &fakeCaller{tools: []mcp.Tool{{Name: "t"}}}
	d := NewDiscoverer(
		[]ServerConfig{{ServerName: "s", Transport: "http", Endpoint: "http://s"}},
		nil,
		withConnector(func(ctx context.Context, cfg ServerConfig) (toolCaller, error) {
			return caller, nil
		}),
	)
	if _, err := d.Discover(context.Background()); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !caller.closed {
		t.Error("client connection not closed")
	}
}

func TestResultTextError(t *testing.T) {
	result := &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "boom"}},
	}
	if _, err := resultText(result); err == nil {
		t.Fatal("expected error for IsError result")
	}
	if _, err := resultText(nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}
