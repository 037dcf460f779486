package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/choreolab/choreo/pkg/secrets"
	"github.com/choreolab/choreo/pkg/tool"
)

// toolCaller is the slice of Client the discoverer needs; tests substitute it.
type toolCaller interface {
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)
	Close() error
}

// DiscovererOption customizes the Discoverer.
type DiscovererOption func(*Discoverer)

// WithMockMode substitutes deterministic mock descriptors for live server
// discovery. Auth wrapping still applies, so credential flows stay testable
// without live tool servers.
func WithMockMode(enabled bool) DiscovererOption {
	return func(d *Discoverer) {
		d.mockMode = enabled
	}
}

// WithClientOptions forwards options to every server client.
func WithClientOptions(opts ...ClientOption) DiscovererOption {
	return func(d *Discoverer) {
		d.clientOpts = opts
	}
}

// withConnector overrides the connection factory; used by tests.
func withConnector(connect func(ctx context.Context, cfg ServerConfig) (toolCaller, error)) DiscovererOption {
	return func(d *Discoverer) {
		d.connect = connect
	}
}

// Discoverer lists tools from configured MCP servers and adapts them to
// tool descriptors. Descriptors from servers that require user authorization
// are wrapped with credential injection. Server connections are established
// lazily and reused across discovery and tool calls.
type Discoverer struct {
	servers    []ServerConfig
	resolver   secrets.Resolver
	mockMode   bool
	clientOpts []ClientOption
	connect    func(ctx context.Context, cfg ServerConfig) (toolCaller, error)

	mu      sync.Mutex
	clients map[string]toolCaller
}

// NewDiscoverer creates a Discoverer over the given servers.
func NewDiscoverer(servers []ServerConfig, resolver secrets.Resolver, opts ...DiscovererOption) *Discoverer {
	d := &Discoverer{
		servers:  servers,
		resolver: resolver,
		clients:  make(map[string]toolCaller),
	}
	d.connect = func(ctx context.Context, cfg ServerConfig) (toolCaller, error) {
		return Connect(ctx, cfg, d.clientOpts...)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover implements tool.Discoverer. A server that fails to respond is
// skipped; tools from the remaining servers are still returned.
func (d *Discoverer) Discover(ctx context.Context) ([]tool.Descriptor, error) {
	if d.mockMode {
		return d.mockTools(), nil
	}

	var all []tool.Descriptor
	for _, srv := range d.servers {
		descriptors, err := d.discoverServer(ctx, srv)
		if err != nil {
			slog.WarnContext(ctx, "mcp server discovery failed, skipping",
				"server", srv.ServerName, "error", err)
			continue
		}
		all = append(all, descriptors...)
	}
	return all, nil
}

// Close closes all open server connections.
func (d *Discoverer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var firstErr error
	for name, c := range d.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(d.clients, name)
	}
	return firstErr
}

func (d *Discoverer) discoverServer(ctx context.Context, srv ServerConfig) ([]tool.Descriptor, error) {
	caller, err := d.client(ctx, srv)
	if err != nil {
		return nil, err
	}
	tools, err := caller.ListTools(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]tool.Descriptor, 0, len(tools))
	for _, t := range tools {
		out = append(out, d.adapt(srv, t))
	}
	return out, nil
}

// client returns the cached connection for the server, dialing on first use.
func (d *Discoverer) client(ctx context.Context, srv ServerConfig) (toolCaller, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.clients[srv.ServerName]; ok {
		return c, nil
	}
	c, err := d.connect(ctx, srv)
	if err != nil {
		return nil, err
	}
	d.clients[srv.ServerName] = c
	return c, nil
}

// adapt turns an MCP tool into a descriptor whose invocation calls back
// through the owning server's client.
func (d *Discoverer) adapt(srv ServerConfig, t mcp.Tool) tool.Descriptor {
	name := t.Name
	descriptor := tool.NewDescriptor(name, tool.ProviderMCP,
		func(ctx context.Context, args map[string]any, userID string) (string, error) {
			caller, err := d.client(ctx, srv)
			if err != nil {
				return "", err
			}
			result, err := caller.CallTool(ctx, name, args)
			if err != nil {
				return "", err
			}
			return resultText(result)
		})
	if srv.RequiresUserAuth {
		descriptor = tool.WithUserAuth(descriptor, srv.ServerName, d.resolver)
	}
	return descriptor
}

func (d *Discoverer) mockTools() []tool.Descriptor {
	out := make([]tool.Descriptor, 0, len(d.servers))
	for _, srv := range d.servers {
		name := srv.ServerName
		descriptor := tool.NewDescriptor(name+"_auth_tool", tool.ProviderMCP,
			func(ctx context.Context, args map[string]any, userID string) (string, error) {
				return "Mock result from " + name, nil
			})
		if srv.RequiresUserAuth {
			descriptor = tool.WithUserAuth(descriptor, name, d.resolver)
		}
		out = append(out, descriptor)
	}
	return out
}

var _ tool.Discoverer = (*Discoverer)(nil)

func resultText(result *mcp.CallToolResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("mcp tool result is nil")
	}
	text := extractTextContent(result.Content)
	if result.IsError {
		return "", fmt.Errorf("mcp tool returned error: %s", text)
	}
	return text, nil
}

func extractTextContent(items []mcp.Content) string {
	if len(items) == 0 {
		return ""
	}
	var parts []string
	for _, item := range items {
		switch content := item.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		}
	}
	return strings.Join(parts, "\n")
}
