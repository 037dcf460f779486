package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRetries = 2
	defaultBackoff = 200 * time.Millisecond
)

// ClientOption customizes the MCP client wrapper behavior.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetry configures retry count and backoff.
func WithRetry(retries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if retries >= 0 {
			c.maxRetries = retries
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// Client wraps the mcp-go client with per-call timeouts and retries.
type Client struct {
	mcpClient  client.MCPClient
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
}

// NewClient creates a new Client with the given MCP client implementation.
func NewClient(c client.MCPClient, opts ...ClientOption) *Client {
	wrapped := &Client{
		mcpClient:  c,
		timeout:    defaultTimeout,
		maxRetries: defaultRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(wrapped)
	}
	return wrapped
}

// Connect builds, starts and initializes a client for the given server
// config. Supported transports: "http" (streamable HTTP) and "sse".
func Connect(ctx context.Context, cfg ServerConfig, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var headers map[string]string
	if cfg.AuthToken != "" {
		headers = map[string]string{"Authorization": "Bearer " + cfg.AuthToken}
	}

	var (
		raw *client.Client
		err error
	)
	switch cfg.Transport {
	case "http", "streamable-http", "streamable_http":
		var httpOpts []transport.StreamableHTTPCOption
		if headers != nil {
			httpOpts = append(httpOpts, transport.WithHTTPHeaders(headers))
		}
		raw, err = client.NewStreamableHttpClient(cfg.Endpoint, httpOpts...)
	case "sse":
		var sseOpts []transport.ClientOption
		if headers != nil {
			sseOpts = append(sseOpts, transport.WithHeaders(headers))
		}
		raw, err = client.NewSSEMCPClient(cfg.Endpoint, sseOpts...)
	default:
		return nil, fmt.Errorf("mcp server %q: unsupported transport %q", cfg.ServerName, cfg.Transport)
	}
	if err != nil {
		return nil, err
	}

	if err := raw.Start(ctx); err != nil {
		return nil, err
	}

	initCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "choreo-client",
		Version: "0.1.0",
	}
	if _, err := raw.Initialize(initCtx, initRequest); err != nil {
		raw.Close()
		return nil, err
	}

	return NewClient(raw, opts...), nil
}

// ListTools retrieves the list of tools available on the server.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	var tools []mcp.Tool
	err := c.doWithRetry(ctx, func(reqCtx context.Context) error {
		resp, err := c.mcpClient.ListTools(reqCtx, mcp.ListToolsRequest{})
		if err != nil {
			return err
		}
		tools = resp.Tools
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tools, nil
}

// CallTool executes a tool on the server.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	err := c.doWithRetry(ctx, func(reqCtx context.Context) error {
		res, err := c.mcpClient.CallTool(reqCtx, req)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.mcpClient.Close()
}

func (c *Client) doWithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	attempts := c.maxRetries + 1
	for i := 0; i < attempts; i++ {
		reqCtx, cancel := c.withTimeout(ctx)
		err := fn(reqCtx)
		cancel()
		if err == nil {
			return nil
		}
		// A per-request timeout is retryable; a dead parent context is not.
		if ctx.Err() != nil {
			return err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		if err := c.sleepBackoff(ctx, i); err != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	wait := c.backoff * time.Duration(1<<attempt)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
