// Package registry talks to the agent registry service. The registry stores
// agent definitions (with their serialized runtime configuration), prompt
// templates and the builtin tool list. All lookups are best-effort: callers
// treat failures as "source declined" and fall back.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Agent is the registry payload for one agent definition.
type Agent struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	RuntimeConfig json.RawMessage `json:"runtime_config,omitempty"`
}

// Client queries the registry service.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	AuthToken string
}

// NewClient creates a registry client pointing at baseURL. The HTTP client
// starts with a 10s timeout; callers override it through the HTTP field.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

// Agent fetches one agent definition by ID.
func (c *Client) Agent(ctx context.Context, id string) (*Agent, error) {
	if c == nil || c.BaseURL == "" {
		return nil, fmt.Errorf("registry base url not configured")
	}
	var out Agent
	if err := c.getJSON(ctx, c.BaseURL+"/agents/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// promptPayload accepts the field variants the registry has used over time.
type promptPayload struct {
	Template string `json:"template"`
	Prompt   string `json:"prompt"`
	Text     string `json:"text"`
}

// Prompt fetches a prompt template by reference. Returns the first non-empty
// of the template/prompt/text fields.
func (c *Client) Prompt(ctx context.Context, ref string) (string, error) {
	if c == nil || c.BaseURL == "" {
		return "", fmt.Errorf("registry base url not configured")
	}
	var out promptPayload
	if err := c.getJSON(ctx, c.BaseURL+"/prompts/"+ref, &out); err != nil {
		return "", err
	}
	for _, s := range []string{out.Template, out.Prompt, out.Text} {
		if s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("registry prompt %q is empty", ref)
}

// builtinToolsPayload accepts both the current and the legacy key, with
// entries as bare strings or {id|tool_id|name} objects.
type builtinToolsPayload struct {
	Tools        []json.RawMessage `json:"tools"`
	BuiltinTools []json.RawMessage `json:"builtin_tools"`
}

// BuiltinTools fetches the builtin tool ID list.
func (c *Client) BuiltinTools(ctx context.Context) ([]string, error) {
	if c == nil || c.BaseURL == "" {
		return nil, fmt.Errorf("registry base url not configured")
	}
	var out builtinToolsPayload
	if err := c.getJSON(ctx, c.BaseURL+"/builtin-tools", &out); err != nil {
		return nil, err
	}
	entries := out.Tools
	if len(entries) == 0 {
		entries = out.BuiltinTools
	}
	ids := make([]string, 0, len(entries))
	for _, raw := range entries {
		if id := decodeToolID(raw); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Servers fetches the MCP server entries advertised at the registry root,
// under either the "servers" or the "MCP_SERVERS" key.
func (c *Client) Servers(ctx context.Context) ([]map[string]any, error) {
	if c == nil || c.BaseURL == "" {
		return nil, fmt.Errorf("registry base url not configured")
	}
	var payload struct {
		Servers    []map[string]any `json:"servers"`
		MCPServers []map[string]any `json:"MCP_SERVERS"`
	}
	if err := c.getJSON(ctx, c.BaseURL, &payload); err != nil {
		return nil, err
	}
	if len(payload.Servers) > 0 {
		return payload.Servers, nil
	}
	return payload.MCPServers, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if strings.TrimSpace(c.AuthToken) != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}
	resp, err := c.http().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry request failed: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) http() *http.Client {
	if c != nil && c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func decodeToolID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		ID     string `json:"id"`
		ToolID string `json:"tool_id"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	for _, v := range []string{obj.ID, obj.ToolID, obj.Name} {
		if v != "" {
			return v
		}
	}
	return ""
}
