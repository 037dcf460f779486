// Package mcp discovers callable tools from MCP servers and adapts them to
// Choreo tool descriptors.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/choreolab/choreo/pkg/registry"
)

// ServerConfig describes one MCP server to discover tools from.
type ServerConfig struct {
	ServerName       string `json:"server_name"`
	Transport        string `json:"transport"`
	Endpoint         string `json:"endpoint"`
	AuthToken        string `json:"auth_token,omitempty"`
	RequiresUserAuth bool   `json:"requires_user_auth,omitempty"`
}

// Validate checks the required fields.
func (c ServerConfig) Validate() error {
	if c.ServerName == "" {
		return fmt.Errorf("mcp server config: server_name is required")
	}
	if c.Transport == "" {
		return fmt.Errorf("mcp server config: transport is required")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("mcp server config: endpoint is required")
	}
	return nil
}

// FromMap builds a ServerConfig from a loosely-typed registry entry,
// accepting the key naming variants the registry has used.
func FromMap(data map[string]any) (ServerConfig, error) {
	cfg := ServerConfig{
		ServerName: firstString(data, "server_name", "name"),
		Transport:  firstString(data, "transport"),
		Endpoint:   firstString(data, "endpoint", "url", "uri"),
		AuthToken:  firstString(data, "auth_token", "token"),
	}
	cfg.RequiresUserAuth = firstBool(data, "requires_user_auth", "user_auth")
	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnv reads server configs from the environment. Supported forms:
// CHOREO_MCP_SERVERS as a JSON array, or indexed variables
// CHOREO_MCP_SERVER_{i}_NAME / _TRANSPORT / _ENDPOINT (or _URL) / _TOKEN.
func LoadFromEnv() []ServerConfig {
	if raw := os.Getenv("CHOREO_MCP_SERVERS"); raw != "" {
		var entries []map[string]any
		if err := json.Unmarshal([]byte(raw), &entries); err == nil {
			out := make([]ServerConfig, 0, len(entries))
			for _, entry := range entries {
				if cfg, err := FromMap(entry); err == nil {
					out = append(out, cfg)
				}
			}
			return out
		}
	}

	var out []ServerConfig
	for i := 0; ; i++ {
		prefix := "CHOREO_MCP_SERVER_" + strconv.Itoa(i) + "_"
		name := os.Getenv(prefix + "NAME")
		transport := os.Getenv(prefix + "TRANSPORT")
		endpoint := os.Getenv(prefix + "ENDPOINT")
		if endpoint == "" {
			endpoint = os.Getenv(prefix + "URL")
		}
		if name == "" && transport == "" && endpoint == "" {
			break
		}
		cfg := ServerConfig{
			ServerName: name,
			Transport:  transport,
			Endpoint:   endpoint,
			AuthToken:  os.Getenv(prefix + "TOKEN"),
		}
		if os.Getenv(prefix+"REQUIRES_USER_AUTH") == "true" {
			cfg.RequiresUserAuth = true
		}
		if cfg.Validate() == nil {
			out = append(out, cfg)
		}
	}
	return out
}

// ListServers discovers server configs from the registry, falling back to
// the environment when the registry yields nothing. Never fails.
func ListServers(ctx context.Context, reg *registry.Client) []ServerConfig {
	var out []ServerConfig
	if reg != nil {
		entries, err := reg.Servers(ctx)
		if err == nil {
			for _, entry := range entries {
				if cfg, err := FromMap(entry); err == nil {
					out = append(out, cfg)
				}
			}
		}
	}
	if len(out) == 0 {
		out = LoadFromEnv()
	}
	return out
}

func firstString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := data[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstBool(data map[string]any, keys ...string) bool {
	for _, key := range keys {
		if b, ok := data[key].(bool); ok {
			return b
		}
	}
	return false
}
