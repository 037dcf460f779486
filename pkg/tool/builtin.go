package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const httpToolTimeout = 10 * time.Second

// Builtin resolves a builtin tool ID to its descriptor. Unknown IDs yield an
// inert descriptor that reports itself unavailable instead of failing the
// load; the registry may advertise tools this build does not ship.
func Builtin(id string) Descriptor {
	switch id {
	case "get_date_time":
		return NewDescriptor(id, ProviderBuiltin, getDateTime)
	case "search_knowledge_base":
		return NewDescriptor(id, ProviderBuiltin, searchKnowledgeBase)
	case "http_request":
		return NewDescriptor(id, ProviderBuiltin, httpRequest)
	default:
		return NewDescriptor(id, ProviderBuiltin, unavailable(id))
	}
}

// Builtins resolves a list of builtin tool IDs, preserving order.
func Builtins(ids []string) []Descriptor {
	out := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		out = append(out, Builtin(id))
	}
	return out
}

func getDateTime(ctx context.Context, args map[string]any, userID string) (string, error) {
	return time.Now().Format("2006-01-02 15:04:05"), nil
}

func searchKnowledgeBase(ctx context.Context, args map[string]any, userID string) (string, error) {
	query, _ := args["query"].(string)
	return fmt.Sprintf("Search result for '%s': No specific entries found in local KB. "+
		"Please try a different query or use web search.", query), nil
}

func httpRequest(ctx context.Context, args map[string]any, userID string) (string, error) {
	url, _ := args["url"].(string)
	if url == "" {
		return "", fmt.Errorf("http_request: url argument is required")
	}
	method, _ := args["method"].(string)
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	var body io.Reader
	switch method {
	case http.MethodGet:
	case http.MethodPost:
		if data, ok := args["data"]; ok && data != nil {
			payload, err := json.Marshal(data)
			if err != nil {
				return "", fmt.Errorf("http_request: encoding body: %w", err)
			}
			body = bytes.NewReader(payload)
		}
	default:
		return "", fmt.Errorf("http_request: unsupported method %q", method)
	}

	ctx, cancel := context.WithTimeout(ctx, httpToolTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return "", fmt.Errorf("http_request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http_request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("http_request to %s failed: %s", url, resp.Status)
	}
	// Cap the body at 1000 bytes before it lands in a prompt.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1000))
	if err != nil {
		return "", fmt.Errorf("http_request read: %w", err)
	}
	return string(respBody), nil
}

func unavailable(id string) InvokeFunc {
	return func(ctx context.Context, args map[string]any, userID string) (string, error) {
		return "", fmt.Errorf("builtin tool %q is not available in this build", id)
	}
}
