package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const storeTimeout = 10 * time.Second

// StoreClient fetches managed prompts from the LLM gateway's prompt store.
// Prompts are stored in dotprompt format: an optional YAML header between
// two "---" delimiter lines, followed by the template body.
type StoreClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewStoreClient creates a prompt store client against the gateway base URL.
func NewStoreClient(baseURL, token string) *StoreClient {
	return &StoreClient{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: storeTimeout},
	}
}

type storePayload struct {
	PromptSpec struct {
		LiteLLMParams struct {
			DotpromptContent string `json:"dotprompt_content"`
		} `json:"litellm_params"`
	} `json:"prompt_spec"`
}

// StorePrompt is a fetched prompt: the template body plus any model the
// dotprompt header pins for it.
type StorePrompt struct {
	Body  string
	Model string
}

// Fetch retrieves the prompt for ref. The dotprompt header is stripped from
// the body; a "model" key in it surfaces as the prompt's model. An empty
// body is an error so callers fall through.
func (c *StoreClient) Fetch(ctx context.Context, ref string) (StorePrompt, error) {
	if c == nil || c.BaseURL == "" {
		return StorePrompt{}, fmt.Errorf("prompt store not configured")
	}
	if strings.TrimSpace(c.Token) == "" {
		return StorePrompt{}, fmt.Errorf("prompt store token not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/prompts/"+ref+"/info", nil)
	if err != nil {
		return StorePrompt{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return StorePrompt{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return StorePrompt{}, fmt.Errorf("prompt store request failed: %s", resp.Status)
	}

	var payload storePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return StorePrompt{}, err
	}
	content := payload.PromptSpec.LiteLLMParams.DotpromptContent
	if content == "" {
		return StorePrompt{}, fmt.Errorf("prompt %q has no content", ref)
	}

	out := StorePrompt{}
	header, body := splitDotprompt(content)
	if header != "" {
		var meta map[string]any
		if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
			slog.DebugContext(ctx, "prompt header is not valid yaml",
				"ref", ref, "error", err)
		} else if model, ok := meta["model"].(string); ok {
			out.Model = model
		}
	}
	if body == "" {
		return StorePrompt{}, fmt.Errorf("prompt %q has an empty body", ref)
	}
	out.Body = body
	return out, nil
}

// splitDotprompt separates the YAML header from the template body. Content
// without an opening delimiter is all body. A missing closing delimiter
// yields the whole content as body, trimmed.
func splitDotprompt(content string) (header, body string) {
	if !strings.HasPrefix(content, "---") {
		return "", strings.TrimSpace(content)
	}
	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			header = strings.TrimSpace(strings.Join(lines[1:i], "\n"))
			body = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
			return header, body
		}
	}
	return "", strings.TrimSpace(content)
}

// Substitute replaces {key} placeholders with their values. Placeholders
// without a matching key stay in the text untouched.
func Substitute(template string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(template, "{") {
		return template
	}
	for k, v := range vars {
		template = strings.ReplaceAll(template, "{"+k+"}", v)
	}
	return template
}
