package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/choreolab/choreo/pkg/errors"
)

const defaultMaxTokens = 4096

// LiteLLMProvider implements Provider against an OpenAI-compatible proxy.
// LiteLLM owns the provider keys and routing; the engine only needs the
// proxy base URL and its virtual key.
type LiteLLMProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewLiteLLM creates a new LiteLLMProvider.
func NewLiteLLM(baseURL, apiKey string) *LiteLLMProvider {
	if baseURL == "" {
		baseURL = "http://localhost:4000"
	}
	return &LiteLLMProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Chat sends a chat completion request to the proxy and maps the response.
func (p *LiteLLMProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	cReq := completionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if cReq.MaxTokens == 0 {
		cReq.MaxTokens = defaultMaxTokens
	}

	payload, err := json.Marshal(cReq)
	if err != nil {
		return nil, errors.New(errors.CodeLLMError, "encode completion request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.New(errors.CodeLLMError, "build completion request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.New(errors.CodeLLMError, "completion call failed", err).
			WithRecoverable(true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.CodeLLMError, "read completion response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.CodeLLMError,
			fmt.Sprintf("completion returned %s", resp.Status), nil).
			WithContext("body", string(body))
	}

	var cResp completionResponse
	if err := json.Unmarshal(body, &cResp); err != nil {
		return nil, errors.New(errors.CodeLLMError, "decode completion response", err)
	}
	if len(cResp.Choices) == 0 {
		return nil, errors.New(errors.CodeLLMError, "completion returned no choices", nil)
	}

	return &ChatResponse{
		Content: cResp.Choices[0].Message.Content,
		Usage:   cResp.Usage,
	}, nil
}
