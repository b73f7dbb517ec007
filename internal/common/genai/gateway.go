// internal/common/genai/gateway.go
package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"

	"idea-lab/internal/common/config"
	httpclient "idea-lab/internal/common/http"
)

// GatewayClient is a Generator backed by an internal GenAI HTTP gateway.
// POST /api/ai/generate returns {"text": ...}; POST /api/ai/chat streams
// newline-delimited {"text": ...} or {"error": ...} objects.
type GatewayClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float32
	timeout     time.Duration
	client      *httpclient.Client
}

func NewGatewayClient(cfg config.GenAIConfig) *GatewayClient {
	return &GatewayClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     timeoutOf(cfg),
		client:      httpclient.NewClient(cfg.MaxRetries, 100*time.Millisecond),
	}
}

type generateRequest struct {
	Prompt         string  `json:"prompt"`
	Model          string  `json:"model,omitempty"`
	ResponseFormat string  `json:"response_format"`
	Temperature    float32 `json:"temperature"`
}

type chunk struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func (g *GatewayClient) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	resp, err := g.client.DoWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if g.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+g.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return nil, classify(ctx, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", ErrGenerationFailed, resp.StatusCode)
	}
	return resp, nil
}

func (g *GatewayClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.post(ctx, "/api/ai/generate", generateRequest{
		Prompt:         prompt,
		Model:          g.model,
		ResponseFormat: "json",
		Temperature:    g.temperature,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chunk
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrGenerationFailed, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrGenerationFailed, out.Error)
	}
	return out.Text, nil
}

func (g *GatewayClient) StreamChat(ctx context.Context, req ChatRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := g.post(ctx, "/api/ai/chat", req)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var c chunk
			if err := json.Unmarshal(line, &c); err != nil {
				yield("", fmt.Errorf("%w: bad stream frame: %v", ErrGenerationFailed, err))
				return
			}
			if c.Error != "" {
				yield("", fmt.Errorf("%w: %s", ErrGenerationFailed, c.Error))
				return
			}
			if c.Text != "" && !yield(c.Text, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", classify(ctx, err))
		}
	}
}

func (g *GatewayClient) Close() error { return nil }
