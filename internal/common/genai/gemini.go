// internal/common/genai/gemini.go
package genai

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	gemini "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"idea-lab/internal/common/config"
	"idea-lab/internal/models"
)

// GeminiClient is a Generator backed by the Gemini API.
type GeminiClient struct {
	client      *gemini.Client
	modelName   string
	temperature float32
	timeout     time.Duration
}

func NewGeminiClient(ctx context.Context, cfg config.GenAIConfig) (*GeminiClient, error) {
	client, err := gemini.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{
		client:      client,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		timeout:     timeoutOf(cfg),
	}, nil
}

func (c *GeminiClient) jsonModel() *gemini.GenerativeModel {
	model := c.client.GenerativeModel(c.modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(c.temperature)
	return model
}

func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.jsonModel().GenerateContent(ctx, gemini.Text(prompt))
	if err != nil {
		return "", classify(ctx, err)
	}
	return responseText(resp), nil
}

// StreamChat yields text fragments as the model produces them.
func (c *GeminiClient) StreamChat(ctx context.Context, req ChatRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		model := c.client.GenerativeModel(c.modelName)
		model.SetTemperature(c.temperature)
		model.SystemInstruction = gemini.NewUserContent(gemini.Text(chatInstruction(req)))

		cs := model.StartChat()
		cs.History = toGeminiHistory(req.History)

		it := cs.SendMessageStream(ctx, gemini.Text(req.Prompt))
		for {
			resp, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield("", classify(ctx, err))
				return
			}
			if text := responseText(resp); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func responseText(resp *gemini.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(gemini.Text); ok {
				b.WriteString(string(text))
			}
		}
		break
	}
	return b.String()
}

func toGeminiHistory(history []models.ChatMessage) []*gemini.Content {
	out := make([]*gemini.Content, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == models.RoleModel {
			role = "model"
		}
		out = append(out, &gemini.Content{Role: role, Parts: []gemini.Part{gemini.Text(m.Text)}})
	}
	return out
}

func chatInstruction(req ChatRequest) string {
	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	var b strings.Builder
	b.WriteString("You are a practical small-business advisor helping someone start a business around a single machine. ")
	b.WriteString("Answer concisely in the language with tag ")
	b.WriteString(lang)
	b.WriteString(".")
	if strings.TrimSpace(req.Context) != "" {
		b.WriteString("\n\nContext about the business the user is exploring:\n")
		b.WriteString(req.Context)
	}
	return b.String()
}
