// internal/common/genai/genai.go

// Package genai talks to the text/JSON generation backend.
package genai

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"golang.org/x/time/rate"

	"idea-lab/internal/common/config"
	"idea-lab/internal/models"
)

var (
	ErrGenerationFailed  = errors.New("GENERATION_FAILED")
	ErrGenerationTimeout = errors.New("GENERATION_TIMEOUT")
)

// Generator produces model output. GenerateJSON returns the raw JSON text;
// an empty string means the model produced nothing.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	StreamChat(ctx context.Context, req ChatRequest) iter.Seq2[string, error]
	Close() error
}

// ChatRequest is one user turn with its history and free-text context.
type ChatRequest struct {
	History  []models.ChatMessage `json:"history"`
	Prompt   string               `json:"prompt"`
	Context  string               `json:"context"`
	Language string               `json:"language"`
}

// classify maps transport failures onto the package sentinels.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
}

// New builds the configured backend, rate limited when cfg.RateLimit > 0.
func New(ctx context.Context, cfg config.GenAIConfig) (Generator, error) {
	var g Generator
	switch cfg.Provider {
	case "gemini":
		gc, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		g = gc
	case "gateway":
		g = NewGatewayClient(cfg)
	default:
		return nil, fmt.Errorf("unknown genai provider %q", cfg.Provider)
	}
	if cfg.RateLimit > 0 {
		g = NewRateLimited(g, cfg.RateLimit, cfg.Burst)
	}
	return g, nil
}

// RateLimited throttles calls to the wrapped Generator.
type RateLimited struct {
	next    Generator
	limiter *rate.Limiter
}

func NewRateLimited(next Generator, perSecond float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (r *RateLimited) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit wait: %v", ErrGenerationTimeout, err)
	}
	return r.next.GenerateJSON(ctx, prompt)
}

func (r *RateLimited) StreamChat(ctx context.Context, req ChatRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if err := r.limiter.Wait(ctx); err != nil {
			yield("", fmt.Errorf("%w: rate limit wait: %v", ErrGenerationTimeout, err))
			return
		}
		for chunk, err := range r.next.StreamChat(ctx, req) {
			if !yield(chunk, err) {
				return
			}
		}
	}
}

func (r *RateLimited) Close() error {
	return r.next.Close()
}

func timeoutOf(cfg config.GenAIConfig) time.Duration {
	return config.GetDuration(cfg.Timeout)
}
