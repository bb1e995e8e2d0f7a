package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/emotionlab/server/internal/config"
)

var ErrEmptyCompletion = errors.New("provider returned no text")

type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Response struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Provider is a single-shot text completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}

func New(cfg *config.Config) (Provider, error) {
	if cfg.LLM.APIKey == "" {
		return nil, errors.New("llm api key is required")
	}
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		return NewOpenAI(cfg.LLM), nil
	case "anthropic":
		return NewAnthropic(cfg.LLM), nil
	case "gemini":
		return NewGemini(cfg.LLM)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}
}

func withDefaults(req Request, cfg config.LLMCfg) Request {
	if req.MaxTokens <= 0 {
		req.MaxTokens = cfg.MaxTokens
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = 800
	}
	if req.Temperature == 0 {
		req.Temperature = cfg.Temperature
	}
	return req
}

// DecodeJSON unmarshals a model reply into v. Markdown code fences and any prose around
// the outermost JSON object are ignored.
func DecodeJSON(text string, v any) error {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return fmt.Errorf("no json object in completion")
	}
	if err := sonic.UnmarshalString(s[start:end+1], v); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	return nil
}
