package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/emotionlab/server/internal/config"
	"google.golang.org/genai"
)

type Gemini struct {
	client *genai.Client
	cfg    config.LLMCfg
}

func NewGemini(cfg config.LLMCfg) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, cfg: cfg}, nil
}

func (p *Gemini) Name() string { return "gemini" }

func (p *Gemini) Complete(ctx context.Context, req Request) (*Response, error) {
	req = withDefaults(req, p.cfg)

	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(req.Prompt), gc)
	if err != nil {
		return nil, err
	}
	text := resp.Text()
	if text == "" {
		return nil, ErrEmptyCompletion
	}

	out := &Response{Text: text, Model: resp.ModelVersion}
	if out.Model == "" {
		out.Model = p.cfg.Model
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}
