package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	openaigo "github.com/sashabaranov/go-openai"
)

const (
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultOllamaURL   = "http://localhost:11434"
)

// Request is one chat completion: a system and a user message plus sampling.
type Request struct {
	Model       string
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// Provider is the vendor-specific half of the gateway.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

type ProviderConfig struct {
	Provider  string
	APIKey    string
	BaseURL   string
	OllamaURL string
	Timeout   time.Duration
}

// NewProvider picks the backend named by cfg.Provider ("openai", "groq" or
// "ollama"). Groq is reached through the OpenAI-compatible endpoint.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "groq", "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("llm api key required for provider %q", cfg.Provider)
		}
		oc := openaigo.DefaultConfig(cfg.APIKey)
		oc.BaseURL = DefaultGroqBaseURL
		if b := strings.TrimSpace(cfg.BaseURL); b != "" {
			oc.BaseURL = strings.TrimRight(b, "/")
		}
		oc.HTTPClient = httpClient
		return &openAIProvider{client: openaigo.NewClientWithConfig(oc)}, nil
	case "ollama":
		raw := strings.TrimSpace(cfg.OllamaURL)
		if raw == "" {
			raw = DefaultOllamaURL
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse ollama url: %w", err)
		}
		return &ollamaProvider{client: api.NewClient(u, httpClient)}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

type openAIProvider struct {
	client *openaigo.Client
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: req.System},
			{Role: openaigo.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

type ollamaProvider struct {
	client *api.Client
}

func (p *ollamaProvider) Name() string { return "ollama" }

func (p *ollamaProvider) Complete(ctx context.Context, req Request) (string, error) {
	stream := false
	var out strings.Builder
	err := p.client.Chat(ctx, &api.ChatRequest{
		Model: req.Model,
		Messages: []api.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": req.Temperature,
			"top_p":       req.TopP,
			"num_predict": req.MaxTokens,
		},
	}, func(r api.ChatResponse) error {
		out.WriteString(r.Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
