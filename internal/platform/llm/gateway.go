package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tiktoken-go/tokenizer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/productforge-backend/internal/observability"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

var (
	ErrGatewayFailed  = errors.New("text generation failed")
	ErrGatewayTimeout = errors.New("text generation timed out")
)

const (
	DefaultTimeout     = 90 * time.Second
	DefaultTemperature = 0.6
	DefaultMaxTokens   = 4096
	DefaultTopP        = 0.95

	previewRunes = 200
)

// Caller is what services depend on.
type Caller interface {
	Call(ctx context.Context, operation, system, user string) (string, error)
}

type Options struct {
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	TopP        float32
}

type Gateway struct {
	log      *logger.Logger
	provider Provider
	metrics  *observability.Metrics
	tracer   trace.Tracer
	opts     Options
}

func NewGateway(log *logger.Logger, provider Provider, metrics *observability.Metrics, opts Options) *Gateway {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.TopP == 0 {
		opts.TopP = DefaultTopP
	}
	return &Gateway{
		log:      log.With("service", "LLMGateway"),
		provider: provider,
		metrics:  metrics,
		tracer:   otel.Tracer("productforge/llm"),
		opts:     opts,
	}
}

// Call performs exactly one completion under the gateway deadline. Errors are
// wrapped as ErrGatewayTimeout or ErrGatewayFailed.
func (g *Gateway) Call(ctx context.Context, operation, system, user string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := g.tracer.Start(ctx, "llm."+operation, trace.WithAttributes(
		attribute.String("llm.operation", operation),
		attribute.String("llm.model", g.opts.Model),
		attribute.String("llm.provider", g.provider.Name()),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	promptTokens := EstimateTokens(system) + EstimateTokens(user)
	start := time.Now()
	out, err := g.provider.Complete(ctx, Request{
		Model:       g.opts.Model,
		System:      system,
		User:        user,
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
		TopP:        g.opts.TopP,
	})
	dur := time.Since(start)

	kv := []interface{}{
		"operation", operation,
		"model", g.opts.Model,
		"system", logger.Preview(system, previewRunes),
		"user", logger.Preview(user, previewRunes),
		"prompt_tokens", promptTokens,
		"duration_ms", dur.Milliseconds(),
	}
	if err != nil {
		status := "error"
		wrapped := fmt.Errorf("%w: %s: %v", ErrGatewayFailed, operation, err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			status = "timeout"
			wrapped = fmt.Errorf("%w: %s after %s", ErrGatewayTimeout, operation, g.opts.Timeout)
		}
		g.metrics.ObserveLLMRequest(operation, g.opts.Model, status, dur, promptTokens, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		g.log.Error("llm call failed", append(kv, "status", status, "error", err.Error())...)
		return "", wrapped
	}

	g.metrics.ObserveLLMRequest(operation, g.opts.Model, "ok", dur, promptTokens, len(out))
	span.SetAttributes(attribute.Int("llm.response_bytes", len(out)), attribute.Int("llm.prompt_tokens", promptTokens))
	g.log.Info("llm call", append(kv, "response", out)...)
	return out, nil
}

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// EstimateTokens counts cl100k tokens, falling back to len/4 when the codec
// is unavailable.
func EstimateTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	codecOnce.Do(func() {
		c, err := tokenizer.ForModel(tokenizer.GPT4)
		if err == nil {
			codec = c
		}
	})
	if codec != nil {
		if n, err := codec.Count(text); err == nil {
			return n
		}
	}
	return (len(text) + 3) / 4
}
