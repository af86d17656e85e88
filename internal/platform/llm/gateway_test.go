package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/productforge-backend/internal/observability"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type fakeProvider struct {
	out   string
	err   error
	delay time.Duration
	got   Request
	calls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req Request) (string, error) {
	f.calls++
	f.got = req
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.out, f.err
}

func TestGatewayAppliesDefaults(t *testing.T) {
	p := &fakeProvider{out: `{"epics":[]}`}
	g := NewGateway(logger.Nop(), p, observability.NewMetrics(), Options{})
	out, err := g.Call(context.Background(), "generate_epics", "sys", "user prompt")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out != `{"epics":[]}` {
		t.Fatalf("out: %q", out)
	}
	if p.got.Model != DefaultModel || p.got.MaxTokens != DefaultMaxTokens {
		t.Fatalf("defaults not applied: %+v", p.got)
	}
	if p.got.Temperature != DefaultTemperature || p.got.TopP != DefaultTopP {
		t.Fatalf("sampling defaults not applied: %+v", p.got)
	}
	if p.got.System != "sys" || p.got.User != "user prompt" {
		t.Fatalf("messages: %+v", p.got)
	}
}

func TestGatewayWrapsFailure(t *testing.T) {
	p := &fakeProvider{err: errors.New("502 from upstream")}
	g := NewGateway(logger.Nop(), p, nil, Options{})
	_, err := g.Call(context.Background(), "generate_stories", "s", "u")
	if !errors.Is(err, ErrGatewayFailed) {
		t.Fatalf("want ErrGatewayFailed got=%v", err)
	}
	if p.calls != 1 {
		t.Fatalf("no retry expected, calls=%d", p.calls)
	}
}

func TestGatewayTimeout(t *testing.T) {
	p := &fakeProvider{out: "late", delay: time.Second}
	g := NewGateway(logger.Nop(), p, nil, Options{Timeout: 20 * time.Millisecond})
	_, err := g.Call(context.Background(), "generate_requirements", "s", "u")
	if !errors.Is(err, ErrGatewayTimeout) {
		t.Fatalf("want ErrGatewayTimeout got=%v", err)
	}
	if errors.Is(err, ErrGatewayFailed) {
		t.Fatalf("timeout should not also be ErrGatewayFailed")
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("   ") != 0 {
		t.Fatalf("blank should be zero")
	}
	n := EstimateTokens(strings.Repeat("backlog ", 50))
	if n <= 0 {
		t.Fatalf("want positive estimate got=%d", n)
	}
}

func TestNewProviderRequiresKey(t *testing.T) {
	if _, err := NewProvider(ProviderConfig{Provider: "groq"}); err == nil {
		t.Fatalf("want error for missing key")
	}
	if _, err := NewProvider(ProviderConfig{Provider: "bogus", APIKey: "k"}); err == nil {
		t.Fatalf("want error for unknown provider")
	}
	p, err := NewProvider(ProviderConfig{Provider: "ollama"})
	if err != nil || p.Name() != "ollama" {
		t.Fatalf("ollama provider: %v", err)
	}
}
