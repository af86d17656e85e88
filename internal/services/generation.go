package services

import (
	"context"

	"github.com/yungbote/productforge-backend/internal/data/repos"
	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/generation/parse"
	"github.com/yungbote/productforge-backend/internal/generation/prompts"
	"github.com/yungbote/productforge-backend/internal/observability"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/llm"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

const previewRunes = 200

// generator is the prompt → gateway → parse half shared by the artifact
// services.
type generator struct {
	log     *logger.Logger
	gateway llm.Caller
	prompts *prompts.Set
	metrics *observability.Metrics
}

func (g generator) call(ctx context.Context, p prompts.Prompt, renderErr error) (string, error) {
	if renderErr != nil {
		return "", generationFailed(renderErr)
	}
	raw, err := g.gateway.Call(ctx, p.Operation, p.System, p.User)
	if err != nil {
		return "", generationFailed(err)
	}
	return raw, nil
}

// noteEmpty warns when a non-empty response produced nothing usable.
func (g generator) noteEmpty(kind parse.Kind, raw string, strategy string, dropped int) {
	if raw == "" {
		return
	}
	g.metrics.IncEmptyParse(string(kind))
	g.log.Warn("generation produced no candidates",
		"kind", kind,
		"strategy", strategy,
		"dropped", dropped,
		"preview", logger.Preview(raw, previewRunes),
	)
}

func productContext(p *types.Product) prompts.ProductContext {
	return prompts.ProductContext{
		Name:             p.Name,
		Description:      p.Description,
		ValueProposition: p.ValueProposition,
		Channels:         p.ChannelsPlatforms,
	}
}

func personaContext(dbc dbctx.Context, r repos.PersonaRepo, p *types.Product) ([]prompts.PersonaContext, error) {
	rows, err := r.ListByProduct(dbc, p.ID)
	if err != nil {
		return nil, err
	}
	out := make([]prompts.PersonaContext, 0, len(rows))
	for _, row := range rows {
		out = append(out, prompts.PersonaContext{Name: row.Name, Description: row.Description})
	}
	return out, nil
}
