package prompts

import "strings"

const styleMarker = "PRODUCTFORGE_PROMPT_STYLE_V1"

// applyStyle prepends the shared output rules to a system prompt. It is
// idempotent.
func applyStyle(system string) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, styleMarker) {
		return base
	}
	var b strings.Builder
	b.WriteString(styleMarker)
	b.WriteString("\nYou draft planning artifacts for a product team.")
	b.WriteString("\nOutput only the requested JSON. No analysis, no markdown fences, no reasoning tags.")
	b.WriteString("\nGround every item in the provided inputs; do not invent product facts.")
	b.WriteString("\n---\n")
	b.WriteString(base)
	return b.String()
}
