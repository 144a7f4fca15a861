package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"data4viz/domain/insight"
	"data4viz/internal/errors"
	"data4viz/ports"
)

// InsightGenerator turns backend statistics into LLM-proposed candidate
// insights. Output is untrusted by construction; callers must run it
// through the insight validator.
type InsightGenerator struct {
	client    ports.LLMClient
	model     string
	maxTokens int
}

// NewInsightGenerator creates a generator over any LLMClient
func NewInsightGenerator(client ports.LLMClient, model string, maxTokens int) *InsightGenerator {
	return &InsightGenerator{client: client, model: model, maxTokens: maxTokens}
}

// GenerateInsights prompts the model with the computed statistics and
// decodes its JSON array of candidate insights. The completion may wrap the
// array in code fences or prose; everything outside the outermost brackets
// is discarded.
func (g *InsightGenerator) GenerateInsights(ctx context.Context, stats *insight.BackendStatistics) ([]insight.RawInsight, error) {
	if stats == nil {
		return nil, errors.InvalidInput("backend statistics must not be nil")
	}

	prompt, err := buildPrompt(stats)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build insight prompt")
	}

	completion, err := g.client.ChatCompletion(ctx, g.model, prompt, g.maxTokens)
	if err != nil {
		return nil, errors.ExternalServiceError("llm", err)
	}

	raw, err := ParseInsightArray(completion)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse llm insight response")
	}
	return raw, nil
}

// buildPrompt renders the statistics summary and the response contract
func buildPrompt(stats *insight.BackendStatistics) (string, error) {
	statsJSON, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are analyzing which factors are associated with the decision metric %q.\n\n", stats.DecisionMetric)
	b.WriteString("Backend-computed statistics (the only evidence you may use):\n")
	b.Write(statsJSON)
	b.WriteString("\n\n")
	b.WriteString("Propose up to 5 insights as a JSON array. Each element must have exactly these fields:\n")
	b.WriteString(`  {"rank": <int>, "factor": "<exact column name>", "why_it_matters": "<one sentence>", "evidence": "<statistic cited>", "confidence": "high|medium|low"}` + "\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- factor must be copied verbatim from the statistics above; never invent or combine columns\n")
	b.WriteString("- describe associations only; never claim causation\n")
	b.WriteString("- respond with the JSON array and nothing else\n")
	return b.String(), nil
}

// ParseInsightArray extracts and decodes the JSON array from a completion.
// Models routinely wrap output in markdown fences or add commentary, so the
// parser takes the widest [...] span and decodes that.
func ParseInsightArray(completion string) ([]insight.RawInsight, error) {
	cleaned := strings.TrimSpace(completion)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array found in completion")
	}

	var raw []insight.RawInsight
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode insight array: %w", err)
	}
	return raw, nil
}
