package ports

import (
	"context"

	"data4viz/domain/insight"
)

// LLMClient is a minimal chat-completions client (Groq, OpenAI, or any
// compatible provider)
type LLMClient interface {
	ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error)
}

// InsightGenerator asks an LLM to propose candidate insights from backend
// statistics. The returned insights are untrusted and must go through the
// validator before they reach any caller.
type InsightGenerator interface {
	GenerateInsights(ctx context.Context, stats *insight.BackendStatistics) ([]insight.RawInsight, error)
}
