// Package service composes Content Client and AI Helper calls into the views the
// application's pages show: dashboards, reports, leaderboards and the inbox.
package service

import (
	"context"

	"stackit/internal/ai"
	"stackit/internal/utils"
)

// Assistant is the AI helper surface the services use. *ai.Client implements it.
type Assistant interface {
	AnalyzeContent(ctx context.Context, content string, kind ai.ContentType) ai.Result[*ai.ContentAnalysis]
	GenerateTags(ctx context.Context, title, description string) ai.Result[[]string]
	ImproveQuestion(ctx context.Context, title, description string) ai.Result[*ai.ImprovedQuestion]
	GenerateAnswer(ctx context.Context, question, details string) ai.Result[string]
	SuggestSearches(ctx context.Context, query string) ai.Result[[]string]
}

var _ Assistant = (*ai.Client)(nil)

// errNoAssistant is reported when the AI helper was not configured.
var errNoAssistant = utils.NewAppError(utils.ErrTransport, "AI helper is not configured", nil)

func unavailable[T any](def T) ai.Result[T] {
	return ai.Result[T]{Value: def, Outcome: ai.OutcomeUnavailable, Err: errNoAssistant}
}
