package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"stackit/internal/ai"
	"stackit/internal/logger"
	"stackit/internal/utils"
)

// AssistantService fronts the AI helper for the assistant page. Blank input is
// rejected with INVALID_INPUT before any completion is requested; once a request is
// made its outcome is carried in the returned Result.
type AssistantService struct {
	assistant Assistant
	logger    *zap.Logger
}

func NewAssistantService(assistant Assistant, logger *zap.Logger) *AssistantService {
	return &AssistantService{assistant: assistant, logger: logger}
}

func (s *AssistantService) Analyze(ctx context.Context, text string, kind ai.ContentType) (ai.Result[*ai.ContentAnalysis], error) {
	if err := requireText(map[string]string{"text": text}); err != nil {
		return ai.Result[*ai.ContentAnalysis]{}, err
	}
	if s.assistant == nil {
		return unavailable[*ai.ContentAnalysis](nil), nil
	}
	return logResult(s.logger, "analyze", s.assistant.AnalyzeContent(ctx, text, kind)), nil
}

func (s *AssistantService) Tags(ctx context.Context, title, description string) (ai.Result[[]string], error) {
	if err := requireText(map[string]string{"title": title, "description": description}); err != nil {
		return ai.Result[[]string]{}, err
	}
	if s.assistant == nil {
		return unavailable([]string{}), nil
	}
	return logResult(s.logger, "tags", s.assistant.GenerateTags(ctx, title, description)), nil
}

func (s *AssistantService) Improve(ctx context.Context, title, description string) (ai.Result[*ai.ImprovedQuestion], error) {
	if err := requireText(map[string]string{"title": title, "description": description}); err != nil {
		return ai.Result[*ai.ImprovedQuestion]{}, err
	}
	if s.assistant == nil {
		return unavailable[*ai.ImprovedQuestion](nil), nil
	}
	return logResult(s.logger, "improve", s.assistant.ImproveQuestion(ctx, title, description)), nil
}

// Answer drafts an answer to question; details may be blank.
func (s *AssistantService) Answer(ctx context.Context, question, details string) (ai.Result[string], error) {
	if err := requireText(map[string]string{"question": question}); err != nil {
		return ai.Result[string]{}, err
	}
	if s.assistant == nil {
		return unavailable(""), nil
	}
	return logResult(s.logger, "answer", s.assistant.GenerateAnswer(ctx, question, details)), nil
}

func (s *AssistantService) Suggest(ctx context.Context, query string) (ai.Result[[]string], error) {
	if err := requireText(map[string]string{"query": query}); err != nil {
		return ai.Result[[]string]{}, err
	}
	if s.assistant == nil {
		return unavailable([]string{}), nil
	}
	return logResult(s.logger, "suggest", s.assistant.SuggestSearches(ctx, query)), nil
}

// requireText reports every blank field at once.
func requireText(fields map[string]string) error {
	missing := map[string]string{}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing[name] = "must not be blank"
		}
	}
	if len(missing) > 0 {
		return utils.NewValidationError(missing)
	}
	return nil
}

func logResult[T any](log *zap.Logger, op string, r ai.Result[T]) ai.Result[T] {
	if !r.OK() {
		log.Info("assistant request degraded",
			logger.Operation(op),
			zap.Stringer("outcome", r.Outcome),
			zap.Error(r.Err))
	}
	return r
}
