package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stackit/internal/ai"
	"stackit/internal/database"
	"stackit/internal/models"
)

// SearchResults are the matching questions and related queries to try next.
type SearchResults struct {
	Questions   []*models.Question `json:"questions"`
	Suggestions ai.Result[[]string] `json:"-"`
}

type SearchService struct {
	store     database.ContentStore
	assistant Assistant
	logger    *zap.Logger
}

func NewSearchService(store database.ContentStore, assistant Assistant, logger *zap.Logger) *SearchService {
	return &SearchService{store: store, assistant: assistant, logger: logger}
}

// Search runs the keyword search and asks the AI helper for related queries at the
// same time. Only the search can fail the call. A blank query gets no suggestions.
func (s *SearchService) Search(ctx context.Context, opts models.SearchOptions) (*SearchResults, error) {
	results := &SearchResults{
		Suggestions: ai.Result[[]string]{Value: []string{}, Outcome: ai.OutcomeOK},
	}
	query := strings.TrimSpace(opts.Query)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		questions, err := s.store.SearchContent(gctx, opts)
		results.Questions = questions
		return err
	})
	if query != "" {
		g.Go(func() error {
			if s.assistant == nil {
				results.Suggestions = unavailable([]string{})
				return nil
			}
			results.Suggestions = logResult(s.logger, "suggest", s.assistant.SuggestSearches(gctx, query))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("search completed",
		zap.String("query", query),
		zap.String("sort", string(opts.Sort)),
		zap.String("filter", string(opts.Filter)),
		zap.Int("results", len(results.Questions)))
	return results, nil
}
