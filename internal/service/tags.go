package service

import (
	"context"

	"go.uber.org/zap"

	"stackit/internal/analytics"
	"stackit/internal/database"
	"stackit/internal/models"
)

type TagService struct {
	store  database.ContentStore
	logger *zap.Logger
}

func NewTagService(store database.ContentStore, logger *zap.Logger) *TagService {
	return &TagService{store: store, logger: logger}
}

// Directory recounts tag usage from every question's tag list, most used first, and
// keeps the tags whose name contains filter. A blank filter keeps all tags.
func (s *TagService) Directory(ctx context.Context, filter string) ([]models.TagCount, error) {
	lists, err := s.store.ListQuestionTags(ctx)
	if err != nil {
		return nil, err
	}
	counts := analytics.TagFrequency(lists)
	s.logger.Debug("tag directory computed",
		zap.Int("questions", len(lists)),
		zap.Int("tags", len(counts)))
	return analytics.FilterTags(counts, filter), nil
}
