// internal/database/database.go
package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stackit/internal/config"
	"stackit/internal/models"
	"stackit/internal/utils"
)

// New constructs the Content Client selected by cfg.Backend.
func New(cfg *config.Config, logger *zap.Logger, metrics *utils.MetricsCollector) (ContentStore, error) {
	switch cfg.Backend {
	case config.BackendREST:
		client, err := NewRESTClient(cfg.Datastore, logger, metrics)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.BackendPostgres:
		db, err := NewPostgresDB(cfg.Database.URI, logger, metrics)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
}

// checkPage enforces a non-empty, non-negative row range.
func checkPage(limit, offset int) error {
	if limit <= 0 {
		return utils.NewInvalidInputError(fmt.Sprintf("limit must be positive, got %d", limit))
	}
	if offset < 0 {
		return utils.NewInvalidInputError(fmt.Sprintf("offset must not be negative, got %d", offset))
	}
	return nil
}

// normalizeTags trims whitespace around every tag. Validation rejects what is left empty.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = strings.TrimSpace(tag)
	}
	return out
}

// cleanSearchTags drops blank filter tags.
func cleanSearchTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func checkModerationAction(action models.ModerationAction) error {
	switch action {
	case models.ModerationApprove, models.ModerationReject:
		return nil
	default:
		return utils.NewInvalidInputError(fmt.Sprintf("unknown moderation action %q", action))
	}
}

func checkLeaderboardOrder(orderBy models.LeaderboardOrder) error {
	switch orderBy {
	case models.ByReputation, models.ByQuestionsCount:
		return nil
	default:
		return utils.NewInvalidInputError(fmt.Sprintf("cannot rank profiles by %q", orderBy))
	}
}

func checkCountable(table string) error {
	if !countableTables[table] {
		return utils.NewInvalidInputError(fmt.Sprintf("cannot count table %q", table))
	}
	return nil
}

func checkLimit(limit int) error {
	if limit <= 0 {
		return utils.NewInvalidInputError(fmt.Sprintf("limit must be positive, got %d", limit))
	}
	return nil
}
