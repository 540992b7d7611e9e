// internal/database/moderation_repository.go
package database

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"stackit/internal/models"
	"stackit/internal/utils"
)

const selectModerationQueue = `*, profiles:author_id(username)`

// CountRows returns the exact number of rows in table without transferring them.
func (c *RESTClient) CountRows(ctx context.Context, table string) (int, error) {
	if err := checkCountable(table); err != nil {
		return 0, err
	}

	header, err := c.do(ctx, "CountRows", request{
		method: http.MethodHead,
		query:  from(table).Select("*"),
		prefer: []string{preferExactCount},
	}, nil)
	if err != nil {
		return 0, err
	}

	total, err := contentRangeTotal(header.Get("Content-Range"))
	if err != nil {
		return 0, utils.NewAppError(utils.ErrDecode, "CountRows response has no total", err)
	}
	return total, nil
}

func (c *RESTClient) GetFlaggedQuestions(ctx context.Context, limit int) ([]*models.Question, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	return c.moderationQueue(ctx, "GetFlaggedQuestions",
		from(TableQuestions).Select(selectModerationQueue).Eq("flagged", true).Order("created_at", false).Limit(limit))
}

func (c *RESTClient) GetRecentQuestions(ctx context.Context, limit int) ([]*models.Question, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	return c.moderationQueue(ctx, "GetRecentQuestions",
		from(TableQuestions).Select(selectModerationQueue).Order("created_at", false).Limit(limit))
}

func (c *RESTClient) moderationQueue(ctx context.Context, op string, q *query) ([]*models.Question, error) {
	var rows []*models.Question
	if _, err := c.do(ctx, op, request{method: http.MethodGet, query: q}, &rows); err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableQuestions, rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

// moderationPatch returns the columns an action changes.
func moderationPatch(action models.ModerationAction, now time.Time) map[string]any {
	patch := map[string]any{"moderated": true, "updated_at": now.UTC()}
	switch action {
	case models.ModerationApprove:
		patch["flagged"] = false
	case models.ModerationReject:
		patch["visible"] = false
	}
	return patch
}

// ModerateQuestion applies an administrator decision: approve clears the flag, reject hides the question.
func (c *RESTClient) ModerateQuestion(ctx context.Context, id uuid.UUID, action models.ModerationAction) (*models.Question, error) {
	if err := checkModerationAction(action); err != nil {
		return nil, err
	}

	var rows []*models.Question
	_, err := c.do(ctx, "ModerateQuestion", request{
		method: http.MethodPatch,
		query:  from(TableQuestions).Select("*").Eq("id", id),
		body:   moderationPatch(action, c.now()),
		prefer: []string{preferRepresentation},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, utils.NewNotFoundError("question", id.String())
	}
	if err := decodeRows(c.validate, TableQuestions, rows); err != nil {
		return nil, err
	}
	return rows[0], nil
}
