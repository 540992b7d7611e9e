// internal/database/analytics_repository.go
package database

import (
	"context"
	"net/http"
	"time"

	"stackit/internal/models"
)

// GetQuestionActivity returns the analytics projection of questions created since the
// given time (all questions when nil), oldest first.
func (c *RESTClient) GetQuestionActivity(ctx context.Context, since *time.Time) ([]*models.QuestionActivity, error) {
	q := from(TableQuestions).Select("created_at, status, views_count, votes_count")
	if since != nil {
		q.Gte("created_at", *since)
	}
	q.Order("created_at", true)

	var rows []*models.QuestionActivity
	if _, err := c.do(ctx, "GetQuestionActivity", request{method: http.MethodGet, query: q}, &rows); err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableQuestions, rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

func (c *RESTClient) GetProfileActivity(ctx context.Context) ([]*models.ProfileActivity, error) {
	var rows []*models.ProfileActivity
	_, err := c.do(ctx, "GetProfileActivity", request{
		method: http.MethodGet,
		query:  from(TableProfiles).Select("created_at, reputation, questions_count, answers_count").Order("created_at", true),
	}, &rows)
	if err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableProfiles, rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}
