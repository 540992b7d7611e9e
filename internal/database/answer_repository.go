// internal/database/answer_repository.go
package database

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"stackit/internal/models"
)

const selectAnswerInsert = `*, profiles:author_id(username, display_name, avatar_url)`

func (c *RESTClient) InsertAnswer(ctx context.Context, answer models.NewAnswer) (*models.Answer, error) {
	if err := c.validate.Validate(answer); err != nil {
		return nil, err
	}

	var rows []*models.Answer
	_, err := c.do(ctx, "InsertAnswer", request{
		method: http.MethodPost,
		query:  from(TableAnswers).Select(selectAnswerInsert),
		body:   []models.NewAnswer{answer},
		prefer: []string{preferRepresentation},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableAnswers, rows); err != nil {
		return nil, err
	}
	return firstRow("InsertAnswer", rows)
}

// GetAnswersByAuthor lists a user's answers with the title of the question each one answers.
func (c *RESTClient) GetAnswersByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Answer, error) {
	var rows []*models.Answer
	_, err := c.do(ctx, "GetAnswersByAuthor", request{
		method: http.MethodGet,
		query: from(TableAnswers).
			Select(`*, questions(title)`).
			Eq("author_id", authorID).
			Order("created_at", false),
	}, &rows)
	if err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableAnswers, rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}
