// internal/database/vote_repository.go
package database

import (
	"context"
	"net/http"

	"stackit/internal/models"
)

// VoteOnContent records the user's vote on a target. A repeated vote on the same
// target replaces the direction instead of adding a row.
func (c *RESTClient) VoteOnContent(ctx context.Context, vote models.Vote) (*models.Vote, error) {
	vote.CreatedAt = nil
	if err := c.validate.Validate(vote); err != nil {
		return nil, err
	}

	var rows []*models.Vote
	_, err := c.do(ctx, "VoteOnContent", request{
		method: http.MethodPost,
		query:  from(TableVotes).Select("*").OnConflict("user_id", "target_id", "target_type"),
		body:   []models.Vote{vote},
		prefer: []string{preferMergeDupes, preferRepresentation},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableVotes, rows); err != nil {
		return nil, err
	}
	return firstRow("VoteOnContent", rows)
}
