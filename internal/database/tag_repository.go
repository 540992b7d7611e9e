// internal/database/tag_repository.go
package database

import (
	"context"
	"net/http"

	"stackit/internal/models"
)

// GetTags returns every tag, most used first.
func (c *RESTClient) GetTags(ctx context.Context) ([]*models.Tag, error) {
	return c.listTags(ctx, "GetTags", 0)
}

func (c *RESTClient) GetTopTags(ctx context.Context, limit int) ([]*models.Tag, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	return c.listTags(ctx, "GetTopTags", limit)
}

func (c *RESTClient) listTags(ctx context.Context, op string, limit int) ([]*models.Tag, error) {
	q := from(TableTags).Select("*").Order("usage_count", false)
	if limit > 0 {
		q.Limit(limit)
	}

	var rows []*models.Tag
	if _, err := c.do(ctx, op, request{method: http.MethodGet, query: q}, &rows); err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableTags, rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}
