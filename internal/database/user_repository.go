// internal/database/user_repository.go
package database

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"stackit/internal/models"
	"stackit/internal/utils"
)

func (c *RESTClient) GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	_, err := c.do(ctx, "GetUserProfile", request{
		method: http.MethodGet,
		query:  from(TableProfiles).Select("*").Eq("id", userID),
		single: true,
	}, &profile)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewNotFoundError("profile", userID.String())
		}
		return nil, err
	}
	if err := c.validate.ValidateRow(TableProfiles, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// profilePatch is the body of a profile update; updated_at is stamped by the client.
type profilePatch struct {
	models.ProfileUpdate
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateUserProfile applies the non-nil fields of update to the profile.
func (c *RESTClient) UpdateUserProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error) {
	if update.IsEmpty() {
		return nil, utils.NewInvalidInputError("profile update has no fields")
	}
	if err := c.validate.Validate(update); err != nil {
		return nil, err
	}

	var rows []*models.Profile
	_, err := c.do(ctx, "UpdateUserProfile", request{
		method: http.MethodPatch,
		query:  from(TableProfiles).Select("*").Eq("id", userID),
		body:   profilePatch{ProfileUpdate: update, UpdatedAt: c.now().UTC()},
		prefer: []string{preferRepresentation},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, utils.NewNotFoundError("profile", userID.String())
	}
	if err := decodeRows(c.validate, TableProfiles, rows); err != nil {
		return nil, err
	}
	return rows[0], nil
}

// GetTopProfiles ranks profiles by orderBy, optionally only those seen since the given time.
func (c *RESTClient) GetTopProfiles(ctx context.Context, orderBy models.LeaderboardOrder, since *time.Time, limit int) ([]*models.Profile, error) {
	if err := checkLeaderboardOrder(orderBy); err != nil {
		return nil, err
	}
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	q := from(TableProfiles).Select("*")
	if since != nil {
		q.Gte("last_seen", *since)
	}
	q.Order(string(orderBy), false).Limit(limit)

	var rows []*models.Profile
	if _, err := c.do(ctx, "GetTopProfiles", request{method: http.MethodGet, query: q}, &rows); err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableProfiles, rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}
