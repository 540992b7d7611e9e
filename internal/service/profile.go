package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stackit/internal/database"
	"stackit/internal/models"
)

// ProfileActivity is a profile together with everything its user authored.
type ProfileActivity struct {
	Profile   *models.Profile    `json:"profile"`
	Questions []*models.Question `json:"questions"`
	Answers   []*models.Answer   `json:"answers"`
}

type ProfileService struct {
	store  database.ContentStore
	logger *zap.Logger
}

func NewProfileService(store database.ContentStore, logger *zap.Logger) *ProfileService {
	return &ProfileService{store: store, logger: logger}
}

// Activity loads the profile, its questions and its answers. A missing profile is
// reported as NOT_FOUND.
func (s *ProfileService) Activity(ctx context.Context, userID uuid.UUID) (*ProfileActivity, error) {
	out := &ProfileActivity{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Profile, err = s.store.GetUserProfile(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Questions, err = s.store.GetQuestionsByAuthor(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Answers, err = s.store.GetAnswersByAuthor(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a self-edit to the profile.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error) {
	p, err := s.store.UpdateUserProfile(ctx, userID, update)
	if err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", zap.String("user_id", userID.String()))
	return p, nil
}
