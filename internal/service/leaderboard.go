package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stackit/internal/database"
	"stackit/internal/models"
)

const (
	LeaderboardSize = 10
	TrendingWindow  = 7 * 24 * time.Hour
)

// Leaderboard ranks profiles three ways.
type Leaderboard struct {
	TopReputation []*models.Profile `json:"top_reputation"`
	TopAskers     []*models.Profile `json:"top_askers"`
	Trending      []*models.Profile `json:"trending"`
}

type LeaderboardService struct {
	store  database.ContentStore
	logger *zap.Logger
	now    func() time.Time
}

func NewLeaderboardService(store database.ContentStore, logger *zap.Logger) *LeaderboardService {
	return &LeaderboardService{store: store, logger: logger, now: time.Now}
}

// Leaderboard fetches the top profiles by reputation and by questions asked, and the
// highest-reputation profiles seen within the trending window.
func (s *LeaderboardService) Leaderboard(ctx context.Context) (*Leaderboard, error) {
	board := &Leaderboard{}
	since := s.now().Add(-TrendingWindow)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		board.TopReputation, err = s.store.GetTopProfiles(gctx, models.ByReputation, nil, LeaderboardSize)
		return err
	})
	g.Go(func() (err error) {
		board.TopAskers, err = s.store.GetTopProfiles(gctx, models.ByQuestionsCount, nil, LeaderboardSize)
		return err
	})
	g.Go(func() (err error) {
		board.Trending, err = s.store.GetTopProfiles(gctx, models.ByReputation, &since, LeaderboardSize)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("leaderboard failed", zap.Error(err))
		return nil, err
	}
	return board, nil
}
