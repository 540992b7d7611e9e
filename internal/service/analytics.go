package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stackit/internal/analytics"
	"stackit/internal/database"
	"stackit/internal/models"
)

const (
	TopTagsSize    = 10
	ActivityWindow = 30 * 24 * time.Hour
)

type QuestionAnalytics struct {
	Total      int                     `json:"total"`
	Monthly    []analytics.MonthCount  `json:"monthly"`
	ByStatus   []analytics.StatusCount `json:"by_status"`
	TotalViews int                     `json:"total_views"`
	TotalVotes int                     `json:"total_votes"`
}

type UserAnalytics struct {
	Total             int                          `json:"total"`
	MonthlySignups    []analytics.MonthCount       `json:"monthly_signups"`
	Reputation        []analytics.ReputationBucket `json:"reputation"`
	AverageReputation float64                      `json:"average_reputation"`
}

// Report is everything the analytics page charts.
type Report struct {
	Questions     QuestionAnalytics    `json:"questions"`
	Users         UserAnalytics        `json:"users"`
	TopTags       []*models.Tag        `json:"top_tags"`
	DailyActivity []analytics.DayCount `json:"daily_activity"`
}

type AnalyticsService struct {
	store  database.ContentStore
	logger *zap.Logger
	now    func() time.Time
}

func NewAnalyticsService(store database.ContentStore, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{store: store, logger: logger, now: time.Now}
}

// Report runs the four analytics fetches concurrently and aggregates them once all
// have completed. Monthly buckets keep the order rows were returned in.
func (s *AnalyticsService) Report(ctx context.Context) (*Report, error) {
	var (
		questions []*models.QuestionActivity
		profiles  []*models.ProfileActivity
		topTags   []*models.Tag
		recent    []*models.QuestionActivity
	)
	since := s.now().Add(-ActivityWindow)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		questions, err = s.store.GetQuestionActivity(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		profiles, err = s.store.GetProfileActivity(gctx)
		return err
	})
	g.Go(func() (err error) {
		topTags, err = s.store.GetTopTags(gctx, TopTagsSize)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.store.GetQuestionActivity(gctx, &since)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("analytics report failed", zap.Error(err))
		return nil, err
	}

	return &Report{
		Questions:     questionAnalytics(questions),
		Users:         userAnalytics(profiles),
		TopTags:       topTags,
		DailyActivity: analytics.DailyActivity(createdTimes(recent)),
	}, nil
}

func questionAnalytics(rows []*models.QuestionActivity) QuestionAnalytics {
	statuses := make([]string, len(rows))
	for i, r := range rows {
		statuses[i] = r.Status
	}
	return QuestionAnalytics{
		Total:      len(rows),
		Monthly:    analytics.MonthlyCounts(createdTimes(rows)),
		ByStatus:   analytics.StatusHistogram(statuses),
		TotalViews: analytics.TotalViews(rows),
		TotalVotes: analytics.TotalVotes(rows),
	}
}

func userAnalytics(rows []*models.ProfileActivity) UserAnalytics {
	created := make([]time.Time, len(rows))
	reputation := make([]int, len(rows))
	for i, r := range rows {
		created[i] = r.CreatedAt
		reputation[i] = r.Reputation
	}
	return UserAnalytics{
		Total:             len(rows),
		MonthlySignups:    analytics.MonthlyCounts(created),
		Reputation:        analytics.ReputationHistogram(reputation),
		AverageReputation: analytics.AverageReputation(reputation),
	}
}

func createdTimes(rows []*models.QuestionActivity) []time.Time {
	out := make([]time.Time, len(rows))
	for i, r := range rows {
		out[i] = r.CreatedAt
	}
	return out
}
