package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stackit/internal/ai"
	"stackit/internal/database"
	"stackit/internal/models"
)

const (
	FlaggedQueueSize = 10
	RecentQueueSize  = 20
)

// DashboardStats are the exact row counts shown on the admin dashboard.
type DashboardStats struct {
	TotalUsers     int `json:"total_users"`
	TotalQuestions int `json:"total_questions"`
	TotalAnswers   int `json:"total_answers"`
}

// DashboardService backs the administrator's moderation dashboard.
type DashboardService struct {
	store     database.ContentStore
	assistant Assistant
	logger    *zap.Logger
}

func NewDashboardService(store database.ContentStore, assistant Assistant, logger *zap.Logger) *DashboardService {
	return &DashboardService{store: store, assistant: assistant, logger: logger}
}

// Stats counts profiles, questions and answers concurrently. The first failing count
// is returned once all three have finished.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	start := time.Now()
	stats := &DashboardStats{}

	g, gctx := errgroup.WithContext(ctx)
	count := func(table string, dst *int) {
		g.Go(func() error {
			n, err := s.store.CountRows(gctx, table)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(database.TableProfiles, &stats.TotalUsers)
	count(database.TableQuestions, &stats.TotalQuestions)
	count(database.TableAnswers, &stats.TotalAnswers)

	if err := g.Wait(); err != nil {
		s.logger.Warn("dashboard stats failed", zap.Error(err))
		return nil, err
	}

	s.logger.Debug("dashboard stats loaded",
		zap.Int("users", stats.TotalUsers),
		zap.Int("questions", stats.TotalQuestions),
		zap.Int("answers", stats.TotalAnswers),
		zap.Duration("elapsed", time.Since(start)))
	return stats, nil
}

// FlaggedContent is the moderation queue: every flagged question, newest first.
func (s *DashboardService) FlaggedContent(ctx context.Context) ([]*models.Question, error) {
	return s.store.GetFlaggedQuestions(ctx, FlaggedQueueSize)
}

func (s *DashboardService) RecentActivity(ctx context.Context) ([]*models.Question, error) {
	return s.store.GetRecentQuestions(ctx, RecentQueueSize)
}

// Moderate approves or rejects a question and logs the decision.
func (s *DashboardService) Moderate(ctx context.Context, id uuid.UUID, action models.ModerationAction) (*models.Question, error) {
	q, err := s.store.ModerateQuestion(ctx, id, action)
	if err != nil {
		return nil, err
	}
	s.logger.Info("question moderated",
		zap.String("question_id", id.String()),
		zap.String("action", string(action)),
		zap.Bool("visible", q.Visible))
	return q, nil
}

// AnalyzeQuestion asks the AI helper to assess a question's description.
func (s *DashboardService) AnalyzeQuestion(ctx context.Context, q *models.Question) ai.Result[*ai.ContentAnalysis] {
	if s.assistant == nil {
		return unavailable[*ai.ContentAnalysis](nil)
	}
	return s.assistant.AnalyzeContent(ctx, q.Description, ai.ContentQuestion)
}
