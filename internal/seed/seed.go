// Package seed loads the sample questions a fresh StackIt datastore starts with, plus
// optional answers and votes so the listing, leaderboard and analytics views have data.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stackit/internal/database"
	"stackit/internal/models"
	"stackit/internal/utils"
)

// SampleQuestion is one question of the sample set, with the answer posted to it
// when answers are requested.
type SampleQuestion struct {
	Title        string
	Description  string
	Tags         []string
	QualityScore float64
	Answer       string
}

// SampleQuestions is the sample set, in insertion order.
var SampleQuestions = []SampleQuestion{
	{
		Title:        "How to implement JWT authentication in React?",
		Description:  "I'm building a React application and need to implement secure JWT authentication. What are the best practices?",
		Tags:         []string{"React", "JWT", "Authentication"},
		QualityScore: 0.85,
		Answer:       "Keep the access token in memory, put the refresh token in an httpOnly cookie, and refresh shortly before expiry from a single place such as an API client interceptor.",
	},
	{
		Title:        "Best practices for PostgreSQL query optimization",
		Description:  "What are some advanced techniques for optimizing PostgreSQL queries for better performance?",
		Tags:         []string{"Database", "PostgreSQL", "Performance"},
		QualityScore: 0.90,
		Answer:       "Start from EXPLAIN (ANALYZE, BUFFERS), index the columns your filters and joins use, and avoid functions on indexed columns in WHERE clauses.",
	},
	{
		Title:        "Understanding React Hooks lifecycle",
		Description:  "Can someone explain how React Hooks work and their lifecycle compared to class components?",
		Tags:         []string{"React", "JavaScript", "Hooks"},
		QualityScore: 0.75,
		Answer:       "useEffect runs after render; its cleanup runs before the next effect and on unmount. The dependency array decides when it re-runs.",
	},
}

// Config describes what to seed.
type Config struct {
	AuthorID uuid.UUID   // Profile that asks the sample questions
	Voters   []uuid.UUID // Profiles that upvote every sample question
	Answers  bool        // Post each question's sample answer, authored by the first voter
	Rate     float64     // Writes per second; 0 means unlimited
}

// Summary reports what a run wrote.
type Summary struct {
	Questions []uuid.UUID   `json:"questions"`
	Answers   int           `json:"answers"`
	Votes     int           `json:"votes"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed"`
}

type Seeder struct {
	store   database.ContentStore
	config  Config
	limiter *rate.Limiter
	logger  *zap.Logger
	summary Summary
}

func NewSeeder(store database.ContentStore, config Config, logger *zap.Logger) (*Seeder, error) {
	if config.AuthorID == uuid.Nil {
		return nil, utils.NewInvalidInputError("seed author is required")
	}
	if config.Answers && len(config.Voters) == 0 {
		return nil, utils.NewInvalidInputError("seeding answers needs at least one voter to author them")
	}
	for _, voter := range config.Voters {
		if voter == config.AuthorID {
			return nil, utils.NewInvalidInputError("the seed author cannot vote on their own questions")
		}
	}

	limit := rate.Inf
	if config.Rate > 0 {
		limit = rate.Limit(config.Rate)
	}
	return &Seeder{
		store:   store,
		config:  config,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}, nil
}

// Run inserts the sample questions, then their answers and votes. A failed question
// insert stops the run; a failed answer or vote is counted and logged.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	s.logger.Info("seeding sample content",
		zap.String("author_id", s.config.AuthorID.String()),
		zap.Int("questions", len(SampleQuestions)),
		zap.Int("voters", len(s.config.Voters)),
		zap.Bool("answers", s.config.Answers))

	for _, sample := range SampleQuestions {
		q, err := s.insertQuestion(ctx, sample)
		if err != nil {
			return s.finish(start), fmt.Errorf("seeding %q: %w", sample.Title, err)
		}

		if s.config.Answers {
			if err := s.insertAnswer(ctx, q.ID, sample.Answer); err != nil {
				if ctx.Err() != nil {
					return s.finish(start), ctx.Err()
				}
				s.recordFailure("answer", err)
			}
		}

		for _, voter := range s.config.Voters {
			if err := s.upvote(ctx, voter, q.ID); err != nil {
				if ctx.Err() != nil {
					return s.finish(start), ctx.Err()
				}
				s.recordFailure("vote", err)
			}
		}
	}

	summary := s.finish(start)
	s.logger.Info("seeding completed",
		zap.Int("questions", len(summary.Questions)),
		zap.Int("answers", summary.Answers),
		zap.Int("votes", summary.Votes),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

func (s *Seeder) insertQuestion(ctx context.Context, sample SampleQuestion) (*models.Question, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	score := sample.QualityScore
	q, err := s.store.InsertQuestion(ctx, models.NewQuestion{
		Title:        sample.Title,
		Description:  sample.Description,
		AuthorID:     s.config.AuthorID,
		Tags:         sample.Tags,
		QualityScore: &score,
	})
	if err != nil {
		return nil, err
	}

	s.summary.Questions = append(s.summary.Questions, q.ID)
	return q, nil
}

func (s *Seeder) insertAnswer(ctx context.Context, questionID uuid.UUID, content string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := s.store.InsertAnswer(ctx, models.NewAnswer{
		QuestionID: questionID,
		AuthorID:   s.config.Voters[0],
		Content:    content,
	}); err != nil {
		return err
	}

	s.summary.Answers++
	return nil
}

func (s *Seeder) upvote(ctx context.Context, voter, questionID uuid.UUID) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := s.store.VoteOnContent(ctx, models.Vote{
		UserID:     voter,
		TargetID:   questionID,
		TargetType: models.QuestionVote,
		Direction:  models.VoteUp,
	}); err != nil {
		return err
	}

	s.summary.Votes++
	return nil
}

func (s *Seeder) recordFailure(kind string, err error) {
	s.summary.Failed++
	s.logger.Warn("seed write failed", zap.String("kind", kind), zap.Error(err))
}

func (s *Seeder) finish(start time.Time) Summary {
	s.summary.Elapsed = time.Since(start)
	out := s.summary
	out.Questions = append([]uuid.UUID{}, s.summary.Questions...)
	return out
}
