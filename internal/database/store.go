// internal/database/store.go
package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stackit/internal/models"
)

const (
	// SearchLimit caps SearchQuestions results.
	SearchLimit = 50
	// ContentSearchLimit caps SearchContent results.
	ContentSearchLimit = 20
	// NotificationLimit caps GetUserNotifications results.
	NotificationLimit = 50
)

// Collection names in the datastore.
const (
	TableQuestions     = "questions"
	TableAnswers       = "answers"
	TableProfiles      = "profiles"
	TableVotes         = "votes"
	TableTags          = "tags"
	TableNotifications = "notifications"
)

// countableTables are the collections CountRows accepts.
var countableTables = map[string]bool{
	TableQuestions:     true,
	TableAnswers:       true,
	TableProfiles:      true,
	TableVotes:         true,
	TableTags:          true,
	TableNotifications: true,
}

// ContentStore is the Content Client: every read and write the application issues
// against its datastore. RESTClient talks to the hosted datastore, PostgresDB to the
// database directly.
type ContentStore interface {
	Close(ctx context.Context) error

	// Questions
	InsertQuestion(ctx context.Context, question models.NewQuestion) (*models.Question, error)
	GetQuestions(ctx context.Context, limit, offset int) ([]*models.Question, error)
	GetQuestionByID(ctx context.Context, id uuid.UUID) (*models.QuestionDetail, error)
	SearchQuestions(ctx context.Context, query string, tags []string) ([]*models.Question, error)
	SearchContent(ctx context.Context, opts models.SearchOptions) ([]*models.Question, error)
	GetQuestionsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Question, error)
	ListQuestionTags(ctx context.Context) ([][]string, error)

	// Answers
	InsertAnswer(ctx context.Context, answer models.NewAnswer) (*models.Answer, error)
	GetAnswersByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Answer, error)

	// Votes
	VoteOnContent(ctx context.Context, vote models.Vote) (*models.Vote, error)

	// Profiles
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateUserProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error)
	GetTopProfiles(ctx context.Context, orderBy models.LeaderboardOrder, since *time.Time, limit int) ([]*models.Profile, error)

	// Tags
	GetTags(ctx context.Context) ([]*models.Tag, error)
	GetTopTags(ctx context.Context, limit int) ([]*models.Tag, error)

	// Notifications
	GetUserNotifications(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID uuid.UUID) error

	// Moderation
	CountRows(ctx context.Context, table string) (int, error)
	GetFlaggedQuestions(ctx context.Context, limit int) ([]*models.Question, error)
	GetRecentQuestions(ctx context.Context, limit int) ([]*models.Question, error)
	ModerateQuestion(ctx context.Context, id uuid.UUID, action models.ModerationAction) (*models.Question, error)

	// Analytics
	GetQuestionActivity(ctx context.Context, since *time.Time) ([]*models.QuestionActivity, error)
	GetProfileActivity(ctx context.Context) ([]*models.ProfileActivity, error)
}
