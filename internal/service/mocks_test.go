package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"stackit/internal/ai"
	"stackit/internal/database"
	"stackit/internal/models"
)

// mockStore is a testify mock of database.ContentStore.
type mockStore struct {
	mock.Mock
}

var _ database.ContentStore = (*mockStore)(nil)

func (m *mockStore) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) InsertQuestion(ctx context.Context, question models.NewQuestion) (*models.Question, error) {
	args := m.Called(ctx, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *mockStore) GetQuestions(ctx context.Context, limit, offset int) ([]*models.Question, error) {
	args := m.Called(ctx, limit, offset)
	return questionsArg(args, 0), args.Error(1)
}

func (m *mockStore) GetQuestionByID(ctx context.Context, id uuid.UUID) (*models.QuestionDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionDetail), args.Error(1)
}

func (m *mockStore) SearchQuestions(ctx context.Context, query string, tags []string) ([]*models.Question, error) {
	args := m.Called(ctx, query, tags)
	return questionsArg(args, 0), args.Error(1)
}

func (m *mockStore) SearchContent(ctx context.Context, opts models.SearchOptions) ([]*models.Question, error) {
	args := m.Called(ctx, opts)
	return questionsArg(args, 0), args.Error(1)
}

func (m *mockStore) GetQuestionsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Question, error) {
	args := m.Called(ctx, authorID)
	return questionsArg(args, 0), args.Error(1)
}

func (m *mockStore) ListQuestionTags(ctx context.Context) ([][]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]string), args.Error(1)
}

func (m *mockStore) InsertAnswer(ctx context.Context, answer models.NewAnswer) (*models.Answer, error) {
	args := m.Called(ctx, answer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Answer), args.Error(1)
}

func (m *mockStore) GetAnswersByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Answer, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Answer), args.Error(1)
}

func (m *mockStore) VoteOnContent(ctx context.Context, vote models.Vote) (*models.Vote, error) {
	args := m.Called(ctx, vote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vote), args.Error(1)
}

func (m *mockStore) GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockStore) UpdateUserProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error) {
	args := m.Called(ctx, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockStore) GetTopProfiles(ctx context.Context, orderBy models.LeaderboardOrder, since *time.Time, limit int) ([]*models.Profile, error) {
	args := m.Called(ctx, orderBy, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

func (m *mockStore) GetTags(ctx context.Context) ([]*models.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tag), args.Error(1)
}

func (m *mockStore) GetTopTags(ctx context.Context, limit int) ([]*models.Tag, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tag), args.Error(1)
}

func (m *mockStore) GetUserNotifications(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *mockStore) MarkNotificationsRead(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockStore) CountRows(ctx context.Context, table string) (int, error) {
	args := m.Called(ctx, table)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) GetFlaggedQuestions(ctx context.Context, limit int) ([]*models.Question, error) {
	args := m.Called(ctx, limit)
	return questionsArg(args, 0), args.Error(1)
}

func (m *mockStore) GetRecentQuestions(ctx context.Context, limit int) ([]*models.Question, error) {
	args := m.Called(ctx, limit)
	return questionsArg(args, 0), args.Error(1)
}

func (m *mockStore) ModerateQuestion(ctx context.Context, id uuid.UUID, action models.ModerationAction) (*models.Question, error) {
	args := m.Called(ctx, id, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *mockStore) GetQuestionActivity(ctx context.Context, since *time.Time) ([]*models.QuestionActivity, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuestionActivity), args.Error(1)
}

func (m *mockStore) GetProfileActivity(ctx context.Context) ([]*models.ProfileActivity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProfileActivity), args.Error(1)
}

func questionsArg(args mock.Arguments, i int) []*models.Question {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).([]*models.Question)
}

// mockAssistant is a testify mock of Assistant.
type mockAssistant struct {
	mock.Mock
}

var _ Assistant = (*mockAssistant)(nil)

func (m *mockAssistant) AnalyzeContent(ctx context.Context, content string, kind ai.ContentType) ai.Result[*ai.ContentAnalysis] {
	return m.Called(ctx, content, kind).Get(0).(ai.Result[*ai.ContentAnalysis])
}

func (m *mockAssistant) GenerateTags(ctx context.Context, title, description string) ai.Result[[]string] {
	return m.Called(ctx, title, description).Get(0).(ai.Result[[]string])
}

func (m *mockAssistant) ImproveQuestion(ctx context.Context, title, description string) ai.Result[*ai.ImprovedQuestion] {
	return m.Called(ctx, title, description).Get(0).(ai.Result[*ai.ImprovedQuestion])
}

func (m *mockAssistant) GenerateAnswer(ctx context.Context, question, details string) ai.Result[string] {
	return m.Called(ctx, question, details).Get(0).(ai.Result[string])
}

func (m *mockAssistant) SuggestSearches(ctx context.Context, query string) ai.Result[[]string] {
	return m.Called(ctx, query).Get(0).(ai.Result[[]string])
}
