package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stackit/internal/ai"
	"stackit/internal/analytics"
	"stackit/internal/database"
	"stackit/internal/models"
	"stackit/internal/utils"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func sinceMatching(want time.Time) interface{} {
	return mock.MatchedBy(func(t *time.Time) bool {
		return t != nil && t.Equal(want)
	})
}

func TestDashboardStats(t *testing.T) {
	store := new(mockStore)
	store.On("CountRows", mock.Anything, database.TableProfiles).Return(12, nil)
	store.On("CountRows", mock.Anything, database.TableQuestions).Return(34, nil)
	store.On("CountRows", mock.Anything, database.TableAnswers).Return(56, nil)

	svc := NewDashboardService(store, nil, zap.NewNop())
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &DashboardStats{TotalUsers: 12, TotalQuestions: 34, TotalAnswers: 56}, stats)
	store.AssertExpectations(t)
}

func TestDashboardStatsError(t *testing.T) {
	store := new(mockStore)
	denied := utils.NewAppError(utils.ErrForbidden, "permission denied", nil)
	store.On("CountRows", mock.Anything, database.TableProfiles).Return(0, denied)
	store.On("CountRows", mock.Anything, database.TableQuestions).Return(34, nil).Maybe()
	store.On("CountRows", mock.Anything, database.TableAnswers).Return(56, nil).Maybe()

	svc := NewDashboardService(store, nil, zap.NewNop())
	stats, err := svc.Stats(context.Background())
	assert.Nil(t, stats)
	assert.True(t, utils.IsErrorCode(err, utils.ErrForbidden))
}

func TestDashboardQueues(t *testing.T) {
	flagged := []*models.Question{{ID: uuid.New(), Title: "spam?", Flagged: true}}
	recent := []*models.Question{{ID: uuid.New(), Title: "new"}, {ID: uuid.New(), Title: "older"}}

	store := new(mockStore)
	store.On("GetFlaggedQuestions", mock.Anything, FlaggedQueueSize).Return(flagged, nil)
	store.On("GetRecentQuestions", mock.Anything, RecentQueueSize).Return(recent, nil)

	svc := NewDashboardService(store, nil, zap.NewNop())

	got, err := svc.FlaggedContent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, flagged, got)

	got, err = svc.RecentActivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, recent, got)

	store.AssertExpectations(t)
}

func TestDashboardModerate(t *testing.T) {
	id := uuid.New()
	store := new(mockStore)
	store.On("ModerateQuestion", mock.Anything, id, models.ModerationReject).
		Return(&models.Question{ID: id, Flagged: true, Moderated: true, Visible: false}, nil)
	store.On("ModerateQuestion", mock.Anything, mock.Anything, models.ModerationApprove).
		Return(nil, utils.NewNotFoundError("question", "missing"))

	svc := NewDashboardService(store, nil, zap.NewNop())

	q, err := svc.Moderate(context.Background(), id, models.ModerationReject)
	require.NoError(t, err)
	assert.True(t, q.Moderated)
	assert.False(t, q.Visible)

	_, err = svc.Moderate(context.Background(), uuid.New(), models.ModerationApprove)
	assert.True(t, utils.IsNotFound(err))
}

func TestDashboardAnalyzeQuestion(t *testing.T) {
	q := &models.Question{Title: "Title", Description: "How do I cancel a context?"}

	t.Run("no assistant", func(t *testing.T) {
		svc := NewDashboardService(new(mockStore), nil, zap.NewNop())
		res := svc.AnalyzeQuestion(context.Background(), q)
		assert.Equal(t, ai.OutcomeUnavailable, res.Outcome)
		assert.Nil(t, res.Value)
		assert.Error(t, res.Err)
	})

	t.Run("delegates description", func(t *testing.T) {
		analysis := &ai.ContentAnalysis{QualityScore: 80, Issues: []string{}, Suggestions: []string{}}
		assistant := new(mockAssistant)
		assistant.On("AnalyzeContent", mock.Anything, q.Description, ai.ContentQuestion).
			Return(ai.Result[*ai.ContentAnalysis]{Value: analysis})

		svc := NewDashboardService(new(mockStore), assistant, zap.NewNop())
		res := svc.AnalyzeQuestion(context.Background(), q)
		assert.True(t, res.OK())
		assert.Equal(t, analysis, res.Value)
		assistant.AssertExpectations(t)
	})
}

func TestAnalyticsReport(t *testing.T) {
	at := func(s string) time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return ts
	}
	questions := []*models.QuestionActivity{
		{CreatedAt: at("2024-01-05T10:00:00Z"), Status: "open", ViewsCount: 10, VotesCount: 2},
		{CreatedAt: at("2023-12-20T10:00:00Z"), ViewsCount: 5, VotesCount: -1},
		{CreatedAt: at("2024-01-10T10:00:00Z"), Status: "open", ViewsCount: 1, VotesCount: 4},
	}
	recent := []*models.QuestionActivity{
		{CreatedAt: at("2024-03-14T09:00:00Z")},
		{CreatedAt: at("2024-03-01T09:00:00Z")},
		{CreatedAt: at("2024-03-14T18:00:00Z")},
	}
	profiles := []*models.ProfileActivity{
		{CreatedAt: at("2024-02-01T00:00:00Z"), Reputation: 0},
		{CreatedAt: at("2024-02-02T00:00:00Z"), Reputation: 100},
		{CreatedAt: at("2024-01-02T00:00:00Z"), Reputation: 101},
		{CreatedAt: at("2024-02-03T00:00:00Z"), Reputation: 1000},
		{CreatedAt: at("2024-02-04T00:00:00Z"), Reputation: 1001},
	}
	tags := []*models.Tag{{Name: "go", UsageCount: 9}}

	store := new(mockStore)
	store.On("GetQuestionActivity", mock.Anything, (*time.Time)(nil)).Return(questions, nil)
	store.On("GetQuestionActivity", mock.Anything, sinceMatching(fixedNow.Add(-ActivityWindow))).Return(recent, nil)
	store.On("GetProfileActivity", mock.Anything).Return(profiles, nil)
	store.On("GetTopTags", mock.Anything, TopTagsSize).Return(tags, nil)

	svc := NewAnalyticsService(store, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }

	report, err := svc.Report(context.Background())
	require.NoError(t, err)
	store.AssertExpectations(t)

	assert.Equal(t, QuestionAnalytics{
		Total:      3,
		Monthly:    []analytics.MonthCount{{Month: "2024-01", Count: 2}, {Month: "2023-12", Count: 1}},
		ByStatus:   []analytics.StatusCount{{Status: "open", Count: 2}, {Status: analytics.DefaultStatus, Count: 1}},
		TotalViews: 16,
		TotalVotes: 5,
	}, report.Questions)

	assert.Equal(t, 5, report.Users.Total)
	assert.Equal(t, []analytics.MonthCount{{Month: "2024-02", Count: 4}, {Month: "2024-01", Count: 1}}, report.Users.MonthlySignups)
	assert.Equal(t, []analytics.ReputationBucket{
		{Range: "0-100", Min: 0, Max: 100, Count: 2},
		{Range: "101-500", Min: 101, Max: 500, Count: 1},
		{Range: "501-1000", Min: 501, Max: 1000, Count: 1},
		{Range: "1001+", Min: 1001, Max: math.MaxInt, Count: 1},
	}, report.Users.Reputation)
	assert.InDelta(t, 440.4, report.Users.AverageReputation, 1e-9)

	assert.Equal(t, tags, report.TopTags)
	assert.Equal(t, []analytics.DayCount{{Date: "2024-03-01", Count: 1}, {Date: "2024-03-14", Count: 2}}, report.DailyActivity)
}

func TestAnalyticsReportError(t *testing.T) {
	store := new(mockStore)
	store.On("GetQuestionActivity", mock.Anything, mock.Anything).Return([]*models.QuestionActivity{}, nil).Maybe()
	store.On("GetProfileActivity", mock.Anything).Return(nil, utils.NewAppError(utils.ErrTransport, "request failed", nil))
	store.On("GetTopTags", mock.Anything, TopTagsSize).Return([]*models.Tag{}, nil).Maybe()

	report, err := NewAnalyticsService(store, zap.NewNop()).Report(context.Background())
	assert.Nil(t, report)
	assert.True(t, utils.IsErrorCode(err, utils.ErrTransport))
}

func TestLeaderboard(t *testing.T) {
	top := []*models.Profile{{Username: "alice", Reputation: 900}}
	askers := []*models.Profile{{Username: "bob", QuestionsCount: 40}}
	trending := []*models.Profile{{Username: "carol", Reputation: 300}}

	store := new(mockStore)
	store.On("GetTopProfiles", mock.Anything, models.ByReputation, (*time.Time)(nil), LeaderboardSize).Return(top, nil)
	store.On("GetTopProfiles", mock.Anything, models.ByQuestionsCount, (*time.Time)(nil), LeaderboardSize).Return(askers, nil)
	store.On("GetTopProfiles", mock.Anything, models.ByReputation, sinceMatching(fixedNow.Add(-TrendingWindow)), LeaderboardSize).Return(trending, nil)

	svc := NewLeaderboardService(store, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }

	board, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Leaderboard{TopReputation: top, TopAskers: askers, Trending: trending}, board)
	store.AssertExpectations(t)
}

func TestProfileActivity(t *testing.T) {
	userID := uuid.New()
	profile := &models.Profile{ID: userID, Username: "alice"}
	questions := []*models.Question{{ID: uuid.New(), AuthorID: userID}}
	answers := []*models.Answer{{ID: uuid.New(), AuthorID: userID, Question: &models.QuestionRef{Title: "Why?"}}}

	store := new(mockStore)
	store.On("GetUserProfile", mock.Anything, userID).Return(profile, nil)
	store.On("GetQuestionsByAuthor", mock.Anything, userID).Return(questions, nil)
	store.On("GetAnswersByAuthor", mock.Anything, userID).Return(answers, nil)

	got, err := NewProfileService(store, zap.NewNop()).Activity(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, &ProfileActivity{Profile: profile, Questions: questions, Answers: answers}, got)
}

func TestProfileActivityNotFound(t *testing.T) {
	userID := uuid.New()
	store := new(mockStore)
	store.On("GetUserProfile", mock.Anything, userID).Return(nil, utils.NewNotFoundError("profile", userID.String()))
	store.On("GetQuestionsByAuthor", mock.Anything, userID).Return([]*models.Question{}, nil).Maybe()
	store.On("GetAnswersByAuthor", mock.Anything, userID).Return([]*models.Answer{}, nil).Maybe()

	got, err := NewProfileService(store, zap.NewNop()).Activity(context.Background(), userID)
	assert.Nil(t, got)
	assert.True(t, utils.IsNotFound(err))
}

func TestProfileUpdate(t *testing.T) {
	userID := uuid.New()
	bio := "gopher"
	update := models.ProfileUpdate{Bio: &bio}

	store := new(mockStore)
	store.On("UpdateUserProfile", mock.Anything, userID, update).Return(&models.Profile{ID: userID, Bio: bio}, nil)

	p, err := NewProfileService(store, zap.NewNop()).Update(context.Background(), userID, update)
	require.NoError(t, err)
	assert.Equal(t, bio, p.Bio)
}

func TestTagDirectory(t *testing.T) {
	store := new(mockStore)
	store.On("ListQuestionTags", mock.Anything).Return([][]string{{"React", "JWT"}, {"React"}, {}, {"react-native"}}, nil)

	svc := NewTagService(store, zap.NewNop())

	tests := []struct {
		name   string
		filter string
		want   []models.TagCount
	}{
		{"all", "", []models.TagCount{{Name: "React", Count: 2}, {Name: "JWT", Count: 1}, {Name: "react-native", Count: 1}}},
		{"case-insensitive", "REACT", []models.TagCount{{Name: "React", Count: 2}, {Name: "react-native", Count: 1}}},
		{"no match", "vue", []models.TagCount{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Directory(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagDirectoryError(t *testing.T) {
	store := new(mockStore)
	store.On("ListQuestionTags", mock.Anything).Return(nil, errors.New("boom"))

	_, err := NewTagService(store, zap.NewNop()).Directory(context.Background(), "")
	assert.EqualError(t, err, "boom")
}

func TestInbox(t *testing.T) {
	userID := uuid.New()
	unreadList := []*models.Notification{
		{ID: uuid.New(), UserID: userID, Type: models.NotificationAnswer},
		{ID: uuid.New(), UserID: userID, Type: models.NotificationVote, Read: true},
	}

	t.Run("marks unread as read", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetUserNotifications", mock.Anything, userID).Return(unreadList, nil)
		store.On("MarkNotificationsRead", mock.Anything, userID).Return(nil).Once()

		got, err := NewNotificationService(store, zap.NewNop()).Inbox(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, unreadList, got)
		assert.False(t, got[0].Read)
		store.AssertExpectations(t)
	})

	t.Run("mark failure is only logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		store := new(mockStore)
		store.On("GetUserNotifications", mock.Anything, userID).Return(unreadList, nil)
		store.On("MarkNotificationsRead", mock.Anything, userID).Return(utils.NewAppError(utils.ErrForbidden, "permission denied", nil))

		got, err := NewNotificationService(store, zap.New(core)).Inbox(context.Background(), userID)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, 1, logs.FilterMessage("marking notifications read failed").Len())
	})

	t.Run("nothing unread", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetUserNotifications", mock.Anything, userID).Return([]*models.Notification{}, nil)

		got, err := NewNotificationService(store, zap.NewNop()).Inbox(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, got)
		store.AssertNotCalled(t, "MarkNotificationsRead", mock.Anything, mock.Anything)
	})

	t.Run("fetch failure", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetUserNotifications", mock.Anything, userID).Return(nil, utils.NewUnauthorizedError("expired"))

		_, err := NewNotificationService(store, zap.NewNop()).Inbox(context.Background(), userID)
		assert.True(t, utils.IsAuthError(err))
	})
}

func TestAssistantRejectsBlankInput(t *testing.T) {
	assistant := new(mockAssistant)
	svc := NewAssistantService(assistant, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Analyze(ctx, "  ", ai.ContentAnswer)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))

	_, err = svc.Tags(ctx, "title", "\n")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, map[string]string{"description": "must not be blank"}, appErr.Details)

	_, err = svc.Improve(ctx, "", "")
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Details, 2)

	_, err = svc.Answer(ctx, "", "some details")
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))

	_, err = svc.Suggest(ctx, "")
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))

	assistant.AssertNotCalled(t, "AnalyzeContent", mock.Anything, mock.Anything, mock.Anything)
	assistant.AssertNotCalled(t, "GenerateTags", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssistantDelegates(t *testing.T) {
	assistant := new(mockAssistant)
	assistant.On("GenerateTags", mock.Anything, "JWT in React", "How do I store tokens?").
		Return(ai.Result[[]string]{Value: []string{"react", "jwt"}})
	assistant.On("GenerateAnswer", mock.Anything, "What is a goroutine?", "").
		Return(ai.Result[string]{Value: "", Outcome: ai.OutcomeUnavailable, Err: errors.New("503")})
	assistant.On("ImproveQuestion", mock.Anything, "help", "it broke").
		Return(ai.Result[*ai.ImprovedQuestion]{Value: &ai.ImprovedQuestion{ImprovedTitle: "Why does X fail?", ImprovedDescription: "Details"}})
	assistant.On("SuggestSearches", mock.Anything, "jwt").
		Return(ai.Result[[]string]{Value: []string{"jwt refresh token"}})

	svc := NewAssistantService(assistant, zap.NewNop())
	ctx := context.Background()

	tags, err := svc.Tags(ctx, "JWT in React", "How do I store tokens?")
	require.NoError(t, err)
	assert.Equal(t, []string{"react", "jwt"}, tags.Value)

	answer, err := svc.Answer(ctx, "What is a goroutine?", "")
	require.NoError(t, err)
	assert.Equal(t, ai.OutcomeUnavailable, answer.Outcome)
	assert.Equal(t, "", answer.Value)

	improved, err := svc.Improve(ctx, "help", "it broke")
	require.NoError(t, err)
	assert.Equal(t, "Why does X fail?", improved.Value.ImprovedTitle)

	suggestions, err := svc.Suggest(ctx, "jwt")
	require.NoError(t, err)
	assert.Equal(t, []string{"jwt refresh token"}, suggestions.Value)

	assistant.AssertExpectations(t)
}

func TestAssistantWithoutHelper(t *testing.T) {
	svc := NewAssistantService(nil, zap.NewNop())

	tags, err := svc.Tags(context.Background(), "title", "description")
	require.NoError(t, err)
	assert.Equal(t, ai.OutcomeUnavailable, tags.Outcome)
	assert.Equal(t, []string{}, tags.Value)
}

func TestSearch(t *testing.T) {
	opts := models.SearchOptions{Query: " react hooks ", Sort: models.SortVotes, Filter: models.FilterUnanswered}
	found := []*models.Question{{ID: uuid.New(), Title: "Understanding React Hooks lifecycle"}}

	t.Run("results with suggestions", func(t *testing.T) {
		store := &mockStore{}
		assistant := &mockAssistant{}
		store.On("SearchContent", mock.Anything, opts).Return(found, nil)
		assistant.On("SuggestSearches", mock.Anything, "react hooks").
			Return(ai.Result[[]string]{Value: []string{"useEffect cleanup"}, Outcome: ai.OutcomeOK})

		res, err := NewSearchService(store, assistant, zap.NewNop()).Search(context.Background(), opts)
		require.NoError(t, err)
		assert.Equal(t, found, res.Questions)
		assert.True(t, res.Suggestions.OK())
		assert.Equal(t, []string{"useEffect cleanup"}, res.Suggestions.Value)
		store.AssertExpectations(t)
		assistant.AssertExpectations(t)
	})

	t.Run("degraded suggestions do not fail the search", func(t *testing.T) {
		store := &mockStore{}
		assistant := &mockAssistant{}
		store.On("SearchContent", mock.Anything, opts).Return(found, nil)
		assistant.On("SuggestSearches", mock.Anything, "react hooks").
			Return(ai.Result[[]string]{Value: []string{}, Outcome: ai.OutcomeMalformed, Err: errors.New("not json")})

		res, err := NewSearchService(store, assistant, zap.NewNop()).Search(context.Background(), opts)
		require.NoError(t, err)
		assert.Len(t, res.Questions, 1)
		assert.Equal(t, ai.OutcomeMalformed, res.Suggestions.Outcome)
	})

	t.Run("blank query asks for no suggestions", func(t *testing.T) {
		store := &mockStore{}
		assistant := &mockAssistant{}
		blank := models.SearchOptions{Query: "  "}
		store.On("SearchContent", mock.Anything, blank).Return([]*models.Question{}, nil)

		res, err := NewSearchService(store, assistant, zap.NewNop()).Search(context.Background(), blank)
		require.NoError(t, err)
		assert.True(t, res.Suggestions.OK())
		assert.Empty(t, res.Suggestions.Value)
		assistant.AssertNotCalled(t, "SuggestSearches", mock.Anything, mock.Anything)
	})

	t.Run("no helper", func(t *testing.T) {
		store := &mockStore{}
		store.On("SearchContent", mock.Anything, opts).Return(found, nil)

		res, err := NewSearchService(store, nil, zap.NewNop()).Search(context.Background(), opts)
		require.NoError(t, err)
		assert.Equal(t, ai.OutcomeUnavailable, res.Suggestions.Outcome)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &mockStore{}
		store.On("SearchContent", mock.Anything, opts).Return(nil, utils.NewAppError(utils.ErrTransport, "down", nil))

		_, err := NewSearchService(store, nil, zap.NewNop()).Search(context.Background(), opts)
		assert.True(t, utils.IsErrorCode(err, utils.ErrTransport))
	})
}
