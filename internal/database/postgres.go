// internal/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"stackit/internal/logger"
	"stackit/internal/models"
	"stackit/internal/utils"
	"stackit/internal/validation"
)

var _ ContentStore = (*PostgresDB)(nil)

// PostgresDB is the Content Client for a direct PostgreSQL connection.
type PostgresDB struct {
	DB       *sqlx.DB
	logger   *zap.Logger
	metrics  *utils.MetricsCollector
	validate *validation.Validator
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string, logger *zap.Logger, metrics *utils.MetricsCollector) (*PostgresDB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrTransport, "failed to connect to PostgreSQL", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	p := NewPostgresDBFromConn(db, logger, metrics)
	p.logger.Info("connected to PostgreSQL")
	return p, nil
}

// NewPostgresDBFromConn wraps an open connection.
func NewPostgresDBFromConn(db *sqlx.DB, logger *zap.Logger, metrics *utils.MetricsCollector) *PostgresDB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresDB{
		DB:       db,
		logger:   logger.Named("postgres"),
		metrics:  metrics,
		validate: validation.New(),
	}
}

// Close closes the database connection
func (p *PostgresDB) Close(ctx context.Context) error {
	p.logger.Info("closing PostgreSQL connection")
	return p.DB.Close()
}

// observe records metrics and logs the outcome of one operation.
func (p *PostgresDB) observe(op string, start time.Time, err error) {
	p.metrics.Observe(op, start, err)
	if err != nil && !utils.IsNotFound(err) {
		p.logger.Warn("database operation failed", logger.Operation(op), zap.Error(err))
		return
	}
	p.logger.Debug("database operation", logger.Operation(op), zap.Duration("duration", time.Since(start)))
}

// dbError converts a driver error to an AppError.
func dbError(message string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return utils.NewAppError(utils.ErrTransport, message, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return utils.NewAppError(utils.ErrDuplicate, fmt.Sprintf("%s: %s already exists", message, pqErr.Constraint), err)
		case "foreign_key_violation", "check_violation", "not_null_violation", "invalid_text_representation":
			return utils.NewAppError(utils.ErrInvalidInput, message, err)
		case "insufficient_privilege":
			return utils.NewAppError(utils.ErrForbidden, message, err)
		}
	}
	return utils.NewAppError(utils.ErrDatabase, message, err)
}

// InitializeTables creates all necessary tables if they don't exist
func (p *PostgresDB) InitializeTables(ctx context.Context) error {
	statements := []struct {
		name string
		sql  string
	}{
		{"profiles", `
			CREATE TABLE IF NOT EXISTS profiles (
				id UUID PRIMARY KEY,
				username VARCHAR(30) UNIQUE NOT NULL,
				display_name TEXT NOT NULL DEFAULT '',
				bio TEXT NOT NULL DEFAULT '',
				avatar_url TEXT NOT NULL DEFAULT '',
				website TEXT NOT NULL DEFAULT '',
				location TEXT NOT NULL DEFAULT '',
				reputation INTEGER NOT NULL DEFAULT 0,
				questions_count INTEGER NOT NULL DEFAULT 0,
				answers_count INTEGER NOT NULL DEFAULT 0,
				badges TEXT[] NOT NULL DEFAULT '{}',
				last_seen TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			)`},
		{"questions", `
			CREATE TABLE IF NOT EXISTS questions (
				id UUID PRIMARY KEY,
				title VARCHAR(300) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				author_id UUID NOT NULL REFERENCES profiles(id),
				tags TEXT[] NOT NULL DEFAULT '{}',
				votes_count INTEGER NOT NULL DEFAULT 0,
				views_count INTEGER NOT NULL DEFAULT 0,
				flagged BOOLEAN NOT NULL DEFAULT FALSE,
				visible BOOLEAN NOT NULL DEFAULT TRUE,
				moderated BOOLEAN NOT NULL DEFAULT FALSE,
				status VARCHAR(20) NOT NULL DEFAULT 'active',
				ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
				quality_score REAL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			)`},
		{"questions created_at index", `CREATE INDEX IF NOT EXISTS idx_questions_created_at ON questions (created_at DESC)`},
		{"questions tags index", `CREATE INDEX IF NOT EXISTS idx_questions_tags ON questions USING GIN (tags)`},
		{"answers", `
			CREATE TABLE IF NOT EXISTS answers (
				id UUID PRIMARY KEY,
				question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
				author_id UUID NOT NULL REFERENCES profiles(id),
				content TEXT NOT NULL,
				votes_count INTEGER NOT NULL DEFAULT 0,
				is_accepted BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			)`},
		{"votes", `
			CREATE TABLE IF NOT EXISTS votes (
				user_id UUID NOT NULL REFERENCES profiles(id),
				target_id UUID NOT NULL,
				target_type VARCHAR(20) NOT NULL CHECK (target_type IN ('question', 'answer')),
				vote_type VARCHAR(10) NOT NULL CHECK (vote_type IN ('up', 'down')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (user_id, target_id, target_type)
			)`},
		{"tags", `
			CREATE TABLE IF NOT EXISTS tags (
				name VARCHAR(35) PRIMARY KEY,
				usage_count INTEGER NOT NULL DEFAULT 0,
				description TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)`},
		{"notifications", `
			CREATE TABLE IF NOT EXISTS notifications (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES profiles(id),
				sender_id UUID REFERENCES profiles(id),
				type VARCHAR(20) NOT NULL CHECK (type IN ('answer', 'vote', 'follow', 'accepted', 'other')),
				question_id UUID REFERENCES questions(id) ON DELETE CASCADE,
				answer_id UUID REFERENCES answers(id) ON DELETE CASCADE,
				read BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			)`},
	}

	for _, stmt := range statements {
		if _, err := p.DB.ExecContext(ctx, stmt.sql); err != nil {
			return dbError("failed to create "+stmt.name, err)
		}
	}
	return nil
}

// --- Scan rows ---

const questionColumns = `q.id, q.title, q.description, q.author_id, q.tags, q.votes_count, q.views_count,
	q.flagged, q.visible, q.moderated, q.status, q.ai_generated, q.quality_score, q.created_at, q.updated_at`

const profileColumns = `id, username, display_name, bio, avatar_url, website, location, reputation,
	questions_count, answers_count, badges, last_seen, created_at, updated_at`

// authorScan holds the optional joined profile columns of authored content.
type authorScan struct {
	AuthorUsername    sql.NullString `db:"author_username"`
	AuthorDisplayName sql.NullString `db:"author_display_name"`
	AuthorAvatarURL   sql.NullString `db:"author_avatar_url"`
	AuthorReputation  sql.NullInt64  `db:"author_reputation"`
}

func (a authorScan) summary() *models.AuthorSummary {
	if !a.AuthorUsername.Valid {
		return nil
	}
	s := &models.AuthorSummary{
		Username:    a.AuthorUsername.String,
		DisplayName: a.AuthorDisplayName.String,
		AvatarURL:   a.AuthorAvatarURL.String,
	}
	if a.AuthorReputation.Valid {
		rep := int(a.AuthorReputation.Int64)
		s.Reputation = &rep
	}
	return s
}

type questionScan struct {
	ID           uuid.UUID       `db:"id"`
	Title        string          `db:"title"`
	Description  string          `db:"description"`
	AuthorID     uuid.UUID       `db:"author_id"`
	Tags         pq.StringArray  `db:"tags"`
	VotesCount   int             `db:"votes_count"`
	ViewsCount   int             `db:"views_count"`
	Flagged      bool            `db:"flagged"`
	Visible      bool            `db:"visible"`
	Moderated    bool            `db:"moderated"`
	Status       string          `db:"status"`
	AIGenerated  bool            `db:"ai_generated"`
	QualityScore sql.NullFloat64 `db:"quality_score"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
	AnswerCount  int             `db:"answer_count"`
	authorScan
}

func (s *questionScan) toModel() *models.Question {
	q := &models.Question{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		AuthorID:    s.AuthorID,
		Tags:        []string(s.Tags),
		VotesCount:  s.VotesCount,
		ViewsCount:  s.ViewsCount,
		Flagged:     s.Flagged,
		Visible:     s.Visible,
		Moderated:   s.Moderated,
		Status:      s.Status,
		AIGenerated: s.AIGenerated,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		Author:      s.summary(),
		AnswerCount: s.AnswerCount,
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	if s.QualityScore.Valid {
		score := s.QualityScore.Float64
		q.QualityScore = &score
	}
	return q
}

type answerScan struct {
	ID            uuid.UUID      `db:"id"`
	QuestionID    uuid.UUID      `db:"question_id"`
	AuthorID      uuid.UUID      `db:"author_id"`
	Content       string         `db:"content"`
	VotesCount    int            `db:"votes_count"`
	IsAccepted    bool           `db:"is_accepted"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	QuestionTitle sql.NullString `db:"question_title"`
	authorScan
}

func (s *answerScan) toModel() *models.Answer {
	a := &models.Answer{
		ID:         s.ID,
		QuestionID: s.QuestionID,
		AuthorID:   s.AuthorID,
		Content:    s.Content,
		VotesCount: s.VotesCount,
		IsAccepted: s.IsAccepted,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		Author:     s.summary(),
	}
	if s.QuestionTitle.Valid {
		a.Question = &models.QuestionRef{Title: s.QuestionTitle.String}
	}
	return a
}

type profileScan struct {
	ID             uuid.UUID      `db:"id"`
	Username       string         `db:"username"`
	DisplayName    string         `db:"display_name"`
	Bio            string         `db:"bio"`
	AvatarURL      string         `db:"avatar_url"`
	Website        string         `db:"website"`
	Location       string         `db:"location"`
	Reputation     int            `db:"reputation"`
	QuestionsCount int            `db:"questions_count"`
	AnswersCount   int            `db:"answers_count"`
	Badges         pq.StringArray `db:"badges"`
	LastSeen       sql.NullTime   `db:"last_seen"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (s *profileScan) toModel() *models.Profile {
	p := &models.Profile{
		ID:             s.ID,
		Username:       s.Username,
		DisplayName:    s.DisplayName,
		Bio:            s.Bio,
		AvatarURL:      s.AvatarURL,
		Website:        s.Website,
		Location:       s.Location,
		Reputation:     s.Reputation,
		QuestionsCount: s.QuestionsCount,
		AnswersCount:   s.AnswersCount,
		Badges:         []string(s.Badges),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if p.Badges == nil {
		p.Badges = []string{}
	}
	if s.LastSeen.Valid {
		seen := s.LastSeen.Time
		p.LastSeen = &seen
	}
	return p
}

type notificationScan struct {
	ID            uuid.UUID      `db:"id"`
	UserID        uuid.UUID      `db:"user_id"`
	SenderID      uuid.NullUUID  `db:"sender_id"`
	Type          string         `db:"type"`
	QuestionID    uuid.NullUUID  `db:"question_id"`
	AnswerID      uuid.NullUUID  `db:"answer_id"`
	Read          bool           `db:"read"`
	CreatedAt     time.Time      `db:"created_at"`
	QuestionTitle sql.NullString `db:"question_title"`
	AnswerContent sql.NullString `db:"answer_content"`
	authorScan
}

func (s *notificationScan) toModel() *models.Notification {
	n := &models.Notification{
		ID:        s.ID,
		UserID:    s.UserID,
		Type:      models.NotificationType(s.Type),
		Read:      s.Read,
		CreatedAt: s.CreatedAt,
		Sender:    s.summary(),
	}
	if s.SenderID.Valid {
		id := s.SenderID.UUID
		n.SenderID = &id
	}
	if s.QuestionID.Valid {
		id := s.QuestionID.UUID
		n.QuestionID = &id
	}
	if s.AnswerID.Valid {
		id := s.AnswerID.UUID
		n.AnswerID = &id
	}
	if s.QuestionTitle.Valid {
		n.Question = &models.QuestionRef{Title: s.QuestionTitle.String}
	}
	if s.AnswerContent.Valid {
		n.Answer = &models.AnswerRef{Content: s.AnswerContent.String}
	}
	return n
}

func questionsToModels(rows []questionScan) []*models.Question {
	out := make([]*models.Question, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out
}

// --- Question Methods ---

// InsertQuestion stores a new question and returns it with its author's name.
func (p *PostgresDB) InsertQuestion(ctx context.Context, question models.NewQuestion) (q *models.Question, err error) {
	defer func(start time.Time) { p.observe("InsertQuestion", start, err) }(time.Now())

	question.Title = strings.TrimSpace(question.Title)
	question.Tags = normalizeTags(question.Tags)
	if err := p.validate.Validate(question); err != nil {
		return nil, err
	}

	query := `
		WITH inserted AS (
			INSERT INTO questions (id, title, description, author_id, tags, ai_generated, quality_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT ` + questionColumns + `,
			p.username AS author_username, p.display_name AS author_display_name
		FROM inserted q
		LEFT JOIN profiles p ON p.id = q.author_id
	`
	var row questionScan
	err = p.DB.GetContext(ctx, &row, query,
		uuid.New(),
		question.Title,
		question.Description,
		question.AuthorID,
		pq.Array(question.Tags),
		question.AIGenerated,
		question.QualityScore,
	)
	if err != nil {
		return nil, dbError("failed to insert question", err)
	}
	return row.toModel(), nil
}

// GetQuestions returns rows [offset, offset+limit-1] of the questions ordered newest first.
func (p *PostgresDB) GetQuestions(ctx context.Context, limit, offset int) (qs []*models.Question, err error) {
	defer func(start time.Time) { p.observe("GetQuestions", start, err) }(time.Now())

	if err := checkPage(limit, offset); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + questionColumns + `,
			p.username AS author_username, p.display_name AS author_display_name, p.avatar_url AS author_avatar_url,
			(SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id) AS answer_count
		FROM questions q
		LEFT JOIN profiles p ON p.id = q.author_id
		ORDER BY q.created_at DESC
		LIMIT $1 OFFSET $2
	`
	var rows []questionScan
	if err := p.DB.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, dbError("failed to query questions", err)
	}
	return questionsToModels(rows), nil
}

// GetQuestionByID returns the question with its answers, oldest answer first.
func (p *PostgresDB) GetQuestionByID(ctx context.Context, id uuid.UUID) (detail *models.QuestionDetail, err error) {
	defer func(start time.Time) { p.observe("GetQuestionByID", start, err) }(time.Now())

	questionQuery := `
		SELECT ` + questionColumns + `,
			p.username AS author_username, p.display_name AS author_display_name,
			p.avatar_url AS author_avatar_url, p.reputation AS author_reputation
		FROM questions q
		LEFT JOIN profiles p ON p.id = q.author_id
		WHERE q.id = $1
	`
	var row questionScan
	if err := p.DB.GetContext(ctx, &row, questionQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("question", id.String())
		}
		return nil, dbError("failed to query question by id", err)
	}

	answersQuery := `
		SELECT a.id, a.question_id, a.author_id, a.content, a.votes_count, a.is_accepted, a.created_at, a.updated_at,
			p.username AS author_username, p.display_name AS author_display_name,
			p.avatar_url AS author_avatar_url, p.reputation AS author_reputation
		FROM answers a
		LEFT JOIN profiles p ON p.id = a.author_id
		WHERE a.question_id = $1
		ORDER BY a.created_at ASC
	`
	var answerRows []answerScan
	if err := p.DB.SelectContext(ctx, &answerRows, answersQuery, id); err != nil {
		return nil, dbError("failed to query question answers", err)
	}

	detail = &models.QuestionDetail{
		Question: *row.toModel(),
		Answers:  make([]*models.Answer, 0, len(answerRows)),
	}
	for i := range answerRows {
		detail.Answers = append(detail.Answers, answerRows[i].toModel())
	}
	detail.AnswerCount = len(detail.Answers)
	return detail, nil
}

// SearchQuestions matches title text and any of tags. Blank inputs apply no filter.
func (p *PostgresDB) SearchQuestions(ctx context.Context, text string, tags []string) (qs []*models.Question, err error) {
	defer func(start time.Time) { p.observe("SearchQuestions", start, err) }(time.Now())

	var where []string
	var args []any
	if text = strings.TrimSpace(text); text != "" {
		args = append(args, text)
		where = append(where, fmt.Sprintf("to_tsvector('simple', q.title) @@ plainto_tsquery('simple', $%d)", len(args)))
	}
	if tags = cleanSearchTags(tags); len(tags) > 0 {
		args = append(args, pq.Array(tags))
		where = append(where, fmt.Sprintf("q.tags && $%d", len(args)))
	}
	args = append(args, SearchLimit)

	query := `
		SELECT ` + questionColumns + `,
			p.username AS author_username, p.display_name AS author_display_name, p.avatar_url AS author_avatar_url
		FROM questions q
		LEFT JOIN profiles p ON p.id = q.author_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf("\n\t\tORDER BY q.created_at DESC\n\t\tLIMIT $%d", len(args))

	var rows []questionScan
	if err := p.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbError("failed to search questions", err)
	}
	return questionsToModels(rows), nil
}

// likeEscaper escapes LIKE wildcards so the keyword matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchContent matches the keyword against title and description (substring, any case)
// and against tags (exact element).
func (p *PostgresDB) SearchContent(ctx context.Context, opts models.SearchOptions) (qs []*models.Question, err error) {
	defer func(start time.Time) { p.observe("SearchContent", start, err) }(time.Now())

	if err := p.validate.Validate(opts); err != nil {
		return nil, err
	}

	var where []string
	var args []any
	if text := strings.TrimSpace(opts.Query); text != "" {
		args = append(args, "%"+likeEscaper.Replace(text)+"%", text)
		where = append(where, fmt.Sprintf("(q.title ILIKE $%d OR q.description ILIKE $%d OR q.tags @> ARRAY[$%d]::text[])",
			len(args)-1, len(args)-1, len(args)))
	}
	switch opts.Filter {
	case models.FilterUnanswered:
		where = append(where, "NOT EXISTS (SELECT 1 FROM answers a WHERE a.question_id = q.id)")
	case models.FilterAccepted:
		where = append(where, "EXISTS (SELECT 1 FROM answers a WHERE a.question_id = q.id AND a.is_accepted)")
	}

	order := "q.created_at DESC"
	switch opts.Sort {
	case models.SortVotes:
		order = "q.votes_count DESC, q.created_at DESC"
	case models.SortAnswers:
		order = "answer_count DESC, q.created_at DESC"
	}
	args = append(args, ContentSearchLimit)

	query := `
		SELECT ` + questionColumns + `,
			p.username AS author_username, p.display_name AS author_display_name, p.avatar_url AS author_avatar_url,
			(SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id) AS answer_count
		FROM questions q
		LEFT JOIN profiles p ON p.id = q.author_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf("\n\t\tORDER BY %s\n\t\tLIMIT $%d", order, len(args))

	var rows []questionScan
	if err := p.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbError("failed to search content", err)
	}
	return questionsToModels(rows), nil
}

func (p *PostgresDB) GetQuestionsByAuthor(ctx context.Context, authorID uuid.UUID) (qs []*models.Question, err error) {
	defer func(start time.Time) { p.observe("GetQuestionsByAuthor", start, err) }(time.Now())

	query := `SELECT ` + questionColumns + ` FROM questions q WHERE q.author_id = $1 ORDER BY q.created_at DESC`
	var rows []questionScan
	if err := p.DB.SelectContext(ctx, &rows, query, authorID); err != nil {
		return nil, dbError("failed to query questions by author", err)
	}
	return questionsToModels(rows), nil
}

func (p *PostgresDB) ListQuestionTags(ctx context.Context) (lists [][]string, err error) {
	defer func(start time.Time) { p.observe("ListQuestionTags", start, err) }(time.Now())

	var rows []pq.StringArray
	if err := p.DB.SelectContext(ctx, &rows, `SELECT tags FROM questions`); err != nil {
		return nil, dbError("failed to query question tags", err)
	}
	lists = make([][]string, 0, len(rows))
	for _, tags := range rows {
		lists = append(lists, []string(tags))
	}
	return lists, nil
}

// --- Answer Methods ---

func (p *PostgresDB) InsertAnswer(ctx context.Context, answer models.NewAnswer) (a *models.Answer, err error) {
	defer func(start time.Time) { p.observe("InsertAnswer", start, err) }(time.Now())

	if err := p.validate.Validate(answer); err != nil {
		return nil, err
	}

	query := `
		WITH inserted AS (
			INSERT INTO answers (id, question_id, author_id, content)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT a.id, a.question_id, a.author_id, a.content, a.votes_count, a.is_accepted, a.created_at, a.updated_at,
			p.username AS author_username, p.display_name AS author_display_name, p.avatar_url AS author_avatar_url
		FROM inserted a
		LEFT JOIN profiles p ON p.id = a.author_id
	`
	var row answerScan
	if err := p.DB.GetContext(ctx, &row, query, uuid.New(), answer.QuestionID, answer.AuthorID, answer.Content); err != nil {
		return nil, dbError("failed to insert answer", err)
	}
	return row.toModel(), nil
}

func (p *PostgresDB) GetAnswersByAuthor(ctx context.Context, authorID uuid.UUID) (as []*models.Answer, err error) {
	defer func(start time.Time) { p.observe("GetAnswersByAuthor", start, err) }(time.Now())

	query := `
		SELECT a.id, a.question_id, a.author_id, a.content, a.votes_count, a.is_accepted, a.created_at, a.updated_at,
			q.title AS question_title
		FROM answers a
		LEFT JOIN questions q ON q.id = a.question_id
		WHERE a.author_id = $1
		ORDER BY a.created_at DESC
	`
	var rows []answerScan
	if err := p.DB.SelectContext(ctx, &rows, query, authorID); err != nil {
		return nil, dbError("failed to query answers by author", err)
	}
	as = make([]*models.Answer, 0, len(rows))
	for i := range rows {
		as = append(as, rows[i].toModel())
	}
	return as, nil
}

// --- Vote Methods ---

// VoteOnContent inserts the vote or replaces the direction of the user's existing vote on the target.
// Target counters are maintained by the database, not here.
func (p *PostgresDB) VoteOnContent(ctx context.Context, vote models.Vote) (v *models.Vote, err error) {
	defer func(start time.Time) { p.observe("VoteOnContent", start, err) }(time.Now())

	if err := p.validate.Validate(vote); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO votes (user_id, target_id, target_type, vote_type, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, target_id, target_type)
		DO UPDATE SET vote_type = EXCLUDED.vote_type
		RETURNING user_id, target_id, target_type, vote_type, created_at
	`
	var row models.Vote
	err = p.DB.GetContext(ctx, &row, query, vote.UserID, vote.TargetID, string(vote.TargetType), string(vote.Direction))
	if err != nil {
		return nil, dbError("failed to record vote", err)
	}
	return &row, nil
}

// --- Profile Methods ---

func (p *PostgresDB) GetUserProfile(ctx context.Context, userID uuid.UUID) (profile *models.Profile, err error) {
	defer func(start time.Time) { p.observe("GetUserProfile", start, err) }(time.Now())

	var row profileScan
	if err := p.DB.GetContext(ctx, &row, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("profile", userID.String())
		}
		return nil, dbError("failed to query profile", err)
	}
	return row.toModel(), nil
}

// UpdateUserProfile applies the non-nil fields of update to the profile.
func (p *PostgresDB) UpdateUserProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (profile *models.Profile, err error) {
	defer func(start time.Time) { p.observe("UpdateUserProfile", start, err) }(time.Now())

	if update.IsEmpty() {
		return nil, utils.NewInvalidInputError("profile update has no fields")
	}
	if err := p.validate.Validate(update); err != nil {
		return nil, err
	}

	var sets []string
	var args []any
	set := func(column string, value *string) {
		if value != nil {
			args = append(args, *value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	set("username", update.Username)
	set("display_name", update.DisplayName)
	set("bio", update.Bio)
	set("avatar_url", update.AvatarURL)
	set("website", update.Website)
	set("location", update.Location)
	sets = append(sets, "updated_at = NOW()")
	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE profiles SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), profileColumns)

	var row profileScan
	if err := p.DB.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("profile", userID.String())
		}
		return nil, dbError("failed to update profile", err)
	}
	return row.toModel(), nil
}

func (p *PostgresDB) GetTopProfiles(ctx context.Context, orderBy models.LeaderboardOrder, since *time.Time, limit int) (profiles []*models.Profile, err error) {
	defer func(start time.Time) { p.observe("GetTopProfiles", start, err) }(time.Now())

	if err := checkLeaderboardOrder(orderBy); err != nil {
		return nil, err
	}
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	args := []any{limit}
	where := ""
	if since != nil {
		args = append(args, *since)
		where = "WHERE last_seen >= $2 "
	}
	// orderBy is one of the whitelisted column names checked above
	query := fmt.Sprintf(`SELECT %s FROM profiles %sORDER BY %s DESC LIMIT $1`, profileColumns, where, orderBy)

	var rows []profileScan
	if err := p.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbError("failed to query top profiles", err)
	}
	profiles = make([]*models.Profile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, rows[i].toModel())
	}
	return profiles, nil
}

// --- Tag Methods ---

func (p *PostgresDB) GetTags(ctx context.Context) (tags []*models.Tag, err error) {
	defer func(start time.Time) { p.observe("GetTags", start, err) }(time.Now())

	tags = []*models.Tag{}
	if err := p.DB.SelectContext(ctx, &tags, `SELECT name, usage_count, description, created_at FROM tags ORDER BY usage_count DESC`); err != nil {
		return nil, dbError("failed to query tags", err)
	}
	return tags, nil
}

func (p *PostgresDB) GetTopTags(ctx context.Context, limit int) (tags []*models.Tag, err error) {
	defer func(start time.Time) { p.observe("GetTopTags", start, err) }(time.Now())

	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	tags = []*models.Tag{}
	query := `SELECT name, usage_count, description, created_at FROM tags ORDER BY usage_count DESC LIMIT $1`
	if err := p.DB.SelectContext(ctx, &tags, query, limit); err != nil {
		return nil, dbError("failed to query top tags", err)
	}
	return tags, nil
}

// --- Notification Methods ---

func (p *PostgresDB) GetUserNotifications(ctx context.Context, userID uuid.UUID) (ns []*models.Notification, err error) {
	defer func(start time.Time) { p.observe("GetUserNotifications", start, err) }(time.Now())

	query := `
		SELECT n.id, n.user_id, n.sender_id, n.type, n.question_id, n.answer_id, n.read, n.created_at,
			s.username AS author_username, s.display_name AS author_display_name, s.avatar_url AS author_avatar_url,
			q.title AS question_title, a.content AS answer_content
		FROM notifications n
		LEFT JOIN profiles s ON s.id = n.sender_id
		LEFT JOIN questions q ON q.id = n.question_id
		LEFT JOIN answers a ON a.id = n.answer_id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2
	`
	var rows []notificationScan
	if err := p.DB.SelectContext(ctx, &rows, query, userID, NotificationLimit); err != nil {
		return nil, dbError("failed to query notifications", err)
	}
	ns = make([]*models.Notification, 0, len(rows))
	for i := range rows {
		ns = append(ns, rows[i].toModel())
	}
	return ns, nil
}

func (p *PostgresDB) MarkNotificationsRead(ctx context.Context, userID uuid.UUID) (err error) {
	defer func(start time.Time) { p.observe("MarkNotificationsRead", start, err) }(time.Now())

	if _, err := p.DB.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID); err != nil {
		return dbError("failed to mark notifications read", err)
	}
	return nil
}

// --- Moderation Methods ---

func (p *PostgresDB) CountRows(ctx context.Context, table string) (n int, err error) {
	defer func(start time.Time) { p.observe("CountRows", start, err) }(time.Now())

	if err := checkCountable(table); err != nil {
		return 0, err
	}
	// table is one of the whitelisted names checked above
	if err := p.DB.GetContext(ctx, &n, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)); err != nil {
		return 0, dbError("failed to count "+table, err)
	}
	return n, nil
}

func (p *PostgresDB) GetFlaggedQuestions(ctx context.Context, limit int) ([]*models.Question, error) {
	return p.moderationQueue(ctx, "GetFlaggedQuestions", "WHERE q.flagged = TRUE", limit)
}

func (p *PostgresDB) GetRecentQuestions(ctx context.Context, limit int) ([]*models.Question, error) {
	return p.moderationQueue(ctx, "GetRecentQuestions", "", limit)
}

func (p *PostgresDB) moderationQueue(ctx context.Context, op, where string, limit int) (qs []*models.Question, err error) {
	defer func(start time.Time) { p.observe(op, start, err) }(time.Now())

	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	query := `
		SELECT ` + questionColumns + `, p.username AS author_username
		FROM questions q
		LEFT JOIN profiles p ON p.id = q.author_id
		` + where + `
		ORDER BY q.created_at DESC
		LIMIT $1
	`
	var rows []questionScan
	if err := p.DB.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, dbError("failed to query moderation queue", err)
	}
	return questionsToModels(rows), nil
}

// ModerateQuestion applies an administrator decision: approve clears the flag, reject hides the question.
func (p *PostgresDB) ModerateQuestion(ctx context.Context, id uuid.UUID, action models.ModerationAction) (q *models.Question, err error) {
	defer func(start time.Time) { p.observe("ModerateQuestion", start, err) }(time.Now())

	if err := checkModerationAction(action); err != nil {
		return nil, err
	}

	set := "flagged = FALSE"
	if action == models.ModerationReject {
		set = "visible = FALSE"
	}
	query := `UPDATE questions q SET ` + set + `, moderated = TRUE, updated_at = NOW() WHERE q.id = $1 RETURNING ` + questionColumns

	var row questionScan
	if err := p.DB.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("question", id.String())
		}
		return nil, dbError("failed to moderate question", err)
	}
	return row.toModel(), nil
}

// --- Analytics Methods ---

func (p *PostgresDB) GetQuestionActivity(ctx context.Context, since *time.Time) (rows []*models.QuestionActivity, err error) {
	defer func(start time.Time) { p.observe("GetQuestionActivity", start, err) }(time.Now())

	query := `SELECT created_at, status, views_count, votes_count FROM questions`
	var args []any
	if since != nil {
		query += ` WHERE created_at >= $1`
		args = append(args, *since)
	}
	query += ` ORDER BY created_at ASC`

	rows = []*models.QuestionActivity{}
	if err := p.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbError("failed to query question activity", err)
	}
	return rows, nil
}

func (p *PostgresDB) GetProfileActivity(ctx context.Context) (rows []*models.ProfileActivity, err error) {
	defer func(start time.Time) { p.observe("GetProfileActivity", start, err) }(time.Now())

	rows = []*models.ProfileActivity{}
	query := `SELECT created_at, reputation, questions_count, answers_count FROM profiles ORDER BY created_at ASC`
	if err := p.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, dbError("failed to query profile activity", err)
	}
	return rows, nil
}
