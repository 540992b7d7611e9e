// internal/database/question_repository.go
package database

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	"stackit/internal/models"
	"stackit/internal/utils"
)

const (
	selectQuestionInsert = `*, profiles:author_id(username, display_name)`
	selectQuestionList   = `*, profiles:author_id(username, display_name, avatar_url), answers(count)`
	selectQuestionSearch = `*, profiles:author_id(username, display_name, avatar_url)`
	selectQuestionDetail = `*,
		profiles:author_id(username, display_name, avatar_url, reputation),
		answers(*, profiles:author_id(username, display_name, avatar_url, reputation))`
)

// questionListRow carries the embedded answers(count) aggregate next to a question.
type questionListRow struct {
	models.Question
	Answers []struct {
		Count int `json:"count"`
	} `json:"answers"`
}

func (c *RESTClient) InsertQuestion(ctx context.Context, question models.NewQuestion) (*models.Question, error) {
	question.Title = strings.TrimSpace(question.Title)
	question.Tags = normalizeTags(question.Tags)
	if err := c.validate.Validate(question); err != nil {
		return nil, err
	}

	var rows []*models.Question
	_, err := c.do(ctx, "InsertQuestion", request{
		method: http.MethodPost,
		query:  from(TableQuestions).Select(selectQuestionInsert),
		body:   []models.NewQuestion{question},
		prefer: []string{preferRepresentation},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableQuestions, rows); err != nil {
		return nil, err
	}
	return firstRow("InsertQuestion", rows)
}

// GetQuestions returns rows [offset, offset+limit-1] of the questions ordered newest first.
func (c *RESTClient) GetQuestions(ctx context.Context, limit, offset int) ([]*models.Question, error) {
	if err := checkPage(limit, offset); err != nil {
		return nil, err
	}

	var rows []*questionListRow
	_, err := c.do(ctx, "GetQuestions", request{
		method: http.MethodGet,
		query: from(TableQuestions).
			Select(selectQuestionList).
			Order("created_at", false).
			Range(offset, offset+limit-1),
	}, &rows)
	if err != nil {
		return nil, err
	}
	return c.listedQuestions(rows)
}

// listedQuestions validates list rows and moves the embedded answer count onto each question.
func (c *RESTClient) listedQuestions(rows []*questionListRow) ([]*models.Question, error) {
	questions := make([]*models.Question, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			return nil, utils.NewAppError(utils.ErrDecode, "null questions row", nil)
		}
		if err := c.validate.ValidateRow(TableQuestions, &row.Question); err != nil {
			return nil, err
		}
		q := row.Question
		if len(row.Answers) > 0 {
			q.AnswerCount = row.Answers[0].Count
		}
		questions = append(questions, &q)
	}
	return questions, nil
}

// GetQuestionByID returns the question with its answers, oldest answer first.
func (c *RESTClient) GetQuestionByID(ctx context.Context, id uuid.UUID) (*models.QuestionDetail, error) {
	var detail models.QuestionDetail
	_, err := c.do(ctx, "GetQuestionByID", request{
		method: http.MethodGet,
		query: from(TableQuestions).
			Select(selectQuestionDetail).
			Eq("id", id).
			OrderEmbedded(TableAnswers, "created_at", true),
		single: true,
	}, &detail)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewNotFoundError("question", id.String())
		}
		return nil, err
	}

	if err := c.validate.ValidateRow(TableQuestions, &detail.Question); err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableAnswers, detail.Answers); err != nil {
		return nil, err
	}
	if detail.Answers == nil {
		detail.Answers = []*models.Answer{}
	}
	detail.AnswerCount = len(detail.Answers)
	return &detail, nil
}

// SearchQuestions matches title text and any of tags. Blank inputs apply no filter.
func (c *RESTClient) SearchQuestions(ctx context.Context, text string, tags []string) ([]*models.Question, error) {
	q := from(TableQuestions).Select(selectQuestionSearch)
	if text = strings.TrimSpace(text); text != "" {
		q.TextSearch("title", text)
	}
	if tags = cleanSearchTags(tags); len(tags) > 0 {
		q.Overlaps("tags", tags)
	}
	q.Order("created_at", false).Limit(SearchLimit)

	var rows []*models.Question
	if _, err := c.do(ctx, "SearchQuestions", request{method: http.MethodGet, query: q}, &rows); err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableQuestions, rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

func (c *RESTClient) GetQuestionsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Question, error) {
	var rows []*models.Question
	_, err := c.do(ctx, "GetQuestionsByAuthor", request{
		method: http.MethodGet,
		query:  from(TableQuestions).Select("*").Eq("author_id", authorID).Order("created_at", false),
	}, &rows)
	if err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableQuestions, rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

// SearchContent matches the keyword against title and description (substring, any case)
// and against tags (exact element). The datastore cannot order by an embedded count, so
// SortAnswers ranks the SearchLimit newest matches here and keeps the top ContentSearchLimit.
func (c *RESTClient) SearchContent(ctx context.Context, opts models.SearchOptions) ([]*models.Question, error) {
	if err := c.validate.Validate(opts); err != nil {
		return nil, err
	}

	q := from(TableQuestions)
	switch opts.Filter {
	case models.FilterUnanswered:
		q.Select(selectQuestionSearch + `, answers(id)`).IsNull(TableAnswers)
	case models.FilterAccepted:
		q.Select(selectQuestionList+`, accepted:answers!inner(id)`).Eq("accepted.is_accepted", true)
	default:
		q.Select(selectQuestionList)
	}
	if text := strings.TrimSpace(opts.Query); text != "" {
		q.Or(ilike("title", text), ilike("description", text), contains("tags", []string{text}))
	}

	limit := ContentSearchLimit
	switch opts.Sort {
	case models.SortVotes:
		q.Order("votes_count", false).Order("created_at", false)
	case models.SortAnswers:
		q.Order("created_at", false)
		limit = SearchLimit
	default:
		q.Order("created_at", false)
	}
	q.Limit(limit)

	var rows []*questionListRow
	if _, err := c.do(ctx, "SearchContent", request{method: http.MethodGet, query: q}, &rows); err != nil {
		return nil, err
	}
	questions, err := c.listedQuestions(rows)
	if err != nil {
		return nil, err
	}
	if opts.Sort == models.SortAnswers {
		sort.SliceStable(questions, func(i, j int) bool {
			return questions[i].AnswerCount > questions[j].AnswerCount
		})
		if len(questions) > ContentSearchLimit {
			questions = questions[:ContentSearchLimit]
		}
	}
	return questions, nil
}

// questionTags is the tags projection of a question. A null list means no tags.
type questionTags struct {
	Tags []string `json:"tags" validate:"dive,required"`
}

// ListQuestionTags returns the tag list of every question.
func (c *RESTClient) ListQuestionTags(ctx context.Context) ([][]string, error) {
	var rows []*questionTags
	_, err := c.do(ctx, "ListQuestionTags", request{
		method: http.MethodGet,
		query:  from(TableQuestions).Select("tags"),
	}, &rows)
	if err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableQuestions, rows); err != nil {
		return nil, err
	}

	lists := make([][]string, 0, len(rows))
	for _, row := range rows {
		lists = append(lists, row.Tags)
	}
	return lists, nil
}

func nonNil[T any](rows []*T) []*T {
	if rows == nil {
		return []*T{}
	}
	return rows
}
