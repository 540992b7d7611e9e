package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxQuestionTags bounds the tag list a question may be authored with.
const MaxQuestionTags = 5

type Question struct {
	ID           uuid.UUID `json:"id" db:"id" validate:"required"`
	Title        string    `json:"title" db:"title" validate:"required"`
	Description  string    `json:"description" db:"description"`
	AuthorID     uuid.UUID `json:"author_id" db:"author_id" validate:"required"`
	Tags         []string  `json:"tags" db:"tags"`
	VotesCount   int       `json:"votes_count" db:"votes_count"`
	ViewsCount   int       `json:"views_count" db:"views_count"`
	Flagged      bool      `json:"flagged" db:"flagged"`
	Visible      bool      `json:"visible" db:"visible"`
	Moderated    bool      `json:"moderated" db:"moderated"`
	Status       string    `json:"status,omitempty" db:"status"`
	AIGenerated  bool      `json:"ai_generated" db:"ai_generated"`
	QualityScore *float64  `json:"quality_score,omitempty" db:"quality_score"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" validate:"required"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" db:"updated_at"`

	// Projections embedded by the query, not columns of the questions table
	Author      *AuthorSummary `json:"profiles,omitempty" db:"-"`
	AnswerCount int            `json:"-" db:"-"`
}

// QuestionDetail is a question together with all of its answers.
type QuestionDetail struct {
	Question
	Answers []*Answer `json:"answers"`
}

// AcceptedAnswer returns the first accepted answer, or nil.
func (d *QuestionDetail) AcceptedAnswer() *Answer {
	for _, a := range d.Answers {
		if a.IsAccepted {
			return a
		}
	}
	return nil
}

// NewQuestion is the payload for authoring a question.
type NewQuestion struct {
	Title        string    `json:"title" validate:"required,max=300"`
	Description  string    `json:"description" validate:"required"`
	AuthorID     uuid.UUID `json:"author_id" validate:"required"`
	Tags         []string  `json:"tags" validate:"max=5,unique,dive,required,max=35"`
	AIGenerated  bool      `json:"ai_generated"`
	QualityScore *float64  `json:"quality_score,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// ModerationAction is what an administrator decides about flagged content.
type ModerationAction string

const (
	ModerationApprove ModerationAction = "approve"
	ModerationReject  ModerationAction = "reject"
)

// SearchSort orders keyword search results.
type SearchSort string

const (
	SortRelevance SearchSort = "relevance" // same order as SortNewest
	SortNewest    SearchSort = "newest"
	SortVotes     SearchSort = "votes"
	SortAnswers   SearchSort = "answers"
)

// SearchFilter narrows keyword search results.
type SearchFilter string

const (
	FilterAll        SearchFilter = "all"
	FilterUnanswered SearchFilter = "unanswered"
	FilterAccepted   SearchFilter = "accepted"
)

// SearchOptions is a keyword search over title, description and tags.
// Empty Sort and Filter mean newest and all.
type SearchOptions struct {
	Query  string       `json:"query"`
	Sort   SearchSort   `json:"sort,omitempty" validate:"omitempty,oneof=relevance newest votes answers"`
	Filter SearchFilter `json:"filter,omitempty" validate:"omitempty,oneof=all unanswered accepted"`
}
