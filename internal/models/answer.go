package models

import (
	"time"

	"github.com/google/uuid"
)

type Answer struct {
	ID         uuid.UUID `json:"id" db:"id" validate:"required"`
	QuestionID uuid.UUID `json:"question_id" db:"question_id" validate:"required"`
	AuthorID   uuid.UUID `json:"author_id" db:"author_id" validate:"required"`
	Content    string    `json:"content" db:"content"`
	VotesCount int       `json:"votes_count" db:"votes_count"`
	IsAccepted bool      `json:"is_accepted" db:"is_accepted"`
	CreatedAt  time.Time `json:"created_at" db:"created_at" validate:"required"`
	UpdatedAt  time.Time `json:"updated_at,omitempty" db:"updated_at"`

	Author   *AuthorSummary `json:"profiles,omitempty" db:"-"`
	Question *QuestionRef   `json:"questions,omitempty" db:"-"` // Only set for profile listings
}

// NewAnswer is the payload for posting an answer.
type NewAnswer struct {
	QuestionID uuid.UUID `json:"question_id" validate:"required"`
	AuthorID   uuid.UUID `json:"author_id" validate:"required"`
	Content    string    `json:"content" validate:"required"`
}
