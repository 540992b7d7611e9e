package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationAnswer   NotificationType = "answer"
	NotificationVote     NotificationType = "vote"
	NotificationFollow   NotificationType = "follow"
	NotificationAccepted NotificationType = "accepted"
	NotificationOther    NotificationType = "other"
)

type Notification struct {
	ID         uuid.UUID        `json:"id" db:"id" validate:"required"`
	UserID     uuid.UUID        `json:"user_id" db:"user_id" validate:"required"`
	SenderID   *uuid.UUID       `json:"sender_id,omitempty" db:"sender_id"`
	Type       NotificationType `json:"type" db:"type" validate:"required"`
	QuestionID *uuid.UUID       `json:"question_id,omitempty" db:"question_id"`
	AnswerID   *uuid.UUID       `json:"answer_id,omitempty" db:"answer_id"`
	Read       bool             `json:"read" db:"read"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at" validate:"required"`

	Sender   *AuthorSummary `json:"profiles,omitempty" db:"-"`
	Question *QuestionRef   `json:"questions,omitempty" db:"-"`
	Answer   *AnswerRef     `json:"answers,omitempty" db:"-"`
}
