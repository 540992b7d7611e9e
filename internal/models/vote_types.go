package models

import (
	"time"

	"github.com/google/uuid"
)

// VoteTargetType represents the type of content being voted on.
type VoteTargetType string

const (
	QuestionVote VoteTargetType = "question"
	AnswerVote   VoteTargetType = "answer"
)

// VoteDirection represents the direction of a vote.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Vote is unique per (UserID, TargetID, TargetType).
type Vote struct {
	UserID     uuid.UUID      `json:"user_id" db:"user_id" validate:"required"`
	TargetID   uuid.UUID      `json:"target_id" db:"target_id" validate:"required"`
	TargetType VoteTargetType `json:"target_type" db:"target_type" validate:"required,oneof=question answer"`
	Direction  VoteDirection  `json:"vote_type" db:"vote_type" validate:"required,oneof=up down"`
	CreatedAt  *time.Time     `json:"created_at,omitempty" db:"created_at"`
}
