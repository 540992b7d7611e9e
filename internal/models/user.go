package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public record of a user. Its ID is the auth identity.
type Profile struct {
	ID             uuid.UUID  `json:"id" db:"id" validate:"required"`
	Username       string     `json:"username" db:"username"`
	DisplayName    string     `json:"display_name" db:"display_name"`
	Bio            string     `json:"bio" db:"bio"`
	AvatarURL      string     `json:"avatar_url" db:"avatar_url"`
	Website        string     `json:"website" db:"website"`
	Location       string     `json:"location" db:"location"`
	Reputation     int        `json:"reputation" db:"reputation"`
	QuestionsCount int        `json:"questions_count" db:"questions_count"`
	AnswersCount   int        `json:"answers_count" db:"answers_count"`
	Badges         []string   `json:"badges" db:"badges"`
	LastSeen       *time.Time `json:"last_seen,omitempty" db:"last_seen"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at,omitempty" db:"updated_at"`
}

// ProfileUpdate holds the self-editable profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	Username    *string `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=60"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Website     *string `json:"website,omitempty" validate:"omitempty,url"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=100"`
}

// IsEmpty reports whether no field is set.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.DisplayName == nil && u.Bio == nil &&
		u.AvatarURL == nil && u.Website == nil && u.Location == nil
}

// LeaderboardOrder is the column profiles are ranked by.
type LeaderboardOrder string

const (
	ByReputation     LeaderboardOrder = "reputation"
	ByQuestionsCount LeaderboardOrder = "questions_count"
)
