package models

import "time"

// AuthorSummary is the slice of a profile embedded next to authored content.
type AuthorSummary struct {
	Username    string `json:"username" db:"username"`
	DisplayName string `json:"display_name,omitempty" db:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty" db:"avatar_url"`
	Reputation  *int   `json:"reputation,omitempty" db:"reputation"`
}

// QuestionRef is the parent question title embedded in answers and notifications.
type QuestionRef struct {
	Title string `json:"title"`
}

// AnswerRef is the answer body embedded in notifications.
type AnswerRef struct {
	Content string `json:"content"`
}

// QuestionActivity is the projection of a question used for analytics.
type QuestionActivity struct {
	CreatedAt  time.Time `json:"created_at" db:"created_at" validate:"required"`
	Status     string    `json:"status,omitempty" db:"status"`
	ViewsCount int       `json:"views_count" db:"views_count"`
	VotesCount int       `json:"votes_count" db:"votes_count"`
}

// ProfileActivity is the projection of a profile used for analytics.
type ProfileActivity struct {
	CreatedAt      time.Time `json:"created_at" db:"created_at" validate:"required"`
	Reputation     int       `json:"reputation" db:"reputation"`
	QuestionsCount int       `json:"questions_count" db:"questions_count"`
	AnswersCount   int       `json:"answers_count" db:"answers_count"`
}
