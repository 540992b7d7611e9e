package models

import "time"

type Tag struct {
	Name        string     `json:"name" db:"name" validate:"required"`
	UsageCount  int        `json:"usage_count" db:"usage_count"`
	Description string     `json:"description,omitempty" db:"description"`
	CreatedAt   *time.Time `json:"created_at,omitempty" db:"created_at"`
}

// TagCount is a tag usage recomputed client-side from question tag lists.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
