package models

import (
	"time"

	"gorm.io/datatypes"
)

// HistoryLimit caps how many of an author's quizzes are kept in their history,
// most recent first.
const HistoryLimit = 5

// QuizHistory is the per-author list of recently created quizzes, keyed by the
// identity provider's opaque user id. Participants never appear here; identity
// is only used to scope the author's personal history.
type QuizHistory struct {
	UserID      string         `json:"userId" gorm:"primaryKey;size:64"`
	Quizzes     datatypes.JSON `json:"quizzes" gorm:"type:jsonb"` // []Quiz, newest first, capped at HistoryLimit
	CreatedAt   time.Time      `json:"createdAt"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

func (QuizHistory) TableName() string {
	return "user_quizzes"
}
