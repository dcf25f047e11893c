package models

import (
	"time"

	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizDraft     QuizStatus = "Draft"
	QuizPublished QuizStatus = "Published"
	QuizArchived  QuizStatus = "Archived"
)

const (
	// MaxQuestions is the hard cap on questions per quiz.
	MaxQuestions = 35
	// QuestionWarningThreshold is the soft limit; authors are warned above it.
	QuestionWarningThreshold = 30

	// MinOptions and MaxOptions bound the number of active option slots.
	MinOptions = 2
	MaxOptions = 4
)

// Question is one multiple-choice question of a quiz snapshot. Options holds up
// to MaxOptions slots; only the first NumberOfOptions are active and shown to
// participants, trailing slots are inert placeholders.
type Question struct {
	Question        string   `json:"question" validate:"required"`
	Options         []string `json:"options" validate:"required,max=4"`
	NumberOfOptions int      `json:"numberOfOptions" validate:"required,min=2,max=4"`
	CorrectAnswer   int      `json:"correctAnswer" validate:"min=0,max=3"`
	Explanation     string   `json:"explanation,omitempty"`
}

// ActiveOptions returns the option slots actually presented to participants.
func (q *Question) ActiveOptions() []string {
	n := q.NumberOfOptions
	if n > len(q.Options) {
		n = len(q.Options)
	}
	return q.Options[:n]
}

// SetNumberOfOptions resizes the active option count: growing appends empty
// slots, shrinking truncates. CorrectAnswer is clamped into the new range so it
// always references an active slot.
func (q *Question) SetNumberOfOptions(n int) {
	if n < MinOptions {
		n = MinOptions
	}
	if n > MaxOptions {
		n = MaxOptions
	}

	for len(q.Options) < n {
		q.Options = append(q.Options, "")
	}
	if len(q.Options) > n {
		q.Options = q.Options[:n]
	}

	q.NumberOfOptions = n
	if q.CorrectAnswer >= n {
		q.CorrectAnswer = n - 1
	}
	if q.CorrectAnswer < 0 {
		q.CorrectAnswer = 0
	}
}

// Quiz is the snapshot of one published quiz. Once a share link has been
// issued the question set and correct answers are immutable; participant
// results are only meaningful against the exact snapshot they answered.
type Quiz struct {
	ID          string     `json:"id" gorm:"primaryKey;size:64"`
	Title       string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Passage     string     `json:"passage" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string    `json:"description,omitempty" gorm:"type:text" validate:"omitempty,max=1000"`
	Status      QuizStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Published Archived"`

	Questions []Question `json:"questions" gorm:"type:jsonb;serializer:json" validate:"required,min=1,max=35,dive"`

	// Metadata
	CreatedBy string         `json:"createdBy,omitempty" gorm:"size:64;index"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Denormalized counter, bumped atomically with every appended result.
	TotalParticipants int        `json:"totalParticipants" gorm:"default:0"`
	LastResultAt      *time.Time `json:"lastResultAt,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// IsShared reports whether a share link has been issued for this quiz.
func (q *Quiz) IsShared() bool {
	return q.Status == QuizPublished
}
