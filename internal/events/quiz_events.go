package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of quiz lifecycle events
type EventType string

const (
	// Quiz events
	EventQuizPublished EventType = "quiz.published"
	EventQuizArchived  EventType = "quiz.archived"

	// Result events
	EventResultRecorded  EventType = "result.recorded"
	EventResultsImported EventType = "results.imported"
	EventResultsCleared  EventType = "results.cleared"
)

// QuizEvent is the base event structure for all quiz lifecycle events
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewQuizEvent stamps a fresh event envelope.
func NewQuizEvent(eventType EventType, data interface{}) *QuizEvent {
	return &QuizEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    "bibleqz-service",
		Version:   "1.0",
		Data:      data,
	}
}

// Quiz lifecycle event payloads

type QuizPublishedEvent struct {
	QuizID        string `json:"quizId"`
	QuizTitle     string `json:"quizTitle"`
	Passage       string `json:"passage"`
	QuestionCount int    `json:"questionCount"`
	CreatedBy     string `json:"createdBy,omitempty"`
}

type ResultRecordedEvent struct {
	QuizID            string    `json:"quizId"`
	UserName          string    `json:"userName"`
	Score             int       `json:"score"`
	Total             int       `json:"total"`
	SubmittedAt       time.Time `json:"submittedAt"`
	TotalParticipants int       `json:"totalParticipants"`
}

type ResultsImportedEvent struct {
	QuizID     string    `json:"quizId"`
	UserName   string    `json:"userName"`
	ImportedAt time.Time `json:"importedAt"`
}
