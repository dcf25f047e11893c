package models

import "time"

// AnswerRecord captures one answered question inside a Result. It copies the
// question's active options and explanation so a Result stays self-describing
// even if the original snapshot later becomes unavailable.
type AnswerRecord struct {
	Question       string   `json:"question"`
	SelectedAnswer *int     `json:"selectedAnswer"`
	CorrectAnswer  int      `json:"correctAnswer"`
	IsCorrect      bool     `json:"isCorrect"`
	ActiveOptions  []string `json:"activeOptions"`
	Explanation    string   `json:"explanation,omitempty"`
}

// Result is one participant's completed-quiz submission. Created once at quiz
// completion and never mutated; appended to the quiz's result collection
// exactly once (enforced by the submission guard) or carried via a share token.
type Result struct {
	ID     uint   `json:"-" gorm:"primaryKey"`
	QuizID string `json:"-" gorm:"size:64;index;not null"`

	// UserName is a participant-declared display name, not a unique identity.
	UserName  string    `json:"userName" gorm:"size:100;not null" validate:"required,min=1,max=100"`
	Score     int       `json:"score" validate:"min=0"`
	Total     int       `json:"total" validate:"required,min=1"`
	Timestamp time.Time `json:"timestamp"`
	TimeTaken *int      `json:"timeTaken,omitempty" validate:"omitempty,min=0"`

	Answers []AnswerRecord `json:"answers" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"-"`
}

func (Result) TableName() string {
	return "quiz_results"
}

// Percentage returns the score as a percentage of the total. A zero total is
// invalid upstream but must not crash the aggregation path; it yields 0.
func (r *Result) Percentage() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total) * 100
}

// ResultEnvelope is the payload shape carried by a result share token when the
// live backend is unreachable and a result travels out-of-band.
type ResultEnvelope struct {
	QuizID      string    `json:"quizId"`
	Result      Result    `json:"result"`
	SubmittedAt time.Time `json:"submittedAt"`
}
