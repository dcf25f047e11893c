package repositories

import (
	"context"

	"github.com/BIJODEV/BibleQZ/internal/models"
)

// QuizRepository is the remote snapshot store contract. Create is idempotent
// on an identical id so a retried create never fails or duplicates.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id string) (*models.Quiz, error)
	UpdateStatus(ctx context.Context, id string, status models.QuizStatus) error
	Delete(ctx context.Context, id string) error // Soft delete
}

// ResultRepository is the remote result store contract for one quiz's
// append-mostly, multi-writer result collection. Append atomically records one
// result and increments the quiz's participant counter; no caller ever needs
// to read-modify-write another participant's record.
type ResultRepository interface {
	Append(ctx context.Context, quizID string, result *models.Result) error
	ListByQuiz(ctx context.Context, quizID string) ([]models.Result, error)
	CountByQuiz(ctx context.Context, quizID string) (int64, error)
}

// HistoryRepository keeps each author's recently created quizzes, newest
// first, capped at models.HistoryLimit.
type HistoryRepository interface {
	SaveQuiz(ctx context.Context, userID string, quiz *models.Quiz) error
	GetQuizzes(ctx context.Context, userID string) ([]models.Quiz, error)
}

// Repository aggregates all data access for the service layer.
type Repository interface {
	Quiz() QuizRepository
	Result() ResultRepository
	History() HistoryRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// ===== SHARED STATISTICS STRUCTS =====

// QuizStats summarizes one quiz for the author history view.
type QuizStats struct {
	QuizID            string  `json:"quizId"`
	TotalParticipants int     `json:"totalParticipants"`
	AverageScore      float64 `json:"averageScore"`
	QuestionCount     int     `json:"questionCount"`
}
