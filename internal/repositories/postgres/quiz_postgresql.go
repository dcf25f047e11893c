package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BIJODEV/BibleQZ/internal/models"
	"github.com/BIJODEV/BibleQZ/internal/repositories"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

// Create inserts a new quiz snapshot. At-least-once semantics: creating the
// same id again is a no-op, never a failure or a second record.
func (q *QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	err := q.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(quiz).Error
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// GetByID retrieves a quiz snapshot by its opaque id.
func (q *QuizPostgreSQL) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := q.db.WithContext(ctx).
		Where("id = ?", id).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) UpdateStatus(ctx context.Context, id string, status models.QuizStatus) error {
	result := q.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update quiz status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft-deletes a quiz snapshot.
func (q *QuizPostgreSQL) Delete(ctx context.Context, id string) error {
	result := q.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Quiz{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete quiz: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
